package perch

// syntheticResize is an injected host resize, applied at the start of an
// Update as if the window had changed size.
type syntheticResize struct {
	width, height int
	scale         float64
}

// InjectResize queues a resize to width x height at the given device scale.
// One queued resize is applied per Update, before tweens advance.
func (o *Overlay) InjectResize(width, height int, deviceScale float64) {
	o.injectQueue = append(o.injectQueue, syntheticResize{
		width:  width,
		height: height,
		scale:  deviceScale,
	})
}

// processInjectedResize pops one queued resize and applies it. Returns true
// if a resize was consumed.
func (o *Overlay) processInjectedResize() bool {
	if len(o.injectQueue) == 0 {
		return false
	}
	r := o.injectQueue[0]
	copy(o.injectQueue, o.injectQueue[1:])
	o.injectQueue = o.injectQueue[:len(o.injectQueue)-1]

	if err := o.Resize(r.width, r.height, r.scale); err != nil {
		o.report("", err)
	}
	return true
}
