package perch

import "log/slog"

// debugLog logs the last frame's render statistics and asset states at
// debug level. Only called when debug mode is on.
func (o *Overlay) debugLog() {
	l := Logger()
	st := o.renderer.stats
	l.Debug("perch: frame",
		slog.Uint64("frame", o.frame),
		slog.Duration("render", st.elapsed),
		slog.Int("meshes", st.meshes),
		slog.Int("triangles", st.triangles),
		slog.Int("culled", st.culled),
		slog.Int("tweens", o.tweens.Active()),
	)
	for _, a := range o.assets {
		l.Debug("perch: asset",
			slog.String("asset", a.Name()),
			slog.String("state", a.State().String()),
		)
	}
}
