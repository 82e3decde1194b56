// Package perch draws animated 3D models on a transparent layer above a web
// page, each one anchored to a point of the page and kept there as the
// viewport changes, using [Ebitengine].
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window (or fills
// the browser canvas) and runs the frame loop for you:
//
//	cfg := perch.DefaultConfig()
//	loader := perch.NewLoader(perch.HTTPSource{}, perch.GLTFDecoder{})
//	o := perch.New(cfg, nil, loader)
//	o.AddAsset(perch.TopRightSpec(url))
//	o.AddAsset(perch.SignatureSpec(url, ".signature", "#er"))
//	perch.Run(o)
//
// For full control, implement [ebiten.Game] yourself and call
// [Overlay.Update], [Overlay.Draw], and [Overlay.Resize] directly, or wrap
// the overlay with [NewGame].
//
// # Anchoring
//
// Every asset has an [AnchorRule] that yields a viewport point. The point is
// cast from the [Camera] onto the world plane z = 0 with
// [Camera.ScreenToWorld], and the asset root is moved there. Anchors are
// re-resolved on every [Overlay.Resize]; entrance motions are not replayed.
//
// [FixedAnchor] uses fractions of the viewport. [ElementAnchor] reads page
// geometry through a [Layout]: the DOM under js/wasm, or a [StaticLayout]
// supplied by the host elsewhere.
//
// # Assets
//
// A [Loader] fetches bytes from a [Source] ([HTTPSource], [FSSource]) and
// decodes them with a [Decoder] ([GLTFDecoder]) on background goroutines.
// Concurrent requests for one URL share a single fetch. Finished loads are
// activated on the next [Overlay.Update]; a failed load marks only its own
// asset [AssetFailed].
//
// # Motion
//
// Entrance, reveal, and drift motions run on a [Tweener] backed by
// [gween]. Skeletal clips decoded from the asset are played by an
// [AnimationPlayer], looping by default.
//
// # Logging
//
// The package logs through [log/slog]. Logging is silent until
// [SetLogger] installs a logger.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package perch
