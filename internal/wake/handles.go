package wake

// Unallocated marks a render handle that the renderer must (re)allocate
// before next use.
const Unallocated = -1

// RenderHandles are the renderer's GPU texture ids and image pointers for
// the wake and foam textures. The manager only stores them and resets them
// to Unallocated when a resolution change invalidates their size.
type RenderHandles struct {
	WakeTexture int32
	WakeImage   int64
	FoamTexture int32
	FoamImage   int64
}

func newRenderHandles() RenderHandles {
	var h RenderHandles
	h.Reset()
	return h
}

func (h *RenderHandles) Reset() {
	h.WakeTexture = Unallocated
	h.WakeImage = Unallocated
	h.FoamTexture = Unallocated
	h.FoamImage = Unallocated
}

// Allocated reports whether every handle has been set by the renderer.
func (h *RenderHandles) Allocated() bool {
	return h.WakeTexture != Unallocated && h.WakeImage != Unallocated &&
		h.FoamTexture != Unallocated && h.FoamImage != Unallocated
}
