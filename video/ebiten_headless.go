//go:build headless

package video

// Window is unavailable in headless builds.
type Window struct {
	Title   string
	Scale   int
	Listing bool

	src Source
}

func NewWindow(src Source, scale int, listing bool) *Window {
	return &Window{
		Title:   "chip8",
		Scale:   max(1, scale),
		Listing: listing,
		src:     src,
	}
}

// Run always fails; use a Terminal instead.
func (w *Window) Run() error {
	return ErrNoDisplay
}
