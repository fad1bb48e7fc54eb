package printing

import "context"

// DisabledRenderer stands in for the chromedp renderer when PDF export
// is not configured. Every render attempt fails with a stable code the
// HTTP layer can map.
type DisabledRenderer struct{}

var _ PDFRenderer = (*DisabledRenderer)(nil)

// NewDisabledRenderer creates a renderer that rejects all requests
func NewDisabledRenderer() *DisabledRenderer {
	return &DisabledRenderer{}
}

// Render always fails with RENDER_DISABLED
func (r *DisabledRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	return nil, NewRenderError(ErrCodeRenderDisabled,
		"PDF rendering is not configured. Set printing.enabled to use report export.", nil)
}

// Close is a no-op
func (r *DisabledRenderer) Close() error {
	return nil
}
