// Package printing renders HTML documents to PDF through a headless Chrome
// instance driven over the DevTools protocol.
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        "<html>...</html>",
//	    PaperSize:   PaperSizeA4,
//	    Orientation: OrientationLandscape,
//	    Margins:     DefaultMargins(),
//	})
package printing
