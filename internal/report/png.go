package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

const pngTimeout = 30 * time.Second

// ExportPNG rasterizes svg in a headless browser and writes the screenshot to path.
// It needs a Chrome or Chromium binary on the host.
func ExportPNG(ctx context.Context, svg []byte, path string) error {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, pngTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		// Transparent page so the card's rounded corners stay clean
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{}).Do(ctx)
		}),
		chromedp.Navigate(svgDataURL(svg)),
		chromedp.WaitVisible("svg", chromedp.ByQuery),
		chromedp.Screenshot("svg", &buf, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("rendering png: %w", err)
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("writing png: %w", err)
	}
	return nil
}

func svgDataURL(svg []byte) string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)
}
