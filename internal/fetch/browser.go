package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinRenderedLength is the extracted text length below which a page is
// treated as a JavaScript-rendered SPA and retried through a browser.
const MinRenderedLength = 500

// NeedsBrowser reports whether the plain HTTP fetch produced too little
// text to be useful, suggesting client-side rendering.
func NeedsBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinRenderedLength
}

// Rendered loads a page in a headless browser and returns the rendered
// HTML. Requires Chrome or Chromium on the host.
func Rendered(ctx context.Context, urlStr string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		// Let client-side rendering settle before grabbing the DOM.
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners when present, ignore when not.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}
