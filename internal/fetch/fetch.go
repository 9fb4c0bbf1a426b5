// Package fetch provides URL fetching and readability-style HTML-to-text
// extraction for the scraping stage.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent identifies the research crawler to remote hosts.
const DefaultUserAgent = "Mozilla/5.0 (compatible; ClarityDesk/1.0; +https://claritydesk.example.com/bot)"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 2 << 20 // 2 MiB

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
	Latency     time.Duration
}

// Error represents a failure while fetching a URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// DefaultOptions returns sensible fetch defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL. Non-HTML responses are rejected
// so the extractor only ever sees parseable markup.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		URL:         urlStr,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck
		result.Latency = time.Since(start)
		return result, &Error{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	ct := strings.ToLower(result.ContentType)
	if ct != "" && !strings.Contains(ct, "html") {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes)) //nolint:errcheck
		result.Latency = time.Since(start)
		return result, &Error{URL: urlStr, Message: "non-HTML content type " + result.ContentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	result.Latency = time.Since(start)
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result.HTML = string(body)
	return result, nil
}

// Extracted is the readability output for a page.
type Extracted struct {
	Title         string
	Text          string
	PublishedDate string
}

// articleSelectors are tried in order to locate main article content.
var articleSelectors = []string{
	"main",
	"article",
	"[role='main']",
	".article-body",
	".post-content",
	".entry-content",
	".content",
	"#content",
}

// noiseSelector removes navigation, ads and other boilerplate before
// text extraction.
const noiseSelector = "nav, footer, header, script, style, noscript, iframe, form, " +
	"aside, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup, " +
	".social-share, .comments, .related-posts"

// Article parses HTML and returns the main article text plus title and a
// best-effort publish date.
func Article(html string) (*Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	out := &Extracted{
		Title:         extractTitle(doc),
		PublishedDate: extractPublishedDate(doc),
	}

	doc.Find(noiseSelector).Remove()

	var main *goquery.Selection
	for _, selector := range articleSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	out.Text = cleanWhitespace(main.Text())
	return out, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && og != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// extractPublishedDate checks date sources from most to least reliable:
// article meta tags, time elements, then common date classes.
func extractPublishedDate(doc *goquery.Document) string {
	if v, ok := doc.Find("meta[property='article:published_time']").Attr("content"); ok && v != "" {
		return normalizeDate(v)
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && v != "" {
		return normalizeDate(v)
	}
	for _, sel := range []string{".published-date", ".post-date", ".article-date"} {
		if v := strings.TrimSpace(doc.Find(sel).First().Text()); v != "" {
			return normalizeDate(v)
		}
	}
	return ""
}

// normalizeDate reduces a date string to YYYY-MM when parseable,
// otherwise returns it verbatim.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01")
		}
	}
	return raw
}

// cleanWhitespace collapses blank lines and trims every line.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
