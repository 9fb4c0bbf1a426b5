package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Solar Energy Report</title>
	<meta property="og:title" content="Solar Energy Report 2024">
	<meta property="article:published_time" content="2024-03-15T10:00:00Z">
</head>
<body>
	<nav>Home | About | Contact</nav>
	<article>
		<h1>Solar Energy Report</h1>
		<p>Solar capacity grew significantly last year.</p>
		<p>Costs continued to fall across all markets.</p>
	</article>
	<footer>Copyright 2024</footer>
	<script>analytics();</script>
</body>
</html>`

func TestURL_FetchesHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, samplePage)
	}))
	defer srv.Close()

	res, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.HTML, "Solar capacity")
	assert.Greater(t, res.Latency.Nanoseconds(), int64(0))
}

func TestURL_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	_, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, fetchErr.Message, "non-HTML")
}

func TestURL_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res, err := URL(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "://bad", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.True(t, errors.As(err, &fetchErr))
}

func TestURL_SetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	_, err := URL(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestArticle_ExtractsMainContent(t *testing.T) {
	out, err := Article(samplePage)
	require.NoError(t, err)

	assert.Contains(t, out.Text, "Solar capacity grew significantly last year.")
	assert.Contains(t, out.Text, "Costs continued to fall across all markets.")
	assert.NotContains(t, out.Text, "Home | About")
	assert.NotContains(t, out.Text, "Copyright 2024")
	assert.NotContains(t, out.Text, "analytics()")
}

func TestArticle_PrefersOpenGraphTitle(t *testing.T) {
	out, err := Article(samplePage)
	require.NoError(t, err)
	assert.Equal(t, "Solar Energy Report 2024", out.Title)
}

func TestArticle_ExtractsPublishedDate(t *testing.T) {
	out, err := Article(samplePage)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", out.PublishedDate)
}

func TestArticle_FallsBackToBody(t *testing.T) {
	html := `<html><body><p>Just a paragraph without article tags.</p></body></html>`
	out, err := Article(html)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Just a paragraph")
}

func TestArticle_TimeElementDate(t *testing.T) {
	html := `<html><body><time datetime="2023-11-02">Nov 2</time><main><p>Body text here.</p></main></body></html>`
	out, err := Article(html)
	require.NoError(t, err)
	assert.Equal(t, "2023-11", out.PublishedDate)
}

func TestNeedsBrowser(t *testing.T) {
	assert.True(t, NeedsBrowser("short"))
	assert.True(t, NeedsBrowser(""))

	long := make([]byte, MinRenderedLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, NeedsBrowser(string(long)))
}

func TestCleanWhitespace(t *testing.T) {
	in := "  line one  \n\n\n   line   two \n"
	assert.Equal(t, "line one\nline two", cleanWhitespace(in))
}
