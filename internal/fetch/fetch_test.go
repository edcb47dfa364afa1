package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><h1>Acme Corp</h1><p>We build rockets.</p></body></html>"))
	}))
	defer server.Close()

	f := NewFetcher()
	result, err := f.URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Acme Corp</h1>")
	assert.Contains(t, result.Text, "We build rockets.")
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestURL_InvalidURL(t *testing.T) {
	f := NewFetcher()
	_, err := f.URL(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher()
	_, err := f.URL(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CustomHeaders(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Custom")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher()
	_, err := f.URL(context.Background(), server.URL, &Options{
		UserAgent: "test-agent",
		Headers:   map[string]string{"X-Custom": "value"},
	})
	require.NoError(t, err)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "value", gotCustom)
}

func TestURL_SharedLimiterPerHost(t *testing.T) {
	f := NewFetcher()
	first := f.limiterFor("example.com")
	second := f.limiterFor("example.com")
	other := f.limiterFor("other.com")
	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestExtractText(t *testing.T) {
	html := `
	<html>
		<head><style>body { color: red; }</style></head>
		<body>
			<script>console.log("noise")</script>
			<h1>Title</h1>
			<p>Body text.</p>
		</body>
	</html>`

	text := ExtractText(html)
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Body text.")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color: red")
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("short"))
	assert.True(t, ShouldUseBrowser("   "))

	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
