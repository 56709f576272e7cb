package gfg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Binary Search - GeeksforGeeks</title>
<meta name="description" content="Binary Search is a searching algorithm for sorted arrays.">
</head>
<body>
<h1>Binary Search</h1>
<article>
<p>Binary Search works on sorted arrays.</p>
<p>It halves the search space on every step.</p>
<pre>def binary_search(arr, x):
    lo, hi = 0, len(arr) - 1</pre>
<pre>while lo &lt;= hi:
    mid = (lo + hi) // 2</pre>
<pre>block three</pre>
<pre>block four should be dropped</pre>
</article>
<script>analytics()</script>
</body>
</html>`

func TestParse(t *testing.T) {
	article, err := Parse(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Equal(t, "Binary Search", article.Title)
	assert.Equal(t, "Binary Search is a searching algorithm for sorted arrays.", article.Description)
	assert.Contains(t, article.Content, "halves the search space")
	assert.Contains(t, article.Content, "def binary_search")
	assert.NotContains(t, article.Content, "analytics()")
	assert.NotContains(t, article.Content, "block four")
	assert.Equal(t, maxCodeBlocks*2, strings.Count(article.Content, "```"))
}

func TestParse_TitleFallsBackToPageTitle(t *testing.T) {
	page := `<html><head><title>Quick Sort - GeeksforGeeks</title></head><body><p>text</p></body></html>`
	article, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Quick Sort", article.Title)
}

func TestScraper_ValidateURL(t *testing.T) {
	scraper, err := NewScraper("https://www.geeksforgeeks.org")
	require.NoError(t, err)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid article URL", "https://www.geeksforgeeks.org/binary-search/", false},
		{"valid without www", "https://geeksforgeeks.org/binary-search/", false},
		{"wrong host", "https://example.com/binary-search/", true},
		{"bad scheme", "ftp://www.geeksforgeeks.org/binary-search/", true},
		{"garbage", "://not-a-url", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := scraper.ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	scraper, err := NewScraper(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		article, err := scraper.Fetch(ctx, srv.URL+"/binary-search/")
		require.NoError(t, err)
		assert.Equal(t, "Binary Search", article.Title)
		assert.Equal(t, srv.URL+"/binary-search/", article.SourceURL)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		_, err := scraper.Fetch(ctx, srv.URL+"/missing/")
		assert.Error(t, err)
	})

	t.Run("Off-host URL is rejected", func(t *testing.T) {
		_, err := scraper.Fetch(ctx, "https://example.com/binary-search/")
		assert.Error(t, err)
	})
}
