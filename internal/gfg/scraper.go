// Package gfg imports tutorial content from GeeksforGeeks article pages.
package gfg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxCodeBlocks caps how many <pre> snippets are appended to the article body.
const maxCodeBlocks = 3

// Categories maps platform tutorial categories to GeeksforGeeks section slugs.
var Categories = map[string]string{
	"dsa":                "data-structures",
	"algorithms":         "fundamentals-of-algorithms",
	"python":             "python-programming-language",
	"java":               "java",
	"web-development":    "web-development",
	"machine-learning":   "machine-learning",
	"operating-systems":  "operating-systems",
	"dbms":               "dbms",
	"computer-networks":  "computer-network-tutorials",
	"system-design":      "system-design-tutorial",
	"interview-prep":     "company-interview-corner",
	"competitive-coding": "competitive-programming-a-complete-guide",
}

// Article is the scraped payload of one tutorial page.
type Article struct {
	Title       string
	Description string
	Content     string
	SourceURL   string
}

// Scraper fetches and parses GeeksforGeeks article pages.
type Scraper struct {
	baseHost string
	client   *http.Client
}

// NewScraper returns a Scraper that accepts URLs under baseURL's host.
func NewScraper(baseURL string) (*Scraper, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("gfg: invalid base URL %q", baseURL)
	}
	return &Scraper{
		baseHost: strings.TrimPrefix(parsed.Hostname(), "www."),
		client:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// ValidateURL checks that raw is an http(s) URL on the configured host.
func (s *Scraper) ValidateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("gfg: invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gfg: URL must use http or https")
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if !strings.EqualFold(host, s.baseHost) {
		return fmt.Errorf("gfg: URL host %q is not %s", parsed.Hostname(), s.baseHost)
	}
	return nil
}

// Fetch downloads and parses the article at rawURL.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	if err := s.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gfg: build request: %w", err)
	}
	req.Header.Set("User-Agent", "studentconnect-importer/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gfg: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gfg: fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	article, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	article.SourceURL = rawURL
	if article.Title == "" {
		return nil, fmt.Errorf("gfg: no title found at %s", rawURL)
	}
	return article, nil
}

// Parse extracts title, meta description, body text and up to three code
// blocks from an article page. Parsing is best-effort: missing sections
// produce empty fields, not errors.
func Parse(r io.Reader) (*Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("gfg: parse HTML: %w", err)
	}

	article := &Article{
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
	}

	var body strings.Builder
	if content := findArticleNode(doc); content != nil {
		collectText(content, &body)
	}

	codeBlocks := findCodeBlocks(doc, maxCodeBlocks)
	for _, block := range codeBlocks {
		body.WriteString("\n\n```\n")
		body.WriteString(block)
		body.WriteString("\n```")
	}

	article.Content = strings.TrimSpace(body.String())
	return article, nil
}

func findTitle(doc *html.Node) string {
	if h1 := findNode(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "h1" }); h1 != nil {
		if title := strings.TrimSpace(nodeText(h1)); title != "" {
			return title
		}
	}
	if t := findNode(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "title" }); t != nil {
		title := strings.TrimSpace(nodeText(t))
		// Page titles carry a " - GeeksforGeeks" suffix.
		if idx := strings.LastIndex(title, " - "); idx > 0 {
			title = title[:idx]
		}
		return title
	}
	return ""
}

func findMetaDescription(doc *html.Node) string {
	meta := findNode(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return false
		}
		return attr(n, "name") == "description" || attr(n, "property") == "og:description"
	})
	if meta == nil {
		return ""
	}
	return strings.TrimSpace(attr(meta, "content"))
}

// findArticleNode prefers the <article> element, then the div.text content
// wrapper used by older article layouts.
func findArticleNode(doc *html.Node) *html.Node {
	if article := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "article"
	}); article != nil {
		return article
	}
	return findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "div" &&
			strings.Contains(attr(n, "class"), "text")
	})
}

func findCodeBlocks(doc *html.Node, limit int) []string {
	var blocks []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(blocks) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "pre" {
			if code := strings.TrimSpace(nodeText(n)); code != "" {
				blocks = append(blocks, code)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks
}

// collectText appends paragraph-level text, skipping script/style and any
// <pre> blocks (those are gathered separately).
func collectText(n *html.Node, out *strings.Builder) {
	switch {
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "pre" || n.Data == "noscript"):
		return
	case n.Type == html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if out.Len() > 0 {
				out.WriteString(" ")
			}
			out.WriteString(text)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "h2" || n.Data == "h3" || n.Data == "li") && out.Len() > 0 {
		out.WriteString("\n\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
