package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/losebird/lifelog-ai/internal/constants"
)

// LinkMeta is the metadata a page declares about itself.
type LinkMeta struct {
	URL         string
	Title       string
	Description string
	SiteName    string
}

// FetchLinkMeta downloads rawURL and reads its title and description from
// Open Graph tags, falling back to <title> and <meta name="description">.
// At most LinkFetchLimit bytes of the body are read.
func FetchLinkMeta(ctx context.Context, client *http.Client, rawURL string) (LinkMeta, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return LinkMeta{}, fmt.Errorf("invalid link %q: must be an http or https URL", rawURL)
	}
	if client == nil {
		client = &http.Client{Timeout: constants.LinkFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return LinkMeta{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return LinkMeta{}, fmt.Errorf("failed to fetch link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LinkMeta{}, fmt.Errorf("failed to fetch link: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, constants.LinkFetchLimit))
	if err != nil {
		return LinkMeta{}, fmt.Errorf("failed to parse page: %w", err)
	}
	return parseLinkMeta(doc, u.String()), nil
}

func parseLinkMeta(doc *goquery.Document, pageURL string) LinkMeta {
	meta := func(selectors ...string) string {
		for _, sel := range selectors {
			if v, ok := doc.Find(sel).First().Attr("content"); ok {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
		return ""
	}

	m := LinkMeta{
		URL:         pageURL,
		Title:       meta(`meta[property="og:title"]`, `meta[name="twitter:title"]`),
		Description: meta(`meta[property="og:description"]`, `meta[name="description"]`, `meta[name="twitter:description"]`),
		SiteName:    meta(`meta[property="og:site_name"]`),
	}
	if m.Title == "" {
		m.Title = strings.Join(strings.Fields(doc.Find("head title").First().Text()), " ")
	}
	return m
}
