package identity

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"modscout/internal/fetch"
)

// Extract derives an Identity from a raw URL and the fetch result for that
// URL. It never fails: unparseable URLs, empty bodies, and blocked pages all
// degrade to an identity built from whatever signal remains.
func Extract(rawURL string, fetched fetch.Result) Identity {
	id := Identity{URL: strings.TrimSpace(rawURL)}

	if parsed, err := url.Parse(id.URL); err == nil {
		id.Domain = strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
		id.Slug = slugFromPath(parsed.Path)
	}

	title, body := pageText(fetched.Body)
	id.Blocked = fetched.Outcome == fetch.OutcomeBlocked || matchesBlockSignature(title, body)

	name := title
	if id.Blocked || fetched.Outcome == fetch.OutcomeUnreachable {
		// Page markers on a blocked page describe the interstitial, not the mod.
		name = ""
	}
	id.Name = NormalizeName(name)
	if id.Name == "" {
		id.Name = NormalizeName(id.Slug)
	}
	if id.Name == "" {
		id.Name = UnknownName
	}
	return id
}

// slugFromPath converts a URL path into a lowercase space-delimited slug.
func slugFromPath(path string) string {
	replaced := strings.NewReplacer("/", " ", "-", " ", "_", " ").Replace(path)
	return strings.Join(strings.Fields(strings.ToLower(replaced)), " ")
}

// pageText pulls the page title and a lowercase body excerpt from raw HTML.
// The og:title meta value wins over the <title> element when present.
func pageText(raw []byte) (title, body string) {
	if len(raw) == 0 {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", strings.ToLower(string(raw))
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		title = og
	} else {
		title = doc.Find("title").First().Text()
	}
	return strings.TrimSpace(title), strings.ToLower(doc.Text())
}
