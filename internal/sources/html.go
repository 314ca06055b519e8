package sources

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// entityReplacer normalizes the entity set that survives feed double-encoding:
// ampersands, the em-dash entity, and the smart-quote family.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&#38;", "&",
	"&#8211;", "–",
	"&#8212;", "—",
	"&#8216;", "'",
	"&#8217;", "'",
	"&#8220;", "\"",
	"&#8221;", "\"",
	"&nbsp;", " ",
	"&quot;", "\"",
	"&#39;", "'",
)

var whitespacePattern = regexp.MustCompile(`\s+`)

var imageURLPattern = regexp.MustCompile(`https?://[^\s"'<>]+\.(?:png|jpe?g|gif|webp)`)

// StripHTML reduces provider HTML to plain text: tags removed, the known
// entity set normalized, whitespace collapsed.
func StripHTML(html string) string {

	html = entityReplacer.Replace(html)

	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		text = doc.Text()
	}

	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractImageURL finds a representative image in embedded HTML, preferring
// an actual <img> src over a bare URL match, and falling back to the source's
// default logo when the HTML carries none.
func ExtractImageURL(html, fallback string) string {

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		if src, ok := doc.Find("img[src]").First().Attr("src"); ok && strings.HasPrefix(src, "http") {
			return src
		}
	}

	if match := imageURLPattern.FindString(html); match != "" {
		return match
	}

	return fallback
}
