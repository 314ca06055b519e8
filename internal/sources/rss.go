package sources

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Feeds in the wild are routinely malformed: unclosed tags, unescaped
// entities, anti-bot garbage prepended to the body. Item extraction is
// pattern-based on purpose so one broken item cannot abort the whole feed.
var (
	itemPattern  = regexp.MustCompile(`(?s)<item[\s>].*?</item>`)
	cdataPattern = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)]]>\s*$`)
)

type rssItem struct {
	Title       string
	Link        string
	PubDate     string
	Description string
	Categories  []string
}

func extractItems(body string) []rssItem {

	var items []rssItem
	for _, raw := range itemPattern.FindAllString(body, -1) {
		items = append(items, rssItem{
			Title:       extractTag(raw, "title"),
			Link:        extractTag(raw, "link"),
			PubDate:     extractTag(raw, "pubDate"),
			Description: extractTag(raw, "description"),
			Categories:  extractTagAll(raw, "category"),
		})
	}
	return items
}

func extractTag(item, tag string) string {
	values := extractTagAll(item, tag)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func extractTagAll(item, tag string) []string {
	pattern := regexp.MustCompile(`(?s)<` + tag + `(?:\s[^>]*)?>(.*?)</` + tag + `>`)

	var values []string
	for _, match := range pattern.FindAllStringSubmatch(item, -1) {
		value := strings.TrimSpace(match[1])
		if cdata := cdataPattern.FindStringSubmatch(value); cdata != nil {
			value = strings.TrimSpace(cdata[1])
		}
		if value != "" {
			values = append(values, entityReplacer.Replace(value))
		}
	}
	return values
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseSourceDate accepts the date representations seen across providers,
// including bare unix-epoch seconds.
func parseSourceDate(value string) (time.Time, bool) {

	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), true
	}

	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// deriveID builds a deterministic id for sources without a natural one,
// hashing the canonical listing URL.
func deriveID(prefix, url string) string {
	sum := sha256.Sum256([]byte(url))
	return prefix + "-" + hex.EncodeToString(sum[:])[:12]
}
