package feed

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Item is the normalized view of one episode. The Feed config and the feed
// title are shared with the other items of the same feed.
type Item struct {
	GUID         string
	Title        string
	Summary      string
	EnclosureURL string

	Feed      *Config
	FeedTitle string
}

func NewItem(raw RawItem, config *Config, feedTitle string) *Item {
	return &Item{
		GUID:         raw.GUID,
		Title:        strings.TrimSpace(norm.NFC.String(raw.Title)),
		Summary:      CleanSummary(raw.Summary),
		EnclosureURL: resolveEnclosure(raw),
		Feed:         config,
		FeedTitle:    strings.TrimSpace(norm.NFC.String(feedTitle)),
	}
}

func (i *Item) AutoDownload() bool {
	return i.Feed != nil && i.Feed.AutoDownload
}

// LocalFilename is the last path segment of the enclosure URL, or "" when
// there is nothing to download. The segments "." and ".." name no file.
func (i *Item) LocalFilename() string {
	return localFilename(i.EnclosureURL)
}

func localFilename(url string) string {
	path, _, _ := strings.Cut(url, "#")
	path, _, _ = strings.Cut(path, "?")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "." || path == ".." {
		return ""
	}
	return path
}

// resolveEnclosure tries media content (last entry with a URL), then the
// single enclosure, then links with rel="enclosure" (last one wins).
func resolveEnclosure(raw RawItem) string {
	url := ""
	for _, media := range raw.MediaContent {
		if media.URL != "" {
			url = media.URL
		}
	}
	if url != "" {
		return url
	}

	if raw.Enclosure != nil && raw.Enclosure.URL != "" {
		return raw.Enclosure.URL
	}

	for _, link := range raw.Links {
		if link.Rel == "enclosure" && link.Href != "" {
			url = link.Href
		}
	}
	return url
}

var (
	tagPattern        = regexp.MustCompile(`<[^<]+?>`)
	entityPattern     = regexp.MustCompile(`&#?[0-9a-zA-Z]+;`)
	hspacePattern     = regexp.MustCompile(`[ \t]+`)
	blankLinesPattern = regexp.MustCompile(`\n+`)
	entityReplacer    = strings.NewReplacer("&#38;", "&", "&#8230;", "...")
)

// CleanSummary reduces an HTML summary to readable plain text. It is lossy:
// unknown entities are dropped rather than decoded.
func CleanSummary(summary string) string {
	text := tagPattern.ReplaceAllString(summary, " ")
	text = entityReplacer.Replace(text)
	text = entityPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = hspacePattern.ReplaceAllString(text, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesPattern.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}
