package feed

// Config is one line of the feed list.
type Config struct {
	URL          string
	DirName      string // used verbatim as a path segment under the podcasts root
	AutoDownload bool
}

// RawItem is one feed entry as delivered by the feed source. The enclosure
// can arrive in three shapes; resolution order lives in resolveEnclosure.
type RawItem struct {
	GUID    string
	Link    string
	Title   string
	Summary string

	MediaContent []MediaContent
	Enclosure    *Enclosure
	Links        []Link
}

type MediaContent struct {
	URL  string
	Type string
}

type Enclosure struct {
	URL    string
	Type   string
	Length int64
}

type Link struct {
	Rel  string
	Href string
	Type string
}

// Document is a fetched and parsed feed.
type Document struct {
	Title string
	Items []RawItem
}
