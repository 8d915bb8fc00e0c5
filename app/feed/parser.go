package feed

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"
	"github.com/sirupsen/logrus"
)

var ErrNoTitle = errors.New("feed has no title")

// The seen store keeps one identifier per line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Parser turns a feed payload into a Document. RSS and Atom go through the
// format-specific gofeed parsers so link relations and media extensions
// survive; JSON Feed goes through the universal parser.
type Parser struct {
	gofeedParser *gofeed.Parser
	rssParser    *rss.Parser
	atomParser   *atom.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		rssParser:    &rss.Parser{},
		atomParser:   &atom.Parser{},
	}
}

func (p *Parser) Run(data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)

	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeRSS:
		doc, err = p.parseRSS(data)
	case gofeed.FeedTypeAtom:
		doc, err = p.parseAtom(data)
	case gofeed.FeedTypeJSON:
		doc, err = p.parseJSON(data)
	default:
		return nil, gofeed.ErrFeedTypeNotDetected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, ErrNoTitle
	}

	items := doc.Items[:0]
	for _, item := range doc.Items {
		item.GUID = strings.TrimSpace(lineBreaks.Replace(item.GUID))
		if item.GUID == "" {
			logrus.WithFields(logrus.Fields{
				"feed":  doc.Title,
				"title": item.Title,
			}).Warn("Skipping item without identifier")
			continue
		}
		items = append(items, item)
	}
	doc.Items = items

	return doc, nil
}

func (p *Parser) parseRSS(data []byte) (*Document, error) {
	feed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title: feed.Title,
		Items: make([]RawItem, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		guid := ""
		if item.GUID != nil {
			guid = strings.TrimSpace(item.GUID.Value)
		}

		itunesSummary := ""
		if item.ITunesExt != nil {
			itunesSummary = item.ITunesExt.Summary
		}

		raw := RawItem{
			GUID:         cmp.Or(guid, strings.TrimSpace(item.Link)),
			Link:         item.Link,
			Title:        item.Title,
			Summary:      cmp.Or(item.Description, item.Content, itunesSummary),
			MediaContent: mediaContent(item.Extensions),
			Links:        extensionLinks(item.Extensions),
		}
		if item.Enclosure != nil {
			raw.Enclosure = &Enclosure{
				URL:    strings.TrimSpace(item.Enclosure.URL),
				Type:   item.Enclosure.Type,
				Length: parseLength(item.Enclosure.Length),
			}
		}

		doc.Items = append(doc.Items, raw)
	}

	return doc, nil
}

func (p *Parser) parseAtom(data []byte) (*Document, error) {
	feed, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title: feed.Title,
		Items: make([]RawItem, 0, len(feed.Entries)),
	}
	for _, entry := range feed.Entries {
		if entry == nil {
			continue
		}

		content := ""
		if entry.Content != nil {
			content = entry.Content.Value
		}

		raw := RawItem{
			GUID:         strings.TrimSpace(entry.ID),
			Title:        entry.Title,
			Summary:      cmp.Or(entry.Summary, content),
			MediaContent: mediaContent(entry.Extensions),
		}
		for _, link := range entry.Links {
			if link == nil {
				continue
			}
			rel := cmp.Or(link.Rel, "alternate")
			if rel == "alternate" && raw.Link == "" {
				raw.Link = link.Href
			}
			raw.Links = append(raw.Links, Link{
				Rel:  rel,
				Href: strings.TrimSpace(link.Href),
				Type: link.Type,
			})
		}
		raw.GUID = cmp.Or(raw.GUID, strings.TrimSpace(raw.Link))

		doc.Items = append(doc.Items, raw)
	}

	return doc, nil
}

func (p *Parser) parseJSON(data []byte) (*Document, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Title: feed.Title,
		Items: make([]RawItem, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		raw := RawItem{
			GUID:    cmp.Or(strings.TrimSpace(item.GUID), strings.TrimSpace(item.Link)),
			Link:    item.Link,
			Title:   item.Title,
			Summary: cmp.Or(item.Description, item.Content),
		}
		if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
			enclosure := item.Enclosures[0]
			raw.Enclosure = &Enclosure{
				URL:    strings.TrimSpace(enclosure.URL),
				Type:   enclosure.Type,
				Length: parseLength(enclosure.Length),
			}
		}

		doc.Items = append(doc.Items, raw)
	}

	return doc, nil
}

// mediaContent collects Media RSS <media:content> entries, including those
// nested in <media:group>, in document order.
func mediaContent(extensions ext.Extensions) []MediaContent {
	media, ok := extensions["media"]
	if !ok {
		return nil
	}

	var result []MediaContent
	collect := func(entries []ext.Extension) {
		for _, entry := range entries {
			result = append(result, MediaContent{
				URL:  strings.TrimSpace(entry.Attrs["url"]),
				Type: entry.Attrs["type"],
			})
		}
	}

	collect(media["content"])
	for _, group := range media["group"] {
		collect(group.Children["content"])
	}

	return result
}

// extensionLinks picks up <atom:link> elements embedded in RSS items.
func extensionLinks(extensions ext.Extensions) []Link {
	atomExt, ok := extensions["atom"]
	if !ok {
		return nil
	}

	var links []Link
	for _, entry := range atomExt["link"] {
		links = append(links, Link{
			Rel:  cmp.Or(entry.Attrs["rel"], "alternate"),
			Href: strings.TrimSpace(entry.Attrs["href"]),
			Type: entry.Attrs["type"],
		})
	}

	return links
}

func parseLength(value string) int64 {
	if value == "" {
		return 0
	}
	length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return length
}
