package feed

import (
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRSS2(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Test Podcast</title>
    <link>https://example.com</link>
    <description>Test Description</description>
    <item>
      <title>Episode 1</title>
      <link>https://example.com/ep1</link>
      <description>&lt;p&gt;First episode&lt;/p&gt;</description>
      <guid>ep-1</guid>
      <enclosure url="https://cdn.example.com/ep1.mp3" length="12345" type="audio/mpeg"/>
    </item>
    <item>
      <title>Episode 2</title>
      <link>https://example.com/ep2</link>
      <description>Second episode</description>
      <media:content url="https://cdn.example.com/ep2-low.mp3" type="audio/mpeg"/>
      <media:content url="https://cdn.example.com/ep2-high.mp3" type="audio/mpeg"/>
      <atom:link rel="enclosure" href="https://cdn.example.com/ep2.ogg"/>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	doc, err := parser.Run([]byte(rssData))
	require.NoError(t, err)

	assert.Equal(t, "Test Podcast", doc.Title)
	require.Len(t, doc.Items, 2)

	item1 := doc.Items[0]
	assert.Equal(t, "ep-1", item1.GUID)
	assert.Equal(t, "Episode 1", item1.Title)
	assert.Equal(t, "<p>First episode</p>", item1.Summary)
	require.NotNil(t, item1.Enclosure)
	assert.Equal(t, "https://cdn.example.com/ep1.mp3", item1.Enclosure.URL)
	assert.Equal(t, int64(12345), item1.Enclosure.Length)
	assert.Equal(t, "audio/mpeg", item1.Enclosure.Type)

	// Without a guid the link identifies the item.
	item2 := doc.Items[1]
	assert.Equal(t, "https://example.com/ep2", item2.GUID)
	require.Len(t, item2.MediaContent, 2)
	assert.Equal(t, "https://cdn.example.com/ep2-high.mp3", item2.MediaContent[1].URL)
	require.Len(t, item2.Links, 1)
	assert.Equal(t, "enclosure", item2.Links[0].Rel)
	assert.Equal(t, "https://cdn.example.com/ep2.ogg", item2.Links[0].Href)
}

func TestParseRSSMediaGroup(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>Grouped</title>
    <item>
      <title>Episode</title>
      <guid>grouped-1</guid>
      <media:group>
        <media:content url="https://cdn.example.com/a.mp3"/>
        <media:content url="https://cdn.example.com/b.mp3"/>
      </media:group>
    </item>
  </channel>
</rss>`

	doc, err := NewParser().Run([]byte(rssData))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)

	item := NewItem(doc.Items[0], &Config{}, doc.Title)
	assert.Equal(t, "https://cdn.example.com/b.mp3", item.EnclosureURL)
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Test Atom Podcast</title>
  <link href="https://example.com"/>
  <id>https://example.com/feed</id>
  <updated>2023-07-03T12:00:00Z</updated>

  <entry>
    <title>Atom Entry 1</title>
    <link href="https://example.com/atom1"/>
    <link rel="enclosure" type="audio/ogg" href="https://cdn.example.com/atom1.ogg"/>
    <id>atom-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
    <content type="html">Atom Entry 1 Content</content>
  </entry>
</feed>`

	doc, err := NewParser().Run([]byte(atomData))
	require.NoError(t, err)

	assert.Equal(t, "Test Atom Podcast", doc.Title)
	require.Len(t, doc.Items, 1)

	item := doc.Items[0]
	assert.Equal(t, "atom-1", item.GUID)
	assert.Equal(t, "Atom Entry 1", item.Title)
	assert.Equal(t, "Atom Entry 1 Content", item.Summary)
	assert.Equal(t, "https://example.com/atom1", item.Link)
	require.Len(t, item.Links, 2)
	assert.Equal(t, "alternate", item.Links[0].Rel)
	assert.Equal(t, "enclosure", item.Links[1].Rel)
	assert.Equal(t, "https://cdn.example.com/atom1.ogg", item.Links[1].Href)
	assert.Nil(t, item.Enclosure)
}

func TestParseJSONFeed(t *testing.T) {
	jsonData := `{
  "version": "https://jsonfeed.org/version/1.1",
  "title": "JSON Podcast",
  "items": [
    {
      "id": "json-1",
      "title": "JSON Episode",
      "content_text": "Plain summary",
      "attachments": [
        {"url": "https://cdn.example.com/json1.m4a", "mime_type": "audio/x-m4a", "size_in_bytes": 42}
      ]
    }
  ]
}`

	doc, err := NewParser().Run([]byte(jsonData))
	require.NoError(t, err)

	assert.Equal(t, "JSON Podcast", doc.Title)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "json-1", doc.Items[0].GUID)
	require.NotNil(t, doc.Items[0].Enclosure)
	assert.Equal(t, "https://cdn.example.com/json1.m4a", doc.Items[0].Enclosure.URL)
}

func TestParseInvalidFeed(t *testing.T) {
	invalidData := `<html><body>This is not a feed</body></html>`

	_, err := NewParser().Run([]byte(invalidData))
	assert.ErrorIs(t, err, gofeed.ErrFeedTypeNotDetected)
}

func TestParseFeedWithoutTitle(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <item><title>Orphan</title><guid>orphan-1</guid></item>
  </channel>
</rss>`

	_, err := NewParser().Run([]byte(rssData))
	assert.ErrorIs(t, err, ErrNoTitle)
}

func TestParseSkipsItemsWithoutIdentifier(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sparse</title>
    <item><title>No id at all</title></item>
    <item><title>Has id</title><guid>keep-me</guid></item>
  </channel>
</rss>`

	doc, err := NewParser().Run([]byte(rssData))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "keep-me", doc.Items[0].GUID)
}

func TestParseFoldsLineBreaksInIdentifier(t *testing.T) {
	rssData := "<?xml version=\"1.0\"?>\n" +
		"<rss version=\"2.0\"><channel><title>Wrapped</title>\n" +
		"<item><title>Split id</title><guid>tag:x\nepisode-1</guid></item>\n" +
		"<item><title>Windows id</title><guid>tag:x\r\nepisode-2</guid></item>\n" +
		"</channel></rss>"

	doc, err := NewParser().Run([]byte(rssData))
	require.NoError(t, err)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "tag:x episode-1", doc.Items[0].GUID)
	assert.Equal(t, "tag:x episode-2", doc.Items[1].GUID)
}

func TestParseLength(t *testing.T) {
	assert.Equal(t, int64(0), parseLength(""))
	assert.Equal(t, int64(0), parseLength("abc"))
	assert.Equal(t, int64(1024), parseLength(" 1024 "))
}
