package news

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleFile_Articles(t *testing.T) {
	s := SampleFile{Path: writeSample(t, sampleArticles())}
	assert.Equal(t, sampleArticles(), s.Articles())
}

func TestSampleFile_ReadsOnEveryCall(t *testing.T) {
	path := writeSample(t, sampleArticles())
	s := SampleFile{Path: path}
	require.Len(t, s.Articles(), 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"articles":[]}`), 0o644))
	assert.Empty(t, s.Articles())
}

func TestSampleFile_FailsClosed(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"articles": [`), 0o644))
	noArticles := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(noArticles, []byte(`{}`), 0o644))

	for _, path := range []string{filepath.Join(dir, "missing.json"), broken, noArticles} {
		got := SampleFile{Path: path}.Articles()
		assert.NotNil(t, got, path)
		assert.Empty(t, got, path)
	}
}

func TestSampleFile_ShippedDataset(t *testing.T) {
	got := SampleFile{Path: filepath.Join("..", "..", "data", "sample.json")}.Articles()
	require.NotEmpty(t, got)
	for _, a := range got {
		assert.NotEmpty(t, a.URL)
		assert.NotEmpty(t, a.Title)
	}
}

const savedRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Saved Wire</title>
	<link>https://wire.test</link>
	<item>
		<title>Offline story</title>
		<link>https://wire.test/offline</link>
		<description>Kept for when the API is down.</description>
		<pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
		<enclosure url="https://wire.test/offline.jpg" type="image/jpeg" length="0"/>
	</item>
</channel>
</rss>`

func TestSampleFile_SavedFeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.rss")
	require.NoError(t, os.WriteFile(path, []byte(savedRSS), 0o644))

	got := SampleFile{Path: path}.Articles()
	require.Len(t, got, 1)
	assert.Equal(t, Article{
		Source:      Source{Name: "Saved Wire"},
		Title:       "Offline story",
		Description: "Kept for when the API is down.",
		URL:         "https://wire.test/offline",
		URLToImage:  "https://wire.test/offline.jpg",
		PublishedAt: "2024-05-01T10:00:00Z",
	}, got[0])

	broken := filepath.Join(dir, "broken.xml")
	require.NoError(t, os.WriteFile(broken, []byte("<rss><channel>"), 0o644))
	assert.Empty(t, SampleFile{Path: broken}.Articles())
}
