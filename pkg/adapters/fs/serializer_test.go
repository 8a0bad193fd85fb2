package fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/alttag/pkg/core"
)

func TestSplitFrontmatter(t *testing.T) {
	t.Run("no frontmatter", func(t *testing.T) {
		front, body, err := splitFrontmatter([]byte("just text"))
		require.NoError(t, err)
		assert.Empty(t, front)
		assert.Equal(t, "just text", string(body))
	})

	t.Run("closing delimiter must be its own line", func(t *testing.T) {
		data := "---\ntitle: a---b\n---\nbody --- here\n"
		front, body, err := splitFrontmatter([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, "---\ntitle: a---b\n---\n", string(front))
		assert.Equal(t, "body --- here\n", string(body))
	})

	t.Run("crlf", func(t *testing.T) {
		front, body, err := splitFrontmatter([]byte("---\r\ntitle: x\r\n---\r\nbody"))
		require.NoError(t, err)
		assert.Equal(t, "---\r\ntitle: x\r\n---\r\n", string(front))
		assert.Equal(t, "body", string(body))
	})

	t.Run("unclosed", func(t *testing.T) {
		_, _, err := splitFrontmatter([]byte("---\ntitle: x\nbody"))
		assert.ErrorIs(t, err, errUnclosedFrontmatter)
	})
}

func TestParseDocument(t *testing.T) {
	data := []byte("---\ntitle: Home\ntype: page\nseo_title: '%%title%% %%sep%% Site'\ndraft: true\n---\n<img src=\"a.jpg\">\n")

	doc, err := parseDocument("home", data)
	require.NoError(t, err)
	assert.Equal(t, "home", doc.ID)
	assert.Equal(t, "Home", doc.Title)
	assert.Equal(t, core.KindPage, doc.Kind)
	assert.Equal(t, "<img src=\"a.jpg\">\n", doc.Body)
	assert.Equal(t, "%%title%% %%sep%% Site", doc.Metadata.String("seo_title"))
	assert.Equal(t, true, doc.Metadata["draft"])
	assert.NotContains(t, doc.Metadata, KeyTitle)
	assert.NotContains(t, doc.Metadata, KeyType)
}

func TestParseDocument_DefaultsToPost(t *testing.T) {
	doc, err := parseDocument("n", []byte("plain body"))
	require.NoError(t, err)
	assert.Equal(t, core.KindPost, doc.Kind)
	assert.Equal(t, "plain body", doc.Body)
	assert.Empty(t, doc.Title)
}

func TestSerializeDocument_RoundTrip(t *testing.T) {
	doc := core.Document{
		ID:       "about",
		Kind:     core.KindPage,
		Title:    "About",
		Body:     "<p>hi</p>\n",
		Metadata: core.Metadata{"seo_title": "About us"},
	}

	data, err := serializeDocument(doc)
	require.NoError(t, err)

	got, err := parseDocument("about", data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestReplaceBody_KeepsFrontmatterBytes(t *testing.T) {
	data := []byte("---\n# a comment\ntitle:   Spaced\nb: 1\n---\nold body")

	out, err := replaceBody(data, "new body")
	require.NoError(t, err)
	assert.Equal(t, "---\n# a comment\ntitle:   Spaced\nb: 1\n---\nnew body", string(out))
}
