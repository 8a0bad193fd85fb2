package fs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/alttag/pkg/core"
)

// Frontmatter keys with a dedicated Document field.
const (
	KeyTitle = "title"
	KeyType  = "type"
)

// Frontmatter keys the vault reads as host facts.
const (
	KeyRevisionOf = "revision_of"
	KeyAutosave   = "autosave"
)

var errUnclosedFrontmatter = errors.New("frontmatter started but no closing delimiter found")

// splitFrontmatter separates the frontmatter block (delimiters included) from the body.
// A file without frontmatter has an empty front.
func splitFrontmatter(data []byte) (front []byte, body []byte, err error) {
	var open int
	switch {
	case bytes.HasPrefix(data, []byte("---\n")):
		open = 4
	case bytes.HasPrefix(data, []byte("---\r\n")):
		open = 5
	default:
		return nil, data, nil
	}

	pos := open
	for pos <= len(data) {
		nl := bytes.IndexByte(data[pos:], '\n')
		lineEnd := len(data)
		next := len(data)
		if nl >= 0 {
			lineEnd = pos + nl
			next = lineEnd + 1
		}
		line := bytes.TrimRight(data[pos:lineEnd], "\r")
		if string(line) == "---" {
			return data[:next], data[next:], nil
		}
		if nl < 0 {
			break
		}
		pos = next
	}
	return nil, nil, errUnclosedFrontmatter
}

// parseDocument decodes a markdown file with optional YAML frontmatter.
func parseDocument(id string, data []byte) (core.Document, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return core.Document{}, err
	}

	doc := core.Document{ID: id, Kind: core.KindPost, Body: string(body), Metadata: make(core.Metadata)}
	if len(front) == 0 {
		return doc, nil
	}

	yamlData := front[bytes.IndexByte(front, '\n')+1:]
	yamlData = yamlData[:bytes.LastIndex(yamlData, []byte("---"))]
	if err := yaml.Unmarshal(yamlData, &doc.Metadata); err != nil {
		return core.Document{}, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if doc.Metadata == nil {
		doc.Metadata = make(core.Metadata)
	}

	doc.Title = doc.Metadata.String(KeyTitle)
	delete(doc.Metadata, KeyTitle)
	if kind := strings.TrimSpace(doc.Metadata.String(KeyType)); kind != "" {
		doc.Kind = core.Kind(kind)
	}
	delete(doc.Metadata, KeyType)

	return doc, nil
}

// serializeDocument encodes a document as markdown with YAML frontmatter.
func serializeDocument(doc core.Document) ([]byte, error) {
	meta := make(map[string]any, len(doc.Metadata)+2)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	if doc.Title != "" {
		meta[KeyTitle] = doc.Title
	}
	if doc.Kind != "" && doc.Kind != core.KindPost {
		meta[KeyType] = string(doc.Kind)
	}

	var buf bytes.Buffer
	if len(meta) > 0 {
		buf.WriteString("---\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(meta); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString("---\n")
	}
	buf.WriteString(doc.Body)
	return buf.Bytes(), nil
}

// replaceBody keeps the frontmatter bytes as written and swaps the body.
func replaceBody(data []byte, body string) ([]byte, error) {
	front, _, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(front)+len(body))
	out = append(out, front...)
	out = append(out, body...)
	return out, nil
}
