// Package core holds the domain types of alttag and the ports its engine talks to.
package core

import (
	"context"
	"strconv"
	"time"
)

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Kind is the content type of a document.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// DefaultKinds lists the document kinds the pipeline processes unless configured otherwise.
var DefaultKinds = []Kind{KindPost, KindPage}

// Document is the central entity of the domain.
// The engine only ever reads Title/Metadata and rewrites Body.
type Document struct {
	ID       string
	Kind     Kind
	Title    string
	Body     string
	Metadata Metadata
}

// String returns a metadata value as a string, or "" if it is missing or not a scalar.
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case bool, int, int64, float64:
		return fmtScalar(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	default:
		return ""
	}
}

func fmtScalar(v any) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// Source identifies who produced a SavedEvent.
type Source string

const (
	SourceStore   Source = "store"
	SourceWatcher Source = "watcher"
	SourceCLI     Source = "cli"
)

// SavedEvent signals that a document was saved.
type SavedEvent struct {
	ID        string
	Document  Document
	IsUpdate  bool
	Autosave  bool
	Actor     string
	Source    Source
	Timestamp time.Time
}

// Handler reacts to saved events.
type Handler interface {
	OnSaved(ctx context.Context, ev SavedEvent) error
}

// Verdict is the outcome of validating a saved event.
type Verdict int

const (
	Proceed Verdict = iota
	SkipAutosave
	SkipRevision
	SkipPermission
	SkipKind
)

func (v Verdict) String() string {
	switch v {
	case Proceed:
		return "proceed"
	case SkipAutosave:
		return "skip_autosave"
	case SkipRevision:
		return "skip_revision"
	case SkipPermission:
		return "skip_permission"
	case SkipKind:
		return "skip_kind"
	default:
		return "unknown"
	}
}

// Skipped reports whether the verdict ends the run without any work.
func (v Verdict) Skipped() bool {
	return v != Proceed
}
