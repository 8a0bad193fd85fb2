// Package fs implements the alttag ports over a vault of markdown files.
package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/alttag/pkg/core"
	"github.com/aretw0/alttag/pkg/git"
)

// Config holds the configuration for the vault.
type Config struct {
	Path      string
	SystemDir string // e.g. ".alttag"
	AutoInit  bool
	MustExist bool
	// Versioning commits every body rewrite to git.
	Versioning bool
	// RevisionDir holds historical copies; documents under it are revisions.
	RevisionDir string
	// AutosavePatterns are doublestar globs over document IDs treated as autosaves.
	AutosavePatterns []string
	// Actor is recorded on events the vault publishes.
	Actor  string
	Bus    core.TriggerBus
	Logger *slog.Logger
}

// Vault implements core.DocumentStore and core.RevisionChecker over markdown files.
type Vault struct {
	Path   string
	config Config
	git    *git.Client

	writeMu sync.Mutex // serialises writes within the process

	mu      sync.RWMutex
	written map[string]uint64 // id -> hash of the bytes the vault last wrote
	writes  int
	active  bool

	commitFailures int
}

// NewVault creates a vault rooted at config.Path.
func NewVault(config Config) *Vault {
	if config.SystemDir == "" {
		config.SystemDir = ".alttag"
	}
	return &Vault{
		Path:    config.Path,
		config:  config,
		git:     git.NewClient(config.Path, config.SystemDir+".lock", config.Logger),
		written: make(map[string]uint64),
	}
}

// Initialize creates the vault directory and, when versioning, the git repository.
func (v *Vault) Initialize(ctx context.Context) error {
	if v.config.MustExist {
		info, err := os.Stat(v.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", v.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", v.Path)
		}
	} else if err := os.MkdirAll(v.Path, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(v.Path, v.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}

	if !v.config.Versioning {
		return nil
	}
	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !v.git.IsRepo() {
		if !v.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", v.Path)
		}
		if err := v.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	if _, err := v.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps the system directory and lock file out of git.
func (v *Vault) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(v.Path, ".gitignore")
	entries := []string{v.config.SystemDir + "/", v.config.SystemDir + ".lock"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	var sb strings.Builder
	sb.Write(content)
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		sb.WriteString("\n")
	}
	for _, e := range missing {
		sb.WriteString(e + "\n")
	}
	return true, writeFileAtomic(ignorePath, []byte(sb.String()), 0644)
}

// Get retrieves a document. Returns an error wrapping core.ErrNotFound if the file does not exist.
func (v *Vault) Get(ctx context.Context, id string) (core.Document, error) {
	path, err := v.pathFor(id)
	if err != nil {
		return core.Document{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return core.Document{}, err
	}

	doc, err := parseDocument(id, data)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	return doc, nil
}

// Metadata returns a frontmatter value as a string.
func (v *Vault) Metadata(ctx context.Context, id, key string) (string, bool, error) {
	doc, err := v.Get(ctx, id)
	if err != nil {
		return "", false, err
	}
	if _, ok := doc.Metadata[key]; !ok {
		return "", false, nil
	}
	return doc.Metadata.String(key), true, nil
}

// DisplayTitle returns the frontmatter title.
func (v *Vault) DisplayTitle(ctx context.Context, id string) (string, error) {
	doc, err := v.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.Title, nil
}

// UpdateBody rewrites the body of an existing document, keeping its frontmatter bytes.
//
// Workflow:
//  1. Read the file and swap the body.
//  2. Write atomically and remember the content hash so the watcher ignores it.
//  3. (If versioning) 'git add' and 'git commit'.
//  4. Publish a saved event.
//
// Only steps 1 and 2 can fail the update. A failed commit or a failing event
// handler is logged; the new body stays in place.
func (v *Vault) UpdateBody(ctx context.Context, id, body string) error {
	path, err := v.pathFor(id)
	if err != nil {
		return err
	}

	v.writeMu.Lock()
	data, err := os.ReadFile(path)
	if err != nil {
		v.writeMu.Unlock()
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, id)
		}
		return err
	}

	out, err := replaceBody(data, body)
	if err != nil {
		v.writeMu.Unlock()
		return fmt.Errorf("failed to parse document %s: %w", id, err)
	}

	if err := v.write(ctx, id, path, out, git.ImageCommitMessage(id)); err != nil {
		v.writeMu.Unlock()
		return err
	}
	v.writeMu.Unlock()

	// The body is on disk: from here on the update has succeeded.
	doc, err := parseDocument(id, out)
	if err != nil {
		v.warn("updated document does not parse", "id", id, "error", err)
		return nil
	}
	if err := v.publish(ctx, v.Event(doc, core.SourceStore, true)); err != nil {
		v.warn("saved event handlers failed", "id", id, "error", err)
	}
	return nil
}

// Save creates or replaces a document and publishes a saved event.
// Unlike UpdateBody, handler errors are returned: Save plays the host's save action.
func (v *Vault) Save(ctx context.Context, doc core.Document) error {
	if doc.ID == "" {
		return core.ErrEmptyID
	}
	path, err := v.pathFor(doc.ID)
	if err != nil {
		return err
	}

	data, err := serializeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	v.writeMu.Lock()
	_, statErr := os.Stat(path)
	existed := statErr == nil
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		v.writeMu.Unlock()
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := v.write(ctx, doc.ID, path, data, git.FormatCommitMessage(git.CommitTypeChore, "", "update "+doc.ID, "")); err != nil {
		v.writeMu.Unlock()
		return err
	}
	v.writeMu.Unlock()

	saved, err := parseDocument(doc.ID, data)
	if err != nil {
		return fmt.Errorf("failed to parse document %s: %w", doc.ID, err)
	}
	return v.publish(ctx, v.Event(saved, core.SourceStore, existed))
}

// write must be called with writeMu held.
func (v *Vault) write(ctx context.Context, id, path string, data []byte, msg string) error {
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	v.mu.Lock()
	v.written[id] = xxhash.Sum64(data)
	v.writes++
	v.mu.Unlock()

	if !v.config.Versioning {
		return nil
	}

	if err := v.commit(ctx, path, msg); err != nil {
		v.mu.Lock()
		v.commitFailures++
		v.mu.Unlock()
		v.warn("document written but not committed", "id", id, "error", err)
	}
	return nil
}

// commit stages and commits one file under the git lock.
func (v *Vault) commit(ctx context.Context, path, msg string) error {
	unlock, err := v.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	rel, err := filepath.Rel(v.Path, path)
	if err != nil {
		return err
	}
	if err := v.git.Add(ctx, filepath.ToSlash(rel)); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	if err := v.git.Commit(ctx, msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	return nil
}

func (v *Vault) warn(msg string, args ...any) {
	if v.config.Logger != nil {
		v.config.Logger.Warn(msg, args...)
	}
}

// IsRevision implements core.RevisionChecker.
// A document is a revision when it lives under RevisionDir or names its original in revision_of.
func (v *Vault) IsRevision(ctx context.Context, id string) bool {
	if dir := strings.Trim(filepath.ToSlash(v.config.RevisionDir), "/"); dir != "" {
		if id == dir || strings.HasPrefix(id, dir+"/") {
			return true
		}
	}
	value, ok, err := v.Metadata(ctx, id, KeyRevisionOf)
	return err == nil && ok && strings.TrimSpace(value) != ""
}

// IsAutosave reports whether doc was written by an automated background save.
func (v *Vault) IsAutosave(doc core.Document) bool {
	if auto, ok := doc.Metadata[KeyAutosave].(bool); ok && auto {
		return true
	}
	for _, pattern := range v.config.AutosavePatterns {
		if ok, _ := doublestar.Match(pattern, doc.ID); ok {
			return true
		}
	}
	return false
}

// Event builds the saved event for a document as read from disk.
func (v *Vault) Event(doc core.Document, source core.Source, update bool) core.SavedEvent {
	return core.SavedEvent{
		ID:        doc.ID,
		Document:  doc,
		IsUpdate:  update,
		Autosave:  v.IsAutosave(doc),
		Actor:     v.config.Actor,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// List returns the IDs of every document in the vault, skipping the system directory and .git.
func (v *Vault) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(v.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != v.Path && v.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		id, ok := v.idFor(path)
		if ok {
			ids = append(ids, id)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// wroteLast reports whether data is exactly what the vault last wrote for id.
func (v *Vault) wroteLast(id string, data []byte) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	h, ok := v.written[id]
	return ok && h == xxhash.Sum64(data)
}

func (v *Vault) publish(ctx context.Context, ev core.SavedEvent) error {
	if v.config.Bus == nil {
		return nil
	}
	return v.config.Bus.Publish(ctx, ev)
}

// pathFor maps an ID to its file, rejecting IDs that escape the vault.
func (v *Vault) pathFor(id string) (string, error) {
	if id == "" {
		return "", core.ErrEmptyID
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(id)))
	if clean != id || filepath.IsAbs(id) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: invalid id %q", core.ErrNotFound, id)
	}
	first := strings.SplitN(clean, "/", 2)[0]
	if v.skipDir(first) {
		return "", fmt.Errorf("%w: reserved path %q", core.ErrNotFound, id)
	}
	return filepath.Join(v.Path, filepath.FromSlash(id)+".md"), nil
}

// idFor maps a file path back to its document ID. ok is false for files that hold no document.
func (v *Vault) idFor(path string) (string, bool) {
	if filepath.Ext(path) != ".md" || strings.HasPrefix(filepath.Base(path), TempFilePrefix) {
		return "", false
	}
	rel, err := filepath.Rel(v.Path, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	first := strings.SplitN(rel, "/", 2)[0]
	if v.skipDir(first) {
		return "", false
	}
	return strings.TrimSuffix(rel, ".md"), true
}

func (v *Vault) skipDir(name string) bool {
	return name == ".git" || name == v.config.SystemDir
}

func (v *Vault) setWatcherActive(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active = active
}

var (
	_ core.DocumentStore   = (*Vault)(nil)
	_ core.RevisionChecker = (*Vault)(nil)
)
