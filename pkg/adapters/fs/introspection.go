package fs

import (
	"github.com/aretw0/introspection"
)

// VaultState exposes internal state for observability.
type VaultState struct {
	Path          string `json:"path"`
	SystemDir     string `json:"system_dir"`
	Versioning    bool   `json:"versioning"`
	RevisionDir   string `json:"revision_dir,omitempty"`
	Writes        int    `json:"writes"`
	Tracked       int    `json:"tracked"`
	WatcherActive bool   `json:"watcher_active"`

	// CommitFailures counts writes that reached disk but not git.
	CommitFailures int `json:"commit_failures,omitempty"`
}

// State implements introspection.Introspectable.
func (v *Vault) State() any {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return VaultState{
		Path:           v.Path,
		SystemDir:      v.config.SystemDir,
		Versioning:     v.config.Versioning,
		RevisionDir:    v.config.RevisionDir,
		Writes:         v.writes,
		Tracked:        len(v.written),
		WatcherActive:  v.active,
		CommitFailures: v.commitFailures,
	}
}

// ComponentType implements introspection.Component.
func (v *Vault) ComponentType() string {
	return "vault"
}

// WatcherState exposes watcher counters.
type WatcherState struct {
	Published int `json:"published"`
	Ignored   int `json:"ignored"`
}

// State implements introspection.Introspectable.
func (w *Watcher) State() any {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WatcherState{Published: w.published, Ignored: w.ignored}
}

// ComponentType implements introspection.Component.
func (w *Watcher) ComponentType() string {
	return "vault-watcher"
}

var (
	_ introspection.Introspectable = (*Vault)(nil)
	_ introspection.Component      = (*Vault)(nil)
	_ introspection.Introspectable = (*Watcher)(nil)
	_ introspection.Component      = (*Watcher)(nil)
)
