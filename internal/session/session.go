package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kobzarvs/qindent/internal/logger"
)

const (
	autosaveInterval = 15 * time.Second
	// maxFiles bounds the remembered files; the least recently touched go first.
	maxFiles = 200
)

// FileState is what is remembered about one file between edits.
type FileState struct {
	CursorRow   int       `json:"cursor_row"`
	CursorCol   int       `json:"cursor_col"`
	IndentStyle string    `json:"indent_style,omitempty"` // "spaces" or "tabs"
	TabWidth    int       `json:"tab_width,omitempty"`
	Touched     time.Time `json:"touched"`
}

type Session struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager handles session persistence
type Manager struct {
	mu       sync.RWMutex
	session  Session
	path     string
	dirty    bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager opens the session in the XDG state directory and starts
// autosaving it.
func NewManager() (*Manager, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(path, autosaveInterval), nil
}

// NewManagerAt opens the session stored at path. A non-positive interval
// disables autosave; the session is then written by Save and Stop only.
func NewManagerAt(path string, interval time.Duration) *Manager {
	m := &Manager{
		session: Session{
			Files: make(map[string]FileState),
		},
		path:     path,
		stopChan: make(chan struct{}),
	}
	m.load()
	if interval > 0 {
		go m.autosaveLoop(interval)
	}
	return m
}

func sessionPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	dir := filepath.Join(stateDir, "qindent")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("session file unreadable, starting fresh", "path", m.path, "error", err)
		return
	}
	if session.Files == nil {
		session.Files = make(map[string]FileState)
	}
	m.session = session
}

// Save persists the session to disk if it changed.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.prune()
	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	m.dirty = false
	return nil
}

// FileState returns the saved state for a file.
func (m *Manager) FileState(absPath string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.session.Files[absPath]
	return state, ok
}

// SetFileState updates the state for a file and makes it the active one.
func (m *Manager) SetFileState(absPath string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state.Touched.IsZero() {
		state.Touched = time.Now()
	}
	m.session.Files[absPath] = state
	m.session.ActiveFile = absPath
	m.dirty = true
}

// prune drops the least recently touched files above maxFiles. The active
// file is always kept.
func (m *Manager) prune() {
	extra := len(m.session.Files) - maxFiles
	if extra <= 0 {
		return
	}
	paths := make([]string, 0, len(m.session.Files))
	for p := range m.session.Files {
		if p != m.session.ActiveFile {
			paths = append(paths, p)
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return m.session.Files[paths[i]].Touched.Before(m.session.Files[paths[j]].Touched)
	})
	for _, p := range paths[:min(extra, len(paths))] {
		delete(m.session.Files, p)
	}
	logger.Debug("session pruned", "dropped", extra, "kept", len(m.session.Files))
}

func (m *Manager) ActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveFile
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session autosave failed", "error", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop ends autosaving and writes the final state.
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	return m.Save()
}
