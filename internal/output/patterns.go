package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// PatternStore remembers error patterns across stats runs so new ones stand out
type PatternStore struct {
	mu       sync.RWMutex
	path     string
	clock    clock.Clock
	patterns map[string]*StoredPattern
}

// StoredPattern is a persisted error pattern
type StoredPattern struct {
	Pattern    string    `json:"pattern"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
	TotalCount int       `json:"total_count"`
}

type patternsFile struct {
	Version  int                       `json:"version"`
	Patterns map[string]*StoredPattern `json:"patterns"`
}

// DefaultPatternsPath is ~/.lcf/patterns.json
func DefaultPatternsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lcf", "patterns.json")
}

// NewPatternStore opens the store at path, or DefaultPatternsPath when
// empty. A missing file starts an empty store.
func NewPatternStore(path string, clk clock.Clock) (*PatternStore, error) {
	if path == "" {
		path = DefaultPatternsPath()
	}
	if clk == nil {
		clk = clock.New()
	}
	s := &PatternStore{
		path:     path,
		clock:    clk,
		patterns: make(map[string]*StoredPattern),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file
func (s *PatternStore) Path() string {
	return s.path
}

// Load reads patterns from disk
func (s *PatternStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file patternsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}
	s.patterns = file.Patterns
	if s.patterns == nil {
		s.patterns = make(map[string]*StoredPattern)
	}
	return nil
}

// Save writes patterns to disk
func (s *PatternStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(patternsFile{Version: 1, Patterns: s.patterns}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Count returns the number of stored patterns
func (s *PatternStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patterns)
}

// AnnotatedPattern is a detected pattern with its history
type AnnotatedPattern struct {
	PatternMatch
	IsNew      bool       `json:"is_new"`
	FirstSeen  *time.Time `json:"first_seen,omitempty"`
	TotalCount int        `json:"total_count,omitempty"`
}

// Record stores the patterns and reports which of them were new
func (s *PatternStore) Record(patterns []PatternMatch) []AnnotatedPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	out := make([]AnnotatedPattern, len(patterns))
	for i, p := range patterns {
		stored, known := s.patterns[p.Pattern]
		if known {
			stored.LastSeen = now
			stored.TotalCount += p.Count
		} else {
			stored = &StoredPattern{Pattern: p.Pattern, FirstSeen: now, LastSeen: now, TotalCount: p.Count}
			s.patterns[p.Pattern] = stored
		}
		first := stored.FirstSeen
		out[i] = AnnotatedPattern{
			PatternMatch: p,
			IsNew:        !known,
			FirstSeen:    &first,
			TotalCount:   stored.TotalCount,
		}
	}
	return out
}
