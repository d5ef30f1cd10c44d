package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vburojevic/lcf/internal/domain"
)

// KeyKind says how a key's value is interpreted
type KeyKind int

const (
	// KeyString matches the value as text against one or more record fields.
	KeyString KeyKind = iota
	// KeyLevel keeps records at or above a log level.
	KeyLevel
	// KeyAge keeps records newer than a duration.
	KeyAge
	// KeyIs tests a record property such as crash or stacktrace.
	KeyIs
	// KeyName labels a saved filter and matches everything.
	KeyName
)

func (k KeyKind) String() string {
	switch k {
	case KeyString:
		return "string"
	case KeyLevel:
		return "level"
	case KeyAge:
		return "age"
	case KeyIs:
		return "is"
	case KeyName:
		return "name"
	default:
		return "unknown"
	}
}

// MatchMode is how a string literal is compared to a field
type MatchMode int

const (
	MatchContains MatchMode = iota
	MatchExact
	MatchRegex
)

func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchRegex:
		return "regex"
	default:
		return "contains"
	}
}

// ParseMatchMode converts a config value to a MatchMode
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contains", "substring":
		return MatchContains, nil
	case "exact", "equals":
		return MatchExact, nil
	case "regex", "regexp":
		return MatchRegex, nil
	default:
		return MatchContains, fmt.Errorf("unknown match mode %q (use contains, exact or regex)", s)
	}
}

// KeySpec describes one filter key
type KeySpec struct {
	Name      string
	Kind      KeyKind
	Fields    []string  // record fields searched by string keys
	Mode      MatchMode // mode used by "key:" without ~ or =
	Negatable bool      // accepts the "-key:" form
	Help      string
}

// KeyTable is the set of keys the lexer recognizes and the evaluator resolves.
// A table is read-only once handed to the parser.
type KeyTable struct {
	specs         map[string]KeySpec
	defaultFields []string
}

// DefaultKeys returns the logcat key table
func DefaultKeys() *KeyTable {
	kt := &KeyTable{
		specs: make(map[string]KeySpec),
		defaultFields: []string{
			domain.FieldTag,
			domain.FieldPackage,
			domain.FieldProcess,
			domain.FieldMessage,
		},
	}
	for _, s := range []KeySpec{
		{Name: "tag", Kind: KeyString, Fields: []string{domain.FieldTag}, Negatable: true, Help: "log tag"},
		{Name: "package", Kind: KeyString, Fields: []string{domain.FieldPackage}, Negatable: true, Help: "application id; package:mine selects project apps"},
		{Name: "process", Kind: KeyString, Fields: []string{domain.FieldProcess}, Negatable: true, Help: "process name"},
		{Name: "message", Kind: KeyString, Fields: []string{domain.FieldMessage}, Negatable: true, Help: "message text"},
		{Name: "line", Kind: KeyString, Fields: []string{domain.FieldLine}, Negatable: true, Help: "whole formatted line"},
		{Name: "level", Kind: KeyLevel, Help: "minimum level: VERBOSE DEBUG INFO WARN ERROR ASSERT"},
		{Name: "age", Kind: KeyAge, Help: "newer than a duration, e.g. 30s 5m 2h 1d"},
		{Name: "is", Kind: KeyIs, Help: "crash or stacktrace"},
		{Name: "name", Kind: KeyName, Help: "filter name, matches everything"},
	} {
		kt.specs[s.Name] = s
	}
	return kt
}

// Lookup finds a key by name (case-sensitive, like logcat)
func (kt *KeyTable) Lookup(name string) (KeySpec, bool) {
	if kt == nil {
		return KeySpec{}, false
	}
	s, ok := kt.specs[name]
	return s, ok
}

// DefaultFields are the fields searched by bare values
func (kt *KeyTable) DefaultFields() []string {
	if kt == nil {
		return nil
	}
	return kt.defaultFields
}

// Specs returns all keys sorted by name
func (kt *KeyTable) Specs() []KeySpec {
	out := make([]KeySpec, 0, len(kt.specs))
	for _, s := range kt.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (kt *KeyTable) clone() *KeyTable {
	c := &KeyTable{
		specs:         make(map[string]KeySpec, len(kt.specs)),
		defaultFields: append([]string(nil), kt.defaultFields...),
	}
	for k, v := range kt.specs {
		c.specs[k] = v
	}
	return c
}

// WithMode returns a copy of the table where the string key name uses mode
// when written without ~ or =.
func (kt *KeyTable) WithMode(name string, mode MatchMode) (*KeyTable, error) {
	s, ok := kt.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown filter key %q", name)
	}
	if s.Kind != KeyString {
		return nil, fmt.Errorf("filter key %q is not a string key", name)
	}
	c := kt.clone()
	s.Mode = mode
	c.specs[name] = s
	return c, nil
}

// WithDefaultFields returns a copy of the table searching fields for bare values
func (kt *KeyTable) WithDefaultFields(fields []string) *KeyTable {
	c := kt.clone()
	c.defaultFields = append([]string(nil), fields...)
	return c
}

// Without returns a copy of the table with the named keys removed
func (kt *KeyTable) Without(names ...string) *KeyTable {
	c := kt.clone()
	for _, n := range names {
		delete(c.specs, n)
	}
	return c
}
