// Package settings implements a declarative GlobalSettings schema in
// place of a reflection-driven settings object: an enumerated table of
// {name, type, default, flags} drives load/save/list without any
// runtime reflection.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// Kind names the value type a Field holds.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBool
)

// Field describes one entry in the settings schema: its name, type,
// default value, and persistence flags. A NoSave field is never
// written out by Save.
type Field struct {
	Name     string
	Kind     Kind
	Default  any
	NoSave   bool // never written to disk, even if changed at runtime
	Internal bool // not listed to external callers (API, REPL)
}

// Schema is the fixed, ordered table of every tunable global. Declared
// once; Settings instances are populated from it, never from reflecting
// over a struct's fields.
var Schema = []Field{
	{Name: "Rounds", Kind: KindInt, Default: 1},
	{Name: "MaxSequenceLen", Kind: KindInt, Default: 4},
	{Name: "InputType", Kind: KindString, Default: string(models.InputCombined)},
	{Name: "PassCount", Kind: KindInt, Default: 2},
	{Name: "DesiredContenders", Kind: KindInt, Default: 1000},
	{Name: "ScoringMode", Kind: KindString, Default: string(models.ScoringPractical)},
	{Name: "Mode", Kind: KindString, Default: string(models.ModeExploratory)},
	{Name: "Quiet", Kind: KindBool, Default: false},
	{Name: "SqlCompact", Kind: KindBool, Default: false},
	{Name: "CreateMungeFailDB", Kind: KindBool, Default: false},
	{Name: "ExitJobComplete", Kind: KindBool, Default: false, NoSave: true},
	{Name: "LogMungeOutput", Kind: KindBool, Default: false},
	{Name: "FlushThreshold", Kind: KindInt, Default: 100},
	{Name: "RemoveInverse", Kind: KindBool, Default: false, NoSave: true},
	{Name: "UseCutList", Kind: KindBool, Default: true},
	{Name: "Restore", Kind: KindBool, Default: false, NoSave: true, Internal: true},
}

func fieldByName(name string) (Field, bool) {
	for _, f := range Schema {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Settings holds the current value of every schema field, keyed by name.
type Settings struct {
	values map[string]any
	path   string
}

// New returns Settings populated entirely from schema defaults.
func New() *Settings {
	s := &Settings{values: make(map[string]any, len(Schema))}
	for _, f := range Schema {
		s.values[f.Name] = f.Default
	}
	return s
}

// Load reads path as a JSON key/value map and applies it over the schema
// defaults. An unknown key in the file is ignored (forward/backward
// compatibility across schema changes); a missing file yields defaults.
func Load(path string) (*Settings, error) {
	s := New()
	s.path = path
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("settings: reading %s: %w", path, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return s, fmt.Errorf("settings: parsing %s: %w", path, err)
	}
	for name, rawVal := range raw {
		f, ok := fieldByName(name)
		if !ok {
			continue // unknown key: schema evolved, ignore rather than fail
		}
		if err := s.setFromJSON(f, rawVal); err != nil {
			return s, fmt.Errorf("settings: field %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Settings) setFromJSON(f Field, raw json.RawMessage) error {
	switch f.Kind {
	case KindInt:
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.values[f.Name] = v
	case KindString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.values[f.Name] = v
	case KindBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.values[f.Name] = v
	}
	return nil
}

// Save atomically rewrites path with every non-NoSave field's current
// value, mirroring the CutList's temp-file-then-rename persistence idiom.
func (s *Settings) Save() error {
	if s.path == "" {
		return nil
	}
	out := make(map[string]any, len(Schema))
	for _, f := range Schema {
		if f.NoSave {
			continue
		}
		out[f.Name] = s.values[f.Name]
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// Get returns the current value of name, or nil if name is not in the
// schema.
func (s *Settings) Get(name string) any {
	return s.values[name]
}

// GetInt, GetString, and GetBool are typed accessors for the common case
// where the caller already knows a field's Kind.
func (s *Settings) GetInt(name string) int {
	v, _ := s.values[name].(int)
	return v
}

func (s *Settings) GetString(name string) string {
	v, _ := s.values[name].(string)
	return v
}

func (s *Settings) GetBool(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

// Set assigns a new value for name, validating it against the schema's
// declared Kind. Returns models.ErrArgumentOutOfRange for an unknown name
// or a type mismatch.
func (s *Settings) Set(name string, value any) error {
	f, ok := fieldByName(name)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", models.ErrArgumentOutOfRange, name)
	}
	switch f.Kind {
	case KindInt:
		if _, ok := value.(int); !ok {
			return fmt.Errorf("%w: %s expects an int", models.ErrArgumentOutOfRange, name)
		}
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s expects a string", models.ErrArgumentOutOfRange, name)
		}
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s expects a bool", models.ErrArgumentOutOfRange, name)
		}
	}
	s.values[name] = value
	return nil
}

// List returns every non-Internal field name in alphabetical order, for the
// API/REPL surfaces that enumerate tunable globals without exposing
// bookkeeping-only fields like Restore.
func List() []string {
	names := make([]string, 0, len(Schema))
	for _, f := range Schema {
		if !f.Internal {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names) // stable external ordering independent of schema declaration order
	return names
}
