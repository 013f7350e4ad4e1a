package settings

import (
	"path/filepath"
	"testing"
)

func TestNewPopulatesSchemaDefaults(t *testing.T) {
	s := New()
	if got := s.GetInt("Rounds"); got != 1 {
		t.Fatalf("Rounds default = %d, want 1", got)
	}
	if got := s.GetString("ScoringMode"); got != "Practical" {
		t.Fatalf("ScoringMode default = %q, want Practical", got)
	}
	if got := s.GetBool("Quiet"); got != false {
		t.Fatalf("Quiet default = %v, want false", got)
	}
}

func TestSetRejectsUnknownName(t *testing.T) {
	s := New()
	if err := s.Set("NotARealSetting", 1); err == nil {
		t.Fatal("expected an error for an unknown setting name")
	}
}

func TestSetRejectsTypeMismatch(t *testing.T) {
	s := New()
	if err := s.Set("Rounds", "three"); err == nil {
		t.Fatal("expected an error assigning a string to an int field")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GlobalSettings.json")

	s := New()
	s.path = path
	if err := s.Set("Rounds", 5); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("MaxSequenceLen", 6); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.GetInt("Rounds"); got != 5 {
		t.Fatalf("Rounds = %d, want 5", got)
	}
	if got := loaded.GetInt("MaxSequenceLen"); got != 6 {
		t.Fatalf("MaxSequenceLen = %d, want 6", got)
	}
}

func TestSaveOmitsNoSaveFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "GlobalSettings.json")

	s := New()
	s.path = path
	if err := s.Set("ExitJobComplete", true); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	// A fresh Load must see the schema default, not the in-memory true,
	// since ExitJobComplete is flagged NoSave.
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.GetBool("ExitJobComplete"); got != false {
		t.Fatalf("ExitJobComplete after reload = %v, want false (schema default)", got)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.json")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("missing settings file should not be an error, got %v", err)
	}
	if got := s.GetInt("PassCount"); got != 2 {
		t.Fatalf("PassCount = %d, want schema default 2", got)
	}
}

func TestListExcludesInternalFields(t *testing.T) {
	names := List()
	for _, n := range names {
		if n == "Restore" {
			t.Fatal("List() must not include Internal-flagged fields like Restore")
		}
	}
	found := false
	for _, n := range names {
		if n == "Rounds" {
			found = true
		}
	}
	if !found {
		t.Fatal("List() should include ordinary fields like Rounds")
	}
}
