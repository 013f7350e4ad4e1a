package cutlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rawblock/cryptomunge/pkg/models"
)

func TestNewTransformKeptByDefault(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 5, PassCount: 3}
	if cl.IsCut(lp, models.InputRandom, 42) {
		t.Fatal("an id never recorded should default to kept")
	}
}

func TestBelowThresholdNeverCuts(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 1, PassCount: 1}
	cl.UpdateTop10(lp, models.InputRandom, []byte{1}, []byte{1, 2, 3})
	if cl.IsCut(lp, models.InputRandom, 2) {
		t.Fatal("levels below the contributing threshold must never cut anything")
	}
}

func TestUpdateTop10CutsNonKeptIDs(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1, 2}, []byte{1, 2, 3, 4})
	if cl.IsCut(lp, models.InputNatural, 1) || cl.IsCut(lp, models.InputNatural, 2) {
		t.Fatal("ids in the top-10 set must remain kept")
	}
	if !cl.IsCut(lp, models.InputNatural, 3) || !cl.IsCut(lp, models.InputNatural, 4) {
		t.Fatal("candidate ids absent from the top-10 set must be cut")
	}
}

func TestUpdateIsMonotoneWithinColumn(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 4, PassCount: 2}
	cl.UpdateTop10(lp, models.InputUserData, []byte{1}, []byte{1, 2})
	// A later, smaller top-10 that excludes id 1 must not re-cut it.
	cl.UpdateTop10(lp, models.InputUserData, []byte{2}, []byte{1, 2})
	if cl.IsCut(lp, models.InputUserData, 1) {
		t.Fatal("an id already marked kept must not be downgraded within the same run")
	}
}

func TestColumnsAreIndependentPerDataType(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1}, []byte{1, 2})
	if cl.IsCut(lp, models.InputNatural, 1) {
		t.Fatal("id 1 should be kept for InputNatural")
	}
	if cl.IsCut(lp, models.InputUserData, 1) {
		t.Fatal("InputUserData column for id 1 was never updated, should still default to kept")
	}
}

func TestFilterPoolRespectsUseCutListFlag(t *testing.T) {
	cl := New()
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1}, []byte{1, 2, 3})

	pool := []byte{1, 2, 3}
	filtered := cl.FilterPool(lp, models.InputNatural, pool, true)
	if len(filtered) != 1 || filtered[0] != 1 {
		t.Fatalf("expected only id 1 to survive filtering, got %v", filtered)
	}

	unfiltered := cl.FilterPool(lp, models.InputNatural, pool, false)
	if len(unfiltered) != len(pool) {
		t.Fatalf("useCutList=false must pass the pool through unchanged, got %v", unfiltered)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.json")

	cl := New()
	cl.path = path
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1, 5}, []byte{1, 2, 3, 5})
	if err := cl.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.IsCut(lp, models.InputNatural, 1) || reloaded.IsCut(lp, models.InputNatural, 5) {
		t.Fatal("reloaded cutlist should preserve kept ids")
	}
	if !reloaded.IsCut(lp, models.InputNatural, 2) || !reloaded.IsCut(lp, models.InputNatural, 3) {
		t.Fatal("reloaded cutlist should preserve cut ids")
	}
}

func TestLoadMissingFileReturnsEmptyCutList(t *testing.T) {
	cl, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if cl.Len() != 0 {
		t.Fatal("cutlist from a missing file should start empty")
	}
}

func TestLoadMalformedFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed JSON should produce an error")
	}
}

func TestVerifyIntegrityMatchesAfterUpdate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.json")

	cl := New()
	cl.path = path
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1, 2}, []byte{1, 2, 3})
	if err := cl.Save(); err != nil {
		t.Fatal(err)
	}

	filtered := cl.FilterPool(lp, models.InputNatural, []byte{1, 2, 3}, true)
	if err := cl.VerifyIntegrity(lp, models.InputNatural, filtered, true); err != nil {
		t.Fatalf("matrix freshly saved to disk should verify clean: %v", err)
	}
}

func TestVerifyIntegrityDetectsCutIDInFilteredPool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutlist.json")

	cl := New()
	cl.path = path
	lp := LevelPass{Level: 3, PassCount: 2}
	cl.UpdateTop10(lp, models.InputNatural, []byte{1}, []byte{1, 2})
	if err := cl.Save(); err != nil {
		t.Fatal(err)
	}

	// Smuggle a cut id (2) into the filtered list as if FilterPool were bypassed.
	err := cl.VerifyIntegrity(lp, models.InputNatural, []byte{1, 2}, true)
	if err == nil {
		t.Fatal("expected integrity error when filtered list contains a cut id")
	}
}
