package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreate_FillsMissingFields(t *testing.T) {
	store := NewMemStore()

	ident, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if ident.PlayerID == "" {
		t.Fatalf("player id must be generated on first use")
	}

	if len(ident.Face) != 1 || !strings.Contains(Faces, ident.Face) {
		t.Fatalf("face must be a single glyph from the alphabet, got %q", ident.Face)
	}

	// 补全的字段要已经写回存储
	saved, _ := store.Load()

	if saved.PlayerID != ident.PlayerID || saved.Face != ident.Face {
		t.Fatalf("generated identity was not persisted: %+v", saved)
	}
}

func TestLoadOrCreate_IsStableAcrossLoads(t *testing.T) {
	store := NewMemStore()

	first, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	second, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	if first.PlayerID != second.PlayerID {
		t.Fatalf("player id changed between loads: %q vs %q", first.PlayerID, second.PlayerID)
	}
}

func TestLoadOrCreate_KeepsExistingNameAndFace(t *testing.T) {
	store := NewMemStore()

	if err := store.Save(Identity{PlayerID: "p-1", Name: "Alice", Face: "Q"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	ident, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if ident.PlayerID != "p-1" || ident.Name != "Alice" || ident.Face != "Q" {
		t.Fatalf("existing identity must be kept as-is: %+v", ident)
	}
}

func TestLoadOrCreate_ReplacesInvalidFace(t *testing.T) {
	store := NewMemStore()

	_ = store.Save(Identity{PlayerID: "p-1", Face: "?"})

	ident, err := LoadOrCreate(store)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !strings.Contains(Faces, ident.Face) || len(ident.Face) != 1 {
		t.Fatalf("invalid face must be replaced, got %q", ident.Face)
	}
}

func TestNextFace_CyclesThroughAlphabet(t *testing.T) {
	if got := NextFace("A"); got != "B" {
		t.Fatalf("want B after A, got %q", got)
	}

	if got := NextFace("Z"); got != "A" {
		t.Fatalf("want wrap-around to A after Z, got %q", got)
	}

	if got := NextFace("?"); got != "A" {
		t.Fatalf("unknown face should restart at A, got %q", got)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewFileStore(dir)

	want := Identity{PlayerID: "p-1", Name: "Alice", Face: "C"}

	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got != want {
		t.Fatalf("round trip mismatch: want %+v got %+v", want, got)
	}
}

func TestFileStore_MissingFileIsEmptyIdentity(t *testing.T) {
	store := NewFileStore(t.TempDir())

	ident, err := store.Load()
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if ident != (Identity{}) {
		t.Fatalf("want empty identity, got %+v", ident)
	}
}

func TestFileStore_CorruptFileIsEmptyIdentity(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	store := NewFileStore(dir)

	ident, err := store.Load()
	if err != nil {
		t.Fatalf("corrupt file must not be an error: %v", err)
	}

	if ident != (Identity{}) {
		t.Fatalf("corrupt file should read as a fresh identity, got %+v", ident)
	}
}
