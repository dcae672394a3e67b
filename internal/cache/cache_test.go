package cache

import (
	"path/filepath"
	"testing"
)

type payload struct {
	Rows []string `json:"rows"`
	N    int      `json:"n"`
}

func TestKey_Deterministic(t *testing.T) {
	in := payload{Rows: []string{"a", "b"}, N: 2}

	k1, err := Key("stage/v1", in)
	if err != nil {
		t.Fatalf("Key returned error: %v", err)
	}

	k2, err := Key("stage/v1", in)
	if err != nil {
		t.Fatalf("Key returned error: %v", err)
	}

	if k1 != k2 {
		t.Errorf("identical input produced different keys: %s != %s", k1, k2)
	}
}

func TestKey_SensitiveToContentAndStage(t *testing.T) {
	base, _ := Key("stage/v1", payload{Rows: []string{"a"}})

	changed, _ := Key("stage/v1", payload{Rows: []string{"b"}})
	if base == changed {
		t.Error("changed content produced the same key")
	}

	otherStage, _ := Key("stage/v2", payload{Rows: []string{"a"}})
	if base == otherStage {
		t.Error("different stage produced the same key")
	}
}

func TestCache_MemoryRoundTrip(t *testing.T) {
	c := New(NewMemory())

	var out payload

	hit, err := c.Get("k", &out)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if hit {
		t.Fatal("Get reported a hit on an empty cache")
	}

	if err := c.Put("k", payload{Rows: []string{"x"}, N: 1}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	hit, err = c.Get("k", &out)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if !hit {
		t.Fatal("Get missed after Put")
	}

	if out.N != 1 || len(out.Rows) != 1 || out.Rows[0] != "x" {
		t.Errorf("Get decoded %+v, want the stored payload", out)
	}
}

func TestCache_SQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}

	c := New(store)
	if err := c.Put("k", payload{N: 7}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// reopen: entries survive the process boundary
	store, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite (reopen) returned error: %v", err)
	}
	defer store.Close()

	var out payload

	hit, err := New(store).Get("k", &out)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if !hit || out.N != 7 {
		t.Errorf("Get after reopen = (hit=%v, %+v), want the stored payload", hit, out)
	}
}

func TestCache_SQLitePutOverwrites(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	defer store.Close()

	c := New(store)

	if err := c.Put("k", payload{N: 1}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if err := c.Put("k", payload{N: 2}); err != nil {
		t.Fatalf("second Put returned error: %v", err)
	}

	var out payload
	if _, err := c.Get("k", &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if out.N != 2 {
		t.Errorf("Get = %+v, want the overwritten value", out)
	}
}
