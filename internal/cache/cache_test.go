package cache

import (
	"path/filepath"
	"testing"

	"github.com/seqlab/prospect/internal/rubric"
)

func testEntry(hash, name string) Entry {
	criteria := rubric.AllFalse()
	criteria["PA1"] = true
	criteria["S2"] = true
	return Entry{
		Hash:          hash,
		Name:          name,
		Criteria:      criteria,
		Scores:        map[string]float64{"PA": 3.33, "S": 3.33, "C": 0, "F": 0},
		Label:         "CLIENTE REGULAR",
		Justification: "Cliente regular: pontuação média 1.7, algumas categorias relevantes",
	}
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRoundTrip(t *testing.T) {
	c := openTestCache(t)

	want := testEntry("abc123", "Alice")
	if err := c.Put(want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get("abc123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("entry not found after Put")
	}
	if got.Name != want.Name || got.Label != want.Label || got.Justification != want.Justification {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.Criteria["PA1"] || !got.Criteria["S2"] || got.Criteria["N1"] {
		t.Errorf("criteria not preserved: %v", got.Criteria)
	}
	if !got.Criteria.Complete() {
		t.Error("cached criteria incomplete after round trip")
	}
	if got.Scores["PA"] != 3.33 {
		t.Errorf("scores not preserved: %v", got.Scores)
	}
}

func TestMissIsNotAnError(t *testing.T) {
	c := openTestCache(t)

	_, ok, err := c.Get("missing")
	if err != nil {
		t.Fatalf("Get on empty cache: %v", err)
	}
	if ok {
		t.Error("found an entry in an empty cache")
	}
}

func TestPutReplacesSameHash(t *testing.T) {
	c := openTestCache(t)

	first := testEntry("h1", "Alice")
	if err := c.Put(first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := testEntry("h1", "Alice")
	second.Label = "CLIENTE PRIORITÁRIO"
	if err := c.Put(second); err != nil {
		t.Fatalf("Put replace: %v", err)
	}

	got, ok, err := c.Get("h1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Label != "CLIENTE PRIORITÁRIO" {
		t.Errorf("label = %q, replacement did not take", got.Label)
	}

	n, err := c.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("Len = %d after replacing the same hash, want 1", n)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put(testEntry("h2", "Bruno")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	_, ok, err := c2.Get("h2")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !ok {
		t.Error("entry lost across reopen")
	}
}
