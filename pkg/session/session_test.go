package session

import "testing"

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	if err := s.Save("user-123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	id, ok := s.Load()
	if !ok {
		t.Fatal("Load reported no session after Save")
	}
	if id != "user-123" {
		t.Errorf("loaded id: got %q, want user-123", id)
	}
}

func TestLoadMissing(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	if id, ok := s.Load(); ok || id != "" {
		t.Errorf("empty store: got (%q, %v), want (\"\", false)", id, ok)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	if err := s.Save("first"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save("second"); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if id, _ := s.Load(); id != "second" {
		t.Errorf("loaded id: got %q, want second", id)
	}
}

func TestClear(t *testing.T) {
	s := NewStoreAt(t.TempDir())

	if err := s.Save("user-123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := s.Load(); ok {
		t.Error("session survived Clear")
	}

	// Clearing an already-empty store is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}
}
