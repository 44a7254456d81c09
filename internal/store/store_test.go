package store

import "testing"

func TestNewSubtractsInitialFiles(t *testing.T) {
	s, ok := New(1000, map[string]int64{"a.txt": 200}, []string{"a.txt"})
	if !ok {
		t.Fatal("expected ok")
	}
	if s.FreeSpace() != 800 {
		t.Errorf("expected 800 free, got %d", s.FreeSpace())
	}
	if !s.Contains("a.txt") {
		t.Error("expected a.txt to be hosted")
	}
}

func TestNewFailsWhenOverdrawn(t *testing.T) {
	_, ok := New(100, map[string]int64{"a.txt": 200}, []string{"a.txt"})
	if ok {
		t.Error("expected startup failure for negative free space")
	}
}

func TestReserveAndRelease(t *testing.T) {
	s, _ := New(1000, nil, nil)
	s.Reserve("b.txt", 300)
	if s.FreeSpace() != 700 {
		t.Errorf("expected 700, got %d", s.FreeSpace())
	}
	s.Release("b.txt")
	if s.FreeSpace() != 1000 {
		t.Errorf("expected 1000 after release, got %d", s.FreeSpace())
	}
	if s.Contains("b.txt") {
		t.Error("expected b.txt removed")
	}
}

func TestReleaseNonexistentIsNoop(t *testing.T) {
	s, _ := New(1000, nil, nil)
	s.Release("ghost")
	if s.FreeSpace() != 1000 {
		t.Errorf("expected unchanged free space, got %d", s.FreeSpace())
	}
}

func TestSearchContainsPreservesOrder(t *testing.T) {
	s, _ := New(1000, nil, nil)
	s.Reserve("zeta.txt", 10)
	s.Reserve("alpha.txt", 10)
	s.Reserve("beta.txt", 10)
	got := s.Search("a")
	want := []string{"zeta.txt", "alpha.txt", "beta.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestSearchEmptySubstringMatchesAll(t *testing.T) {
	s, _ := New(1000, nil, nil)
	s.Reserve("a.txt", 10)
	s.Reserve("b.txt", 10)
	got := s.Search("")
	if len(got) != 2 {
		t.Errorf("expected 2 matches, got %v", got)
	}
}
