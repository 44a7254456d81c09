package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMintDistinctIds(t *testing.T) {
	r := New[string]()
	a := r.Mint("first")
	b := r.Mint("second")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())
}

func TestLookupAndForget(t *testing.T) {
	r := New[int]()
	id := r.Mint(7)
	op, ok := r.Lookup(id)
	if !ok || op != 7 {
		t.Fatalf("expected 7, got %v ok=%v", op, ok)
	}
	r.Forget(id)
	if _, ok := r.Lookup(id); ok {
		t.Error("expected id to be forgotten")
	}
}

func TestReplaceMutatesInPlace(t *testing.T) {
	r := New[[]string]()
	id := r.Mint([]string{"a"})
	r.Replace(id, []string{"a", "b"})
	op, _ := r.Lookup(id)
	assert.Len(t, op, 2)
}

func TestStartedAtRecorded(t *testing.T) {
	r := New[int]()
	id := r.Mint(1)
	_, ok := r.StartedAt(id)
	assert.True(t, ok)
}
