package intern_test

import (
	"sync"
	"testing"

	"github.com/specvital/rtest-go/internal/intern"
)

func TestIntern_SameStringSamePointer(t *testing.T) {
	intern.Clear()

	a := intern.Intern("hello")
	b := intern.Intern("hello")
	c := intern.Intern("world")

	if a != b {
		t.Error("expected same pointer for identical strings")
	}
	if a == c {
		t.Error("expected different pointers for different strings")
	}
	if intern.Len() != 2 {
		t.Errorf("Len() = %d, want 2", intern.Len())
	}
}

func TestIntern_ThreadSafety(t *testing.T) {
	intern.Clear()

	const n = 30
	results := make([]*string, n)
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			groups := []string{"a", "b", "c"}
			results[i] = intern.Intern(groups[i%3])
		}()
	}
	wg.Wait()

	for i := range results {
		for j := i + 1; j < len(results); j++ {
			if *results[i] == *results[j] && results[i] != results[j] {
				t.Errorf("equal strings %q got different pointers", *results[i])
			}
		}
	}
}
