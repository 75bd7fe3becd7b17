package snowflake

import (
	"strconv"
	"sync"
	"testing"
)

func TestGenID(t *testing.T) {
	id := GenID()
	if id <= 0 {
		t.Fatalf("expected id > 0, got %d", id)
	}

	t.Logf("generated id: %d", id)
}

func TestGenID_Unique(t *testing.T) {
	const n = 10000
	ids := make(map[int64]struct{}, n)

	for i := 0; i < n; i++ {
		id := GenID()
		if _, exists := ids[id]; exists {
			t.Fatalf("duplicate id found: %d", id)
		}
		ids[id] = struct{}{}
	}
}

func TestGenID_Concurrent(t *testing.T) {
	const (
		goroutines = 20
		perRoutine = 2000
		total      = goroutines * perRoutine
	)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = make(map[int64]struct{}, total)
		dups int
	)

	wg.Add(goroutines)

	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perRoutine; i++ {
				id := GenID()

				mu.Lock()
				if _, exists := ids[id]; exists {
					dups++
				}
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	if dups > 0 {
		t.Fatalf("found %d duplicate ids in concurrent test", dups)
	}
}

func TestGenStringID_Parses(t *testing.T) {
	s := GenStringID()
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		t.Fatalf("string id %q is not numeric: %v", s, err)
	}
	if id <= 0 {
		t.Fatalf("expected id > 0, got %d", id)
	}
}
