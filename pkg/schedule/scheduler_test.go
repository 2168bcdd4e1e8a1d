package schedule_test

import (
	"testing"

	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/schedule"
)

func fn(nodeid string) domain.Function {
	return domain.Function{Nodeid: nodeid, Name: nodeid}
}

func fnGroup(nodeid string, group string) domain.Function {
	f := fn(nodeid)
	f.XdistGroup = &group
	return f
}

func nodeidsOfBatches(batches [][]domain.Function) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		ids := make([]string, len(b))
		for j, f := range b {
			ids[j] = f.Nodeid
		}
		out[i] = ids
	}
	return out
}

func assertBatches(t *testing.T, got [][]domain.Function, want [][]string) {
	t.Helper()
	gotIDs := nodeidsOfBatches(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %d batches, want %d: %v", len(gotIDs), len(want), gotIDs)
	}
	for i := range want {
		if len(gotIDs[i]) != len(want[i]) {
			t.Fatalf("batch %d: got %v, want %v", i, gotIDs[i], want[i])
		}
		for j := range want[i] {
			if gotIDs[i][j] != want[i][j] {
				t.Errorf("batch %d item %d: got %q, want %q", i, j, gotIDs[i][j], want[i][j])
			}
		}
	}
}

// Load: round-robin across 3 workers.
func TestLoad_RoundRobin(t *testing.T) {
	items := []domain.Function{fn("t1"), fn("t2"), fn("t3"), fn("t4"), fn("t5")}

	batches, err := schedule.New(schedule.Load).Distribute(items, 3)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	assertBatches(t, batches, [][]string{
		{"t1", "t4"},
		{"t2", "t5"},
		{"t3"},
	})
}

// LoadGroup: items tagged db, db, ui, and untagged, across 3 workers,
// must land in 3 non-empty batches (one per group, since group count
// equals worker count).
func TestLoadGroup_PartitionsByGroup(t *testing.T) {
	items := []domain.Function{
		fnGroup("file.py::test1", "db"),
		fnGroup("file.py::test2", "db"),
		fnGroup("file.py::test3", "ui"),
		fn("file.py::test4"),
	}

	batches, err := schedule.New(schedule.LoadGroup).Distribute(items, 3)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("got %d non-empty batches, want 3: %v", len(batches), nodeidsOfBatches(batches))
	}

	// Items sharing an xdist_group must land in the same batch.
	groupOf := make(map[string]int)
	for i, b := range batches {
		for _, f := range b {
			groupOf[f.Nodeid] = i
		}
	}
	if groupOf["file.py::test1"] != groupOf["file.py::test2"] {
		t.Error("db-tagged items split across batches")
	}
}

// LoadScope: methods of the same class travel together; the scope of a
// bare module-level test is its file.
func TestLoadScope_KeepsClassMethodsTogether(t *testing.T) {
	items := []domain.Function{
		fn("file.py::TestA::t1"),
		fn("file.py::TestA::t2"),
		fn("file.py::t3"),
		fn("other.py::t4"),
	}

	batches, err := schedule.New(schedule.LoadScope).Distribute(items, 2)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	// Scopes sorted: "file.py", "file.py::TestA", "other.py"; groups
	// are dealt round-robin in that order.
	assertBatches(t, batches, [][]string{
		{"file.py::t3", "other.py::t4"},
		{"file.py::TestA::t1", "file.py::TestA::t2"},
	})
}

// LoadFile: everything in one file lands on one worker.
func TestLoadFile_GroupsByFile(t *testing.T) {
	items := []domain.Function{
		fn("file.py::TestA::t1"),
		fn("file.py::t2"),
		fn("other.py::t3"),
	}

	batches, err := schedule.New(schedule.LoadFile).Distribute(items, 2)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	assertBatches(t, batches, [][]string{
		{"file.py::TestA::t1", "file.py::t2"},
		{"other.py::t3"},
	})
}

// No: a single batch regardless of worker count.
func TestNo_SingleBatch(t *testing.T) {
	items := []domain.Function{fn("t1"), fn("t2"), fn("t3")}

	batches, err := schedule.New(schedule.No).Distribute(items, 5)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	assertBatches(t, batches, [][]string{{"t1", "t2", "t3"}})
}

// Invariant: every scheduler partitions without loss or duplication.
func TestSchedulers_CoverEveryItemExactlyOnce(t *testing.T) {
	items := []domain.Function{
		fnGroup("a.py::t1", "db"),
		fn("a.py::t2"),
		fn("b.py::t3"),
		fnGroup("b.py::t4", "db"),
		fn("c.py::TestC::t5"),
	}

	for _, mode := range schedule.All {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			batches, err := schedule.New(mode).Distribute(items, 2)
			if err != nil {
				t.Fatalf("Distribute: %v", err)
			}
			seen := make(map[string]int)
			for _, b := range batches {
				for _, f := range b {
					seen[f.Nodeid]++
				}
			}
			if len(seen) != len(items) {
				t.Fatalf("got %d distinct items, want %d", len(seen), len(items))
			}
			for id, count := range seen {
				if count != 1 {
					t.Errorf("%s scheduled %d times, want 1", id, count)
				}
			}
		})
	}
}

// Invariant: repeated scheduling of the same input is bitwise
// identical (deterministic grouping/ordering).
func TestSchedulers_Deterministic(t *testing.T) {
	items := []domain.Function{
		fnGroup("a.py::t1", "db"),
		fn("a.py::t2"),
		fn("b.py::t3"),
		fnGroup("b.py::t4", "db"),
	}

	for _, mode := range schedule.All {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			first, err := schedule.New(mode).Distribute(items, 2)
			if err != nil {
				t.Fatalf("Distribute: %v", err)
			}
			second, err := schedule.New(mode).Distribute(items, 2)
			if err != nil {
				t.Fatalf("Distribute: %v", err)
			}
			assertBatches(t, second, nodeidsOfBatches(first))
		})
	}
}

func TestScheduler_RejectsNonPositiveWorkerCount(t *testing.T) {
	items := []domain.Function{fn("t1")}
	for _, mode := range schedule.All {
		if mode == schedule.No {
			continue // No ignores numWorkers entirely.
		}
		if _, err := schedule.New(mode).Distribute(items, 0); err == nil {
			t.Errorf("%s: expected error for numWorkers=0", mode)
		}
	}
}

func TestScheduler_EmptyInputYieldsNoBatches(t *testing.T) {
	for _, mode := range schedule.All {
		batches, err := schedule.New(mode).Distribute(nil, 3)
		if err != nil {
			t.Fatalf("%s: Distribute: %v", mode, err)
		}
		if len(batches) != 0 {
			t.Errorf("%s: got %d batches for empty input, want 0", mode, len(batches))
		}
	}
}
