// Package schedule partitions a discovered item sequence across N
// worker batches under one of six distribution policies. Every policy
// operates uniformly on []domain.Function, keying the scope, file, and
// group policies off Function.Nodeid and Function.XdistGroup.
package schedule

import (
	"sort"
	"strings"

	"github.com/specvital/rtest-go/internal/intern"
	"github.com/specvital/rtest-go/pkg/domain"
	"github.com/specvital/rtest-go/pkg/rtesterr"
)

// Scheduler partitions items into at most numWorkers non-empty
// batches.
type Scheduler interface {
	Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error)
}

// New returns the Scheduler implementing mode.
func New(mode DistributionMode) Scheduler {
	switch mode {
	case Load:
		return loadScheduler{}
	case LoadScope:
		return loadScopeScheduler{}
	case LoadFile:
		return loadFileScheduler{}
	case LoadGroup:
		return loadGroupScheduler{}
	case WorkSteal:
		return workStealScheduler{}
	case No:
		return noScheduler{}
	default:
		return loadScheduler{}
	}
}

func validateWorkerCount(numWorkers int) error {
	if numWorkers <= 0 {
		return &rtesterr.InvalidWorkerCountError{Requested: numWorkers, Min: 1, Max: int(^uint(0) >> 1)}
	}
	return nil
}

// roundRobin is the shared Load/WorkSteal policy: item i goes to
// worker i mod numWorkers, empty worker batches dropped.
func roundRobin(items []domain.Function, numWorkers int) [][]domain.Function {
	if len(items) == 0 {
		return nil
	}
	if numWorkers == 1 {
		return [][]domain.Function{items}
	}

	workers := make([][]domain.Function, numWorkers)
	for i, item := range items {
		w := i % numWorkers
		workers[w] = append(workers[w], item)
	}
	return dropEmpty(workers)
}

func dropEmpty(workers [][]domain.Function) [][]domain.Function {
	out := workers[:0]
	for _, w := range workers {
		if len(w) > 0 {
			out = append(out, w)
		}
	}
	return out
}

type loadScheduler struct{}

func (loadScheduler) Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error) {
	if err := validateWorkerCount(numWorkers); err != nil {
		return nil, err
	}
	return roundRobin(items, numWorkers), nil
}

type workStealScheduler struct{}

func (workStealScheduler) Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error) {
	if err := validateWorkerCount(numWorkers); err != nil {
		return nil, err
	}
	// Partitioning is round-robin; the actual work-stealing happens in
	// pkg/workerpool's per-item executor, not here.
	return roundRobin(items, numWorkers), nil
}

type noScheduler struct{}

func (noScheduler) Distribute(items []domain.Function, _ int) ([][]domain.Function, error) {
	if len(items) == 0 {
		return nil, nil
	}
	return [][]domain.Function{items}, nil
}

type loadScopeScheduler struct{}

func (loadScopeScheduler) Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error) {
	if err := validateWorkerCount(numWorkers); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if numWorkers == 1 {
		return [][]domain.Function{items}, nil
	}
	groups := groupItemsByKey(items, func(f domain.Function) string { return extractScope(f.Nodeid) })
	return distributeGroupsToWorkers(groups, numWorkers), nil
}

type loadFileScheduler struct{}

func (loadFileScheduler) Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error) {
	if err := validateWorkerCount(numWorkers); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if numWorkers == 1 {
		return [][]domain.Function{items}, nil
	}
	groups := groupItemsByKey(items, func(f domain.Function) string { return extractFile(f.Nodeid) })
	return distributeGroupsToWorkers(groups, numWorkers), nil
}

type loadGroupScheduler struct{}

func (loadGroupScheduler) Distribute(items []domain.Function, numWorkers int) ([][]domain.Function, error) {
	if err := validateWorkerCount(numWorkers); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if numWorkers == 1 {
		return [][]domain.Function{items}, nil
	}
	groups := groupItemsByKey(items, func(f domain.Function) string {
		if f.XdistGroup != nil {
			return *intern.Intern("g:" + *f.XdistGroup)
		}
		return *intern.Intern("n:" + f.Nodeid)
	})
	return distributeGroupsToWorkers(groups, numWorkers), nil
}

// groupItemsByKey groups items by key, then returns the groups ordered
// by sorted key, so grouping order never depends on map iteration
// order.
func groupItemsByKey(items []domain.Function, key func(domain.Function) string) [][]domain.Function {
	index := make(map[string]int)
	var groups [][]domain.Function
	var keys []string

	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
			keys = append(keys, k)
		}
		groups[i] = append(groups[i], item)
	}

	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })

	sorted := make([][]domain.Function, len(groups))
	for pos, idx := range order {
		sorted[pos] = groups[idx]
	}
	return sorted
}

// distributeGroupsToWorkers assigns whole groups round-robin across
// numWorkers, then drops empty worker batches.
func distributeGroupsToWorkers(groups [][]domain.Function, numWorkers int) [][]domain.Function {
	if len(groups) == 0 || numWorkers == 0 {
		return nil
	}
	workers := make([][]domain.Function, numWorkers)
	for i, group := range groups {
		w := i % numWorkers
		workers[w] = append(workers[w], group...)
	}
	return dropEmpty(workers)
}

// extractScope returns the "file::Class" prefix of a node id, or the
// bare file path if there is no class segment.
func extractScope(nodeid string) string {
	first := strings.Index(nodeid, "::")
	if first < 0 {
		return nodeid
	}
	rest := nodeid[first+2:]
	if second := strings.Index(rest, "::"); second >= 0 {
		return nodeid[:first+2+second]
	}
	return nodeid[:first]
}

// extractFile returns the file portion of a node id.
func extractFile(nodeid string) string {
	if i := strings.Index(nodeid, "::"); i >= 0 {
		return nodeid[:i]
	}
	return nodeid
}
