package loadings

import (
	"sort"
	"sync"
)

// varietyLocks serialises clamp-then-write sequences per variety within
// this process.
type varietyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newVarietyLocks() *varietyLocks {
	return &varietyLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires every code in sorted order and returns the release func.
func (v *varietyLocks) lock(codes ...string) func() {
	unique := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		unique[code] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for code := range unique {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, code := range sorted {
		m := v.get(code)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (v *varietyLocks) get(code string) *sync.Mutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.locks[code]
	if !ok {
		m = &sync.Mutex{}
		v.locks[code] = m
	}
	return m
}
