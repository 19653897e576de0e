package deltastore

import (
	"sort"
	"sync"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

// MemoryLog keeps deltas in process, ordered by timestamp per registry.
type MemoryLog struct {
	mu     sync.RWMutex
	deltas map[string][]*revocation.Delta
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		deltas: map[string][]*revocation.Delta{},
	}
}

func (r *MemoryLog) Put(d *revocation.Delta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.deltas[d.RegistryID], clone(d))
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp < list[j].Timestamp
	})
	r.deltas[d.RegistryID] = list

	return nil
}

func (r *MemoryLog) Range(registryID string, from, to int64) ([]*revocation.Delta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*revocation.Delta
	for _, d := range r.deltas[registryID] {
		if d.Timestamp > from && d.Timestamp <= to {
			out = append(out, clone(d))
		}
	}

	return out, nil
}

func (r *MemoryLog) Last(registryID string, at int64) (*revocation.Delta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.deltas[registryID]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Timestamp > at
	})

	if i == 0 {
		return nil, nil
	}

	return clone(list[i-1]), nil
}

func clone(d *revocation.Delta) *revocation.Delta {
	out := *d
	out.Issued = append([]uint32{}, d.Issued...)
	out.Revoked = append([]uint32{}, d.Revoked...)
	if len(d.Transient) > 0 {
		out.Transient = append([]uint32{}, d.Transient...)
	}
	return &out
}
