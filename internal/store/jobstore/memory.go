package jobstore

import (
	"context"
	"sort"
	"sync"

	"github.com/ykhdr/hashbench/internal/messages/job"
)

type memoryStore struct {
	data map[job.Id]*job.Info
	m    sync.RWMutex
}

// NewMemoryStore keeps jobs in process memory only.
func NewMemoryStore() JobStore {
	return &memoryStore{data: make(map[job.Id]*job.Info)}
}

func (s *memoryStore) Get(_ context.Context, id job.Id) (*job.Info, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	info, exists := s.data[id]
	if !exists {
		return nil, NotFoundErr
	}
	return info.Copy(), nil
}

func (s *memoryStore) List(_ context.Context) ([]*job.Info, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	result := make([]*job.Info, 0, len(s.data))
	for _, info := range s.data {
		result = append(result, info.Copy())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memoryStore) Save(_ context.Context, info *job.Info) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[info.ID] = info.Copy()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id job.Id) error {
	s.m.Lock()
	defer s.m.Unlock()
	if _, exists := s.data[id]; !exists {
		return NotFoundErr
	}
	delete(s.data, id)
	return nil
}
