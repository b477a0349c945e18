package jobstore

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/pkg/errors"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

//go:generate mockgen -source=job_store.go -destination=./job_store_mock.go -package=jobstore

const (
	JobCollection = "jobs"
)

var NotFoundErr = stderrors.New("job not found")

type JobStore interface {
	Get(ctx context.Context, id job.Id) (*job.Info, error)
	List(ctx context.Context) ([]*job.Info, error)
	Save(ctx context.Context, info *job.Info) error
	Delete(ctx context.Context, id job.Id) error
}

// jobStore keeps a read-through cache in front of the jobs collection.
// The lock guards the cache only; collection calls run without it.
type jobStore struct {
	data map[job.Id]*job.Info
	coll Collection
	m    sync.RWMutex
}

func NewJobStore(database *mongo.Database) JobStore {
	return newJobStore(NewMongoCollection(database.Collection(JobCollection)))
}

func newJobStore(coll Collection) *jobStore {
	return &jobStore{
		data: make(map[job.Id]*job.Info),
		coll: coll,
	}
}

func (s *jobStore) Get(ctx context.Context, id job.Id) (*job.Info, error) {
	s.m.RLock()
	info, exists := s.data[id]
	s.m.RUnlock()
	if exists {
		return info.Copy(), nil
	}
	loaded, err := s.coll.Find(ctx, id)
	if stderrors.Is(err, NotFoundErr) {
		return nil, NotFoundErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "error loading job")
	}
	s.m.Lock()
	if cached, ok := s.data[id]; ok {
		loaded = cached
	} else {
		s.data[id] = loaded.Copy()
	}
	s.m.Unlock()
	return loaded.Copy(), nil
}

func (s *jobStore) Save(ctx context.Context, info *job.Info) error {
	s.m.Lock()
	s.data[info.ID] = info.Copy()
	s.m.Unlock()

	err := s.coll.Insert(ctx, info.Copy())
	if stderrors.Is(err, DuplicateJobErr) {
		return s.update(ctx, info)
	}
	if err != nil {
		return errors.Wrap(err, "error saving job")
	}
	return nil
}

func (s *jobStore) update(ctx context.Context, info *job.Info) error {
	matched, err := s.coll.Update(ctx, info.Copy())
	if err != nil {
		return errors.Wrap(err, "error updating job")
	}
	if !matched {
		return NotFoundErr
	}
	return nil
}

func (s *jobStore) Delete(ctx context.Context, id job.Id) error {
	s.m.Lock()
	delete(s.data, id)
	s.m.Unlock()

	deleted, err := s.coll.Remove(ctx, id)
	if err != nil {
		return errors.Wrap(err, "error deleting job")
	}
	if !deleted {
		return NotFoundErr
	}
	return nil
}

// List reads the collection and prefers cached entries, which may be newer
// than what the collection returned.
func (s *jobStore) List(ctx context.Context) ([]*job.Info, error) {
	stored, err := s.coll.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error listing jobs")
	}
	s.m.Lock()
	defer s.m.Unlock()
	result := make([]*job.Info, 0, len(stored))
	for _, info := range stored {
		if cached, ok := s.data[info.ID]; ok {
			info = cached
		} else {
			s.data[info.ID] = info.Copy()
		}
		result = append(result, info.Copy())
	}
	return result, nil
}
