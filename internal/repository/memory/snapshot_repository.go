package memory

import (
	"sync"
	"time"

	"intelliview-be/pkg/interview/model"

	"github.com/patrickmn/go-cache"
)

// SnapshotRepository keeps finished sessions around for late code submissions
// and report regeneration.
type SnapshotRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSnapshotRepository(ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{cache: cache.New(ttl, 10*time.Minute)}
}

func (r *SnapshotRepository) Save(snapshot model.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(snapshot.SessionID, snapshot, cache.DefaultExpiration)
}

func (r *SnapshotRepository) Get(sessionID string) (model.Snapshot, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(model.Snapshot), true
	}
	return model.Snapshot{}, false
}

// Update applies fn to a stored snapshot and writes it back, resetting its TTL.
func (r *SnapshotRepository) Update(sessionID string, fn func(s *model.Snapshot)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(sessionID)
	if !found {
		return false
	}
	snapshot := x.(model.Snapshot)
	fn(&snapshot)
	r.cache.Set(sessionID, snapshot, cache.DefaultExpiration)
	return true
}
