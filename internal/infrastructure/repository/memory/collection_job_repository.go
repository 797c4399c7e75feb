package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/pradiptarana/fixturesync/internal/domain/collection"
)

type CollectionJobRepository struct {
	mu    sync.RWMutex
	jobs  map[string]collection.Job
	order []string
}

func NewCollectionJobRepository() *CollectionJobRepository {
	return &CollectionJobRepository{jobs: make(map[string]collection.Job)}
}

func (r *CollectionJobRepository) Create(_ context.Context, job collection.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.PublicID]; exists {
		return fmt.Errorf("job %s already exists", job.PublicID)
	}
	r.jobs[job.PublicID] = job
	r.order = append(r.order, job.PublicID)
	return nil
}

func (r *CollectionJobRepository) Update(_ context.Context, job collection.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.jobs[job.PublicID]
	if !exists {
		return fmt.Errorf("job %s not found", job.PublicID)
	}
	if current.Status.Terminal() && current.Status != job.Status {
		return fmt.Errorf("job %s is terminal (%s)", job.PublicID, current.Status)
	}
	r.jobs[job.PublicID] = job
	return nil
}

func (r *CollectionJobRepository) GetByPublicID(_ context.Context, publicID string) (collection.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[publicID]
	return job, ok, nil
}

func (r *CollectionJobRepository) List(_ context.Context, limit int) ([]collection.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]collection.Job, 0, limit)
	// Newest first.
	for i := len(r.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, r.jobs[r.order[i]])
	}
	return out, nil
}

func (r *CollectionJobRepository) GetStatus(_ context.Context, publicID string) (collection.Status, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[publicID]
	if !ok {
		return "", false, nil
	}
	return job.Status, true, nil
}

func (r *CollectionJobRepository) LatestTerminalByScope(_ context.Context, leagueID int64, season int) (collection.Job, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		job := r.jobs[r.order[i]]
		if job.JobType != collection.JobTypeInitialHistorical {
			continue
		}
		if job.Scope.LeagueID != leagueID || job.Scope.Season != season {
			continue
		}
		if !job.Status.Terminal() {
			continue
		}
		return job, true, nil
	}
	return collection.Job{}, false, nil
}

func (r *CollectionJobRepository) RequestCancel(_ context.Context, publicID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[publicID]
	if !ok {
		return false, fmt.Errorf("job %s not found", publicID)
	}
	if job.Status.Terminal() {
		return false, nil
	}
	job.Status = collection.StatusCancelled
	r.jobs[publicID] = job
	return true, nil
}
