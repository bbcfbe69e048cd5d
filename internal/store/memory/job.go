package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/types"
)

// JobRepository is the in-memory job board.
type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

// view copies a stored job and fills in user summaries.
func (r *JobRepository) view(job types.Job) types.Job {
	if job.PostedBy != nil {
		job.Poster = r.db.summary(*job.PostedBy)
	}
	apps := make([]types.Application, len(job.Applications))
	for i, app := range job.Applications {
		if s := r.db.summary(app.StudentID); s != nil {
			app.Student = &types.UserSummary{ID: s.ID, Name: s.Name, Email: s.Email}
		}
		apps[i] = app
	}
	job.Applications = apps
	return job
}

func (r *JobRepository) List(_ context.Context, search string) ([]types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	search = strings.TrimSpace(search)
	jobs := []types.Job{}
	for _, job := range r.db.jobs {
		if search != "" && !containsFold(job.Title, search) && !containsFold(job.Company, search) && !containsFold(job.Description, search) {
			continue
		}
		jobs = append(jobs, r.view(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].PostedAt.Equal(jobs[j].PostedAt) {
			return jobs[i].PostedAt.After(jobs[j].PostedAt)
		}
		return jobs[i].ID > jobs[j].ID
	})
	return jobs, nil
}

func (r *JobRepository) GetByID(_ context.Context, id int64) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	job, ok := r.db.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return r.view(job), nil
}

func (r *JobRepository) Create(_ context.Context, job types.Job) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	job.ID = r.db.nextID()
	job.PostedAt = r.db.now()
	job.Poster = nil
	job.Applications = []types.Application{}
	r.db.jobs[job.ID] = job
	return r.view(job), nil
}

func (r *JobRepository) Update(_ context.Context, job types.Job) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.jobs[job.ID]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	existing.Title = job.Title
	existing.Company = job.Company
	existing.Description = job.Description
	existing.Requirements = job.Requirements
	r.db.jobs[job.ID] = existing
	return r.view(existing), nil
}

func (r *JobRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.jobs[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.jobs, id)
	return nil
}

func (r *JobRepository) Apply(_ context.Context, jobID, studentID int64) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	job, ok := r.db.jobs[jobID]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	if _, err := membership.Add(job.ApplicantIDs(), studentID, membership.Unlimited); err != nil {
		return types.Job{}, err
	}
	apps := make([]types.Application, len(job.Applications), len(job.Applications)+1)
	copy(apps, job.Applications)
	job.Applications = append(apps, types.Application{StudentID: studentID, AppliedAt: r.db.now()})
	r.db.jobs[jobID] = job
	return r.view(job), nil
}
