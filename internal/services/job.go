package services

import (
	"context"
	"errors"
	"strings"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
)

// JobRepository defines persistence operations for the job board.
type JobRepository interface {
	List(ctx context.Context, search string) ([]types.Job, error)
	GetByID(ctx context.Context, id int64) (types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	Update(ctx context.Context, job types.Job) (types.Job, error)
	Delete(ctx context.Context, id int64) error
	Apply(ctx context.Context, jobID, studentID int64) (types.Job, error)
}

// JobService encapsulates job board use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) List(ctx context.Context, search string) ([]types.Job, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *JobService) Get(ctx context.Context, id int64) (types.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	return job, translate(err, "Job")
}

// Create posts a job owned by the actor. Only alumni and admins may post.
func (s *JobService) Create(ctx context.Context, actor Actor, input types.JobInput) (types.Job, error) {
	if !actor.canPublish() {
		return types.Job{}, forbiddenError("Only alumni and admins can post jobs")
	}
	input = trimJobInput(input)
	if err := validateStruct(input); err != nil {
		return types.Job{}, err
	}

	poster := actor.ID
	return s.repo.Create(ctx, types.Job{
		Title:        input.Title,
		Company:      input.Company,
		Description:  input.Description,
		Requirements: input.Requirements,
		PostedBy:     &poster,
	})
}

// Update merges a partial edit onto a job. Only the poster or an admin may
// edit.
func (s *JobService) Update(ctx context.Context, actor Actor, id int64, update types.JobUpdate) (types.Job, error) {
	job, err := s.authorize(ctx, actor, id)
	if err != nil {
		return types.Job{}, err
	}
	update.Apply(&job)
	updated, err := s.repo.Update(ctx, job)
	return updated, translate(err, "Job")
}

// Delete removes a job and its applications. Only the poster or an admin
// may delete.
func (s *JobService) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return translate(s.repo.Delete(ctx, id), "Job")
}

// Apply records the actor's application. Only students may apply, once per
// job.
func (s *JobService) Apply(ctx context.Context, actor Actor, id int64) (types.Job, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return types.Job{}, translate(err, "Job")
	}
	if actor.Role != types.RoleStudent {
		return types.Job{}, forbiddenError("Only students can apply")
	}

	job, err := s.repo.Apply(ctx, id, actor.ID)
	if errors.Is(err, membership.ErrAlreadyMember) {
		return types.Job{}, conflictError("Already applied")
	}
	return job, translate(err, "Job")
}

func (s *JobService) authorize(ctx context.Context, actor Actor, id int64) (types.Job, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Job{}, translate(err, "Job")
	}
	if !actor.IsAdmin() && !actor.owns(job.PostedBy) {
		return types.Job{}, forbiddenError("Not authorized")
	}
	return job, nil
}

func trimJobInput(in types.JobInput) types.JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Description = strings.TrimSpace(in.Description)
	in.Requirements = strings.TrimSpace(in.Requirements)
	return in
}
