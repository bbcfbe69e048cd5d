package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
	"github.com/lib/pq"
)

// JobRepository handles persistence for jobs and their applications.
type JobRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *JobRepository) selectJobs() squirrel.SelectBuilder {
	return r.sb.Select(
		"j.id", "j.title", "j.company", "j.description", "j.requirements",
		"j.posted_by", "j.posted_at", "p.name", "p.email", "p.role",
	).
		From("jobs j").
		LeftJoin("users p ON p.id = j.posted_by")
}

func scanJob(row rowScanner) (types.Job, error) {
	var (
		job         types.Job
		postedBy    sql.NullInt64
		posterName  sql.NullString
		posterEmail sql.NullString
		posterRole  sql.NullString
	)
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Description,
		&job.Requirements,
		&postedBy,
		&job.PostedAt,
		&posterName,
		&posterEmail,
		&posterRole,
	); err != nil {
		return types.Job{}, err
	}
	if postedBy.Valid {
		id := postedBy.Int64
		job.PostedBy = &id
		job.Poster = &types.UserSummary{
			ID:    id,
			Name:  posterName.String,
			Email: posterEmail.String,
			Role:  types.Role(posterRole.String),
		}
	}
	job.Applications = []types.Application{}
	return job, nil
}

// List returns jobs newest first. A non-empty search matches title, company
// or description case-insensitively.
func (r *JobRepository) List(ctx context.Context, search string) ([]types.Job, error) {
	q := r.selectJobs()
	if search != "" {
		pattern := likePattern(search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"j.title": pattern},
			squirrel.ILike{"j.company": pattern},
			squirrel.ILike{"j.description": pattern},
		})
	}
	query, args, err := q.OrderBy("j.posted_at DESC", "j.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build job list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachApplications(ctx, r.db, jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (types.Job, error) {
	return r.get(ctx, r.db, id)
}

func (r *JobRepository) get(ctx context.Context, q queryer, id int64) (types.Job, error) {
	query, args, err := r.selectJobs().Where(squirrel.Eq{"j.id": id}).ToSql()
	if err != nil {
		return types.Job{}, fmt.Errorf("build job query: %w", err)
	}
	job, err := scanJob(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, err
	}
	jobs := []types.Job{job}
	if err := r.attachApplications(ctx, q, jobs); err != nil {
		return types.Job{}, err
	}
	return jobs[0], nil
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	job.PostedAt = time.Now().UTC()

	const query = `
		INSERT INTO jobs (title, company, description, requirements, posted_by, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Description,
		job.Requirements,
		job.PostedBy,
		job.PostedAt,
	).Scan(&id); err != nil {
		return types.Job{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *JobRepository) Update(ctx context.Context, job types.Job) (types.Job, error) {
	const query = `
		UPDATE jobs
		SET title = $1,
			company = $2,
			description = $3,
			requirements = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, job.Title, job.Company, job.Description, job.Requirements, job.ID)
	if err != nil {
		return types.Job{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Job{}, err
	}
	if affected == 0 {
		return types.Job{}, ErrNotFound
	}
	return r.GetByID(ctx, job.ID)
}

func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM jobs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Apply records an application while holding a lock on the job row, so two
// concurrent requests from the same student cannot both succeed.
func (r *JobRepository) Apply(ctx context.Context, jobID, studentID int64) (types.Job, error) {
	var job types.Job
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "jobs", jobID); err != nil {
			return err
		}
		applicants, err := memberIDs(ctx, tx, "job_applications", "job_id", "student_id", jobID)
		if err != nil {
			return err
		}
		if _, err := membership.Add(applicants, studentID, membership.Unlimited); err != nil {
			return err
		}

		const insert = `
			INSERT INTO job_applications (job_id, student_id, applied_at)
			VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, insert, jobID, studentID, time.Now().UTC()); err != nil {
			if isUniqueViolation(err) {
				return membership.ErrAlreadyMember
			}
			return err
		}

		job, err = r.get(ctx, tx, jobID)
		return err
	})
	if err != nil {
		return types.Job{}, err
	}
	return job, nil
}

func (r *JobRepository) attachApplications(ctx context.Context, q queryer, jobs []types.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	ids := make([]int64, len(jobs))
	index := make(map[int64]int, len(jobs))
	for i, job := range jobs {
		ids[i] = job.ID
		index[job.ID] = i
	}

	const query = `
		SELECT a.job_id, a.student_id, a.applied_at, u.name, u.email
		FROM job_applications a
		JOIN users u ON u.id = a.student_id
		WHERE a.job_id = ANY($1)
		ORDER BY a.id`
	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			jobID int64
			app   types.Application
			name  string
			email string
		)
		if err := rows.Scan(&jobID, &app.StudentID, &app.AppliedAt, &name, &email); err != nil {
			return err
		}
		app.Student = &types.UserSummary{ID: app.StudentID, Name: name, Email: email}
		i := index[jobID]
		jobs[i].Applications = append(jobs[i].Applications, app)
	}
	return rows.Err()
}
