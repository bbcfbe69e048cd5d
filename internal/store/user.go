package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/alumnet/apiserver/types"
)

var userColumns = []string{
	"id", "email", "name", "role", "graduation_year", "department", "location",
	"company", "position", "bio", "linkedin", "phone", "avatar_key",
	"password_hash", "created_at", "updated_at",
}

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		user types.User
		year sql.NullInt64
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&year,
		&user.Department,
		&user.Location,
		&user.Company,
		&user.Position,
		&user.Bio,
		&user.LinkedIn,
		&user.Phone,
		&user.AvatarKey,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return types.User{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		user.GraduationYear = &y
	}
	user.HasAvatar = user.AvatarKey != ""
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (types.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return types.User{}, fmt.Errorf("build user query: %w", err)
	}
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": types.NormalizeEmail(email)})
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC()
	user.Email = types.NormalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (
			email, name, role, graduation_year, department, location, company,
			position, bio, linkedin, phone, avatar_key, password_hash, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Name,
		string(user.Role),
		nullableYear(user.GraduationYear),
		user.Department,
		user.Location,
		user.Company,
		user.Position,
		user.Bio,
		user.LinkedIn,
		user.Phone,
		user.AvatarKey,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	user.HasAvatar = user.AvatarKey != ""
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE users
		SET name = $1,
			role = $2,
			graduation_year = $3,
			department = $4,
			location = $5,
			company = $6,
			position = $7,
			bio = $8,
			linkedin = $9,
			phone = $10,
			avatar_key = $11,
			password_hash = $12,
			updated_at = $13
		WHERE id = $14
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		string(user.Role),
		nullableYear(user.GraduationYear),
		user.Department,
		user.Location,
		user.Company,
		user.Position,
		user.Bio,
		user.LinkedIn,
		user.Phone,
		user.AvatarKey,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	).Scan(&user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	user.HasAvatar = user.AvatarKey != ""
	return user, nil
}

// Delete removes the user. Applications, RSVPs, likes, comments, posts and
// messages cascade; authored jobs and events keep a null owner.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
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

// List returns users matching the filter, sorted by name.
func (r *UserRepository) List(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	q := r.sb.Select(userColumns...).From("users")

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"company": pattern},
			squirrel.ILike{"department": pattern},
		})
	}
	if filter.Role != "" {
		q = q.Where(squirrel.Eq{"role": string(filter.Role)})
	}
	if filter.Department != "" {
		q = q.Where("LOWER(department) = LOWER(?)", filter.Department)
	}
	if filter.GraduationYear != 0 {
		q = q.Where(squirrel.Eq{"graduation_year": filter.GraduationYear})
	}

	query, args, err := q.OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Stats aggregates role totals, alumni per graduating class and users per
// department.
func (r *UserRepository) Stats(ctx context.Context) (types.Stats, error) {
	stats := types.Stats{
		GraduationYearStats: []types.YearCount{},
		DepartmentStats:     []types.DepartmentCount{},
	}

	const totalsQuery = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE role = 'student'),
			COUNT(*) FILTER (WHERE role = 'alumni'),
			COUNT(*) FILTER (WHERE role = 'admin')
		FROM users`
	if err := r.db.QueryRowContext(ctx, totalsQuery).Scan(
		&stats.TotalUsers,
		&stats.TotalStudents,
		&stats.TotalAlumni,
		&stats.TotalAdmins,
	); err != nil {
		return types.Stats{}, err
	}

	const yearsQuery = `
		SELECT graduation_year, COUNT(*)
		FROM users
		WHERE role = 'alumni' AND graduation_year IS NOT NULL
		GROUP BY graduation_year
		ORDER BY graduation_year DESC`
	yearRows, err := r.db.QueryContext(ctx, yearsQuery)
	if err != nil {
		return types.Stats{}, err
	}
	defer yearRows.Close()
	for yearRows.Next() {
		var yc types.YearCount
		if err := yearRows.Scan(&yc.Year, &yc.Count); err != nil {
			return types.Stats{}, err
		}
		stats.GraduationYearStats = append(stats.GraduationYearStats, yc)
	}
	if err := yearRows.Err(); err != nil {
		return types.Stats{}, err
	}

	const departmentsQuery = `
		SELECT department, COUNT(*)
		FROM users
		WHERE department <> ''
		GROUP BY department
		ORDER BY COUNT(*) DESC, department ASC`
	deptRows, err := r.db.QueryContext(ctx, departmentsQuery)
	if err != nil {
		return types.Stats{}, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var dc types.DepartmentCount
		if err := deptRows.Scan(&dc.Department, &dc.Count); err != nil {
			return types.Stats{}, err
		}
		stats.DepartmentStats = append(stats.DepartmentStats, dc)
	}
	return stats, deptRows.Err()
}

func nullableYear(year *int) sql.NullInt64 {
	if year == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*year), Valid: true}
}
