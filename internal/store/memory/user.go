package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/types"
)

// UserRepository is the in-memory user table.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	email = types.NormalizeEmail(email)
	for _, user := range r.db.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	user.Email = types.NormalizeEmail(user.Email)
	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	now := r.db.now()
	user.ID = r.db.nextID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.HasAvatar = user.AvatarKey != ""
	r.db.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Update(_ context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.Email = existing.Email
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.db.now()
	user.HasAvatar = user.AvatarKey != ""
	r.db.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return store.ErrNotFound
	}
	r.db.deleteUser(id)
	return nil
}

func (r *UserRepository) List(_ context.Context, filter types.UserFilter) ([]types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := []types.User{}
	for _, u := range r.db.users {
		if matchesUser(u, filter) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (r *UserRepository) Stats(_ context.Context) (types.Stats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	users := make([]types.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		users = append(users, u)
	}
	return ComputeStats(users), nil
}

func matchesUser(u types.User, f types.UserFilter) bool {
	if f.Search != "" {
		term := strings.TrimSpace(f.Search)
		if !containsFold(u.Name, term) && !containsFold(u.Company, term) && !containsFold(u.Department, term) {
			return false
		}
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Department != "" && !strings.EqualFold(u.Department, f.Department) {
		return false
	}
	if f.GraduationYear != 0 && (u.GraduationYear == nil || *u.GraduationYear != f.GraduationYear) {
		return false
	}
	return true
}
