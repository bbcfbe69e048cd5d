package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alumnet/apiserver/internal/cache"
	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/types"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter types.UserFilter) ([]types.User, error)
	Stats(ctx context.Context) (types.Stats, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(user types.User) (string, error)
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Name           string     `json:"name" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Role           types.Role `json:"role" validate:"omitempty,oneof=student alumni admin"`
	GraduationYear *int       `json:"graduationYear" validate:"omitempty,gte=1900,lte=2100"`
	Department     string     `json:"department"`
	Password       string     `json:"password" validate:"omitempty,min=8,max=72"`
}

// LoginRequest is the body of a login. Name is refreshed on every login.
type LoginRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	GraduationYear *int   `json:"graduationYear" validate:"omitempty,gte=1900,lte=2100"`
	Password       string `json:"password"`
}

// AuthResult is returned by register and login: the user with a token.
type AuthResult struct {
	types.User
	Token string `json:"token"`
}

// UserService encapsulates identity and directory use-cases.
type UserService struct {
	repo     UserRepository
	tokens   TokenIssuer
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewUserService(repo UserRepository, tokens TokenIssuer, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, cache: c, cacheTTL: cacheTTL, logger: logger}
}

// Register creates an account. The role is taken from the request when
// given and inferred from the email domain otherwise.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = types.NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return AuthResult{}, err
	}

	role := req.Role
	if role == "" {
		role = types.InferRole(req.Email)
	}
	year, err := graduationYearFor(role, req.GraduationYear)
	if err != nil {
		return AuthResult{}, err
	}

	user := types.User{
		Email:          req.Email,
		Name:           req.Name,
		Role:           role,
		GraduationYear: year,
		Department:     strings.TrimSpace(req.Department),
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return AuthResult{}, err
		}
		user.PasswordHash = string(hash)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return AuthResult{}, conflictError("User already exists")
		}
		return AuthResult{}, err
	}
	invalidateUserAggregates(ctx, s.cache, s.logger)
	return s.authResult(created)
}

// Login signs a user in, creating the account on first login. The role of a
// new account is inferred from the email domain; an existing role is kept.
// Accounts with a password must present it before any field is refreshed.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = types.NormalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return AuthResult{}, err
	}

	inferred := types.InferRole(req.Email)
	year, err := graduationYearFor(inferred, req.GraduationYear)
	if err != nil {
		return AuthResult{}, err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return s.Register(ctx, RegisterRequest{
			Name:           req.Name,
			Email:          req.Email,
			Role:           inferred,
			GraduationYear: year,
			Password:       req.Password,
		})
	}
	if err != nil {
		return AuthResult{}, err
	}

	if user.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return AuthResult{}, newError(ErrUnauthorized, "Invalid email or password")
		}
	}

	user.Name = req.Name
	if inferred == types.RoleAlumni && user.Role == types.RoleAlumni {
		user.GraduationYear = year
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return AuthResult{}, translate(err, "User")
	}
	invalidateUserAggregates(ctx, s.cache, s.logger)
	return s.authResult(updated)
}

func (s *UserService) authResult(user types.User) (AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

// graduationYearFor enforces that alumni carry a graduation year and that
// other roles do not.
func graduationYearFor(role types.Role, year *int) (*int, error) {
	if role != types.RoleAlumni {
		return nil, nil
	}
	if year == nil || *year == 0 {
		return nil, validationError("Graduation year is required for alumni")
	}
	y := *year
	return &y, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	return user, translate(err, "User")
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, update types.ProfileUpdate) (types.User, error) {
	if err := validateStruct(update); err != nil {
		return types.User{}, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, translate(err, "User")
	}
	update.Apply(&user)

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, translate(err, "User")
	}
	invalidateUserAggregates(ctx, s.cache, s.logger)
	return updated, nil
}

// List returns the directory filtered and sorted by name.
func (s *UserService) List(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, validationError("role must be one of: student alumni admin")
	}
	return s.repo.List(ctx, filter)
}

// Delete removes a user and everything they own.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "User")
	}
	invalidateUserAggregates(ctx, s.cache, s.logger)
	return nil
}

// Stats returns directory aggregates, served from cache when available.
func (s *UserService) Stats(ctx context.Context) (types.Stats, error) {
	return readThrough(ctx, s.cache, s.cacheTTL, s.logger, statsCacheKey, s.repo.Stats)
}
