package services

import (
	"context"
	"strings"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
)

// PostRepository defines persistence operations for the news feed.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	GetByID(ctx context.Context, id int64) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID, userID int64) (types.Post, membership.Outcome, error)
	AddComment(ctx context.Context, comment types.Comment) (types.Comment, error)
}

// PostInput is the body of a new post.
type PostInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// CommentInput is the body of a new comment.
type CommentInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// NewsService encapsulates news feed use-cases.
type NewsService struct {
	repo PostRepository
}

func NewNewsService(repo PostRepository) *NewsService {
	return &NewsService{repo: repo}
}

func (s *NewsService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

// Create publishes a post. Alumni and admins only.
func (s *NewsService) Create(ctx context.Context, actor Actor, input PostInput) (types.Post, error) {
	if !actor.canPublish() {
		return types.Post{}, forbiddenError("Only alumni and admins can post news")
	}
	input.Content = strings.TrimSpace(input.Content)
	if err := validateStruct(input); err != nil {
		return types.Post{}, err
	}
	return s.repo.Create(ctx, types.Post{AuthorID: actor.ID, Content: input.Content})
}

// Delete removes a post. Only its author or an admin may delete it.
func (s *NewsService) Delete(ctx context.Context, actor Actor, id int64) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err, "Post")
	}
	if !actor.IsAdmin() && post.AuthorID != actor.ID {
		return forbiddenError("Not authorized")
	}
	return translate(s.repo.Delete(ctx, id), "Post")
}

// ToggleLike adds or removes the actor's like.
func (s *NewsService) ToggleLike(ctx context.Context, actor Actor, id int64) (types.Post, error) {
	post, _, err := s.repo.ToggleLike(ctx, id, actor.ID)
	return post, translate(err, "Post")
}

// Comment appends a comment to a post. Alumni and admins only.
func (s *NewsService) Comment(ctx context.Context, actor Actor, id int64, input CommentInput) (types.Comment, error) {
	if !actor.canPublish() {
		return types.Comment{}, forbiddenError("Only alumni and admins can comment")
	}
	input.Text = strings.TrimSpace(input.Text)
	if err := validateStruct(input); err != nil {
		return types.Comment{}, err
	}
	comment, err := s.repo.AddComment(ctx, types.Comment{PostID: id, AuthorID: actor.ID, Text: input.Text})
	return comment, translate(err, "Post")
}
