package memory

import (
	"context"
	"sort"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/internal/store"
	"github.com/alumnet/apiserver/types"
)

// PostRepository is the in-memory news feed.
type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) view(post types.Post) types.Post {
	post.Author = r.db.summary(post.AuthorID)
	post.LikedBy = cloneIDs(post.LikedBy)
	post.Likes = len(post.LikedBy)
	comments := make([]types.Comment, len(post.Comments))
	for i, c := range post.Comments {
		c.Author = r.db.summary(c.AuthorID)
		comments[i] = c
	}
	post.Comments = comments
	return post
}

func (r *PostRepository) List(_ context.Context) ([]types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	posts := make([]types.Post, 0, len(r.db.posts))
	for _, post := range r.db.posts {
		posts = append(posts, r.view(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *PostRepository) GetByID(_ context.Context, id int64) (types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return r.view(post), nil
}

func (r *PostRepository) Create(_ context.Context, post types.Post) (types.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post.ID = r.db.nextID()
	post.CreatedAt = r.db.now()
	post.LikedBy = []int64{}
	post.Comments = []types.Comment{}
	r.db.posts[post.ID] = post
	return r.view(post), nil
}

func (r *PostRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.posts, id)
	return nil
}

func (r *PostRepository) ToggleLike(_ context.Context, postID, userID int64) (types.Post, membership.Outcome, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[postID]
	if !ok {
		return types.Post{}, 0, store.ErrNotFound
	}
	likes, outcome, err := membership.Toggle(post.LikedBy, userID, membership.Unlimited)
	if err != nil {
		return types.Post{}, 0, err
	}
	post.LikedBy = likes
	r.db.posts[postID] = post
	return r.view(post), outcome, nil
}

func (r *PostRepository) AddComment(_ context.Context, comment types.Comment) (types.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post, ok := r.db.posts[comment.PostID]
	if !ok {
		return types.Comment{}, store.ErrNotFound
	}
	comment.ID = r.db.nextID()
	comment.CreatedAt = r.db.now()
	comments := make([]types.Comment, len(post.Comments), len(post.Comments)+1)
	copy(comments, post.Comments)
	post.Comments = append(comments, comment)
	r.db.posts[post.ID] = post
	return comment, nil
}
