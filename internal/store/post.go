package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/types"
	"github.com/lib/pq"
)

const postSelect = `
	SELECT p.id, p.author_id, p.content, p.created_at, u.name, u.email, u.role
	FROM posts p
	JOIN users u ON u.id = p.author_id`

// PostRepository handles persistence for the news feed.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row rowScanner) (types.Post, error) {
	var (
		post   types.Post
		author types.UserSummary
	)
	if err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Content,
		&post.CreatedAt,
		&author.Name,
		&author.Email,
		&author.Role,
	); err != nil {
		return types.Post{}, err
	}
	author.ID = post.AuthorID
	post.Author = &author
	post.LikedBy = []int64{}
	post.Comments = []types.Comment{}
	return post, nil
}

// List returns posts newest first.
func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	rows, err := r.db.QueryContext(ctx, postSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []types.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := attachPostChildren(ctx, r.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (types.Post, error) {
	return getPost(ctx, r.db, id)
}

func getPost(ctx context.Context, q queryer, id int64) (types.Post, error) {
	post, err := scanPost(q.QueryRowContext(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	posts := []types.Post{post}
	if err := attachPostChildren(ctx, q, posts); err != nil {
		return types.Post{}, err
	}
	return posts[0], nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	const query = `
		INSERT INTO posts (author_id, content, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, post.AuthorID, post.Content, time.Now().UTC()).Scan(&id); err != nil {
		return types.Post{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
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

// ToggleLike adds or removes userID from the post's likes under a row lock.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID int64) (types.Post, membership.Outcome, error) {
	var (
		post    types.Post
		outcome membership.Outcome
	)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRow(ctx, tx, "posts", postID); err != nil {
			return err
		}
		likes, err := memberIDs(ctx, tx, "post_likes", "post_id", "user_id", postID)
		if err != nil {
			return err
		}
		_, outcome, err = membership.Toggle(likes, userID, membership.Unlimited)
		if err != nil {
			return err
		}

		if outcome == membership.Removed {
			_, err = tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
		}
		if err != nil {
			return err
		}

		post, err = getPost(ctx, tx, postID)
		return err
	})
	if err != nil {
		return types.Post{}, 0, err
	}
	return post, outcome, nil
}

func (r *PostRepository) AddComment(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO post_comments (post_id, author_id, body, created_at)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM posts WHERE id = $1)
		RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.AuthorID, comment.Text, comment.CreatedAt).Scan(&comment.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func attachPostChildren(ctx context.Context, q queryer, posts []types.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
		index[post.ID] = i
	}

	likeRows, err := q.QueryContext(ctx, `SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var postID, userID int64
		if err := likeRows.Scan(&postID, &userID); err != nil {
			return err
		}
		i := index[postID]
		posts[i].LikedBy = append(posts[i].LikedBy, userID)
	}
	if err := likeRows.Err(); err != nil {
		return err
	}

	const commentsQuery = `
		SELECT c.id, c.post_id, c.author_id, c.body, c.created_at, u.name, u.email, u.role
		FROM post_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.id`
	commentRows, err := q.QueryContext(ctx, commentsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer commentRows.Close()
	for commentRows.Next() {
		var (
			comment types.Comment
			author  types.UserSummary
		)
		if err := commentRows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.Text,
			&comment.CreatedAt,
			&author.Name,
			&author.Email,
			&author.Role,
		); err != nil {
			return err
		}
		author.ID = comment.AuthorID
		comment.Author = &author
		i := index[comment.PostID]
		posts[i].Comments = append(posts[i].Comments, comment)
	}
	if err := commentRows.Err(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].Likes = len(posts[i].LikedBy)
	}
	return nil
}
