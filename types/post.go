package types

import "time"

// Post is an entry on the news feed.
type Post struct {
	// ID is the unique identifier of the post.
	ID int64 `json:"id"`

	// AuthorID is the user that wrote the post.
	AuthorID int64 `json:"authorId"`

	// Author summarizes the writer.
	Author *UserSummary `json:"author,omitempty"`

	// Content is the body of the post.
	Content string `json:"content"`

	// LikedBy holds the IDs of users that liked the post, in like order.
	LikedBy []int64 `json:"likedBy"`

	// Likes is len(LikedBy).
	Likes int `json:"likes"`

	// Comments are ordered oldest first.
	Comments []Comment `json:"comments"`

	// CreatedAt is when the post was published.
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a reply to a post.
type Comment struct {
	ID        int64        `json:"id"`
	PostID    int64        `json:"postId"`
	AuthorID  int64        `json:"authorId"`
	Author    *UserSummary `json:"author,omitempty"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"createdAt"`
}
