// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Decentr-net/yatube/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// ErrAlreadyExists is returned when an unique entity is created twice.
var ErrAlreadyExists = fmt.Errorf("already exists")

// Storage provides methods for interacting with database.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error
	Ping(ctx context.Context) error

	EnsureUser(ctx context.Context, username string) error
	GetUser(ctx context.Context, username string) (*entities.User, error)

	CreateGroup(ctx context.Context, g *CreateGroupParams) (*entities.Group, error)
	GetGroup(ctx context.Context, slug string) (*entities.Group, error)

	CreatePost(ctx context.Context, p *CreatePostParams) (*entities.Post, error)
	UpdatePost(ctx context.Context, p *UpdatePostParams) error
	GetPost(ctx context.Context, id int64) (*entities.Post, error)
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)
	CountPosts(ctx context.Context, f PostsFilter) (int, error)

	CreateComment(ctx context.Context, p *CreateCommentParams) (*entities.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error)

	Follow(ctx context.Context, follower, followee string) error
	Unfollow(ctx context.Context, follower, followee string) error
	IsFollowing(ctx context.Context, follower, followee string) (bool, error)
}

// PostsFilter narrows a posts query. Nil fields are not applied.
type PostsFilter struct {
	Author     *string
	GroupSlug  *string
	FollowedBy *string
}

// ListPostsParams ...
// Posts are always ordered by creation time, newest first.
type ListPostsParams struct {
	PostsFilter
	Limit  int
	Offset int
}

// CreateGroupParams ...
type CreateGroupParams struct {
	Slug        string
	Title       string
	Description string
}

// CreatePostParams ...
type CreatePostParams struct {
	Author    string
	Text      string
	GroupID   *int64
	Image     string
	CreatedAt time.Time
}

// UpdatePostParams ...
type UpdatePostParams struct {
	ID      int64
	Text    string
	GroupID *int64
	Image   string
}

// CreateCommentParams ...
type CreateCommentParams struct {
	PostID    int64
	Author    string
	Text      string
	CreatedAt time.Time
}
