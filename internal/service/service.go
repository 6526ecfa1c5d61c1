// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/Decentr-net/yatube/internal/entities"
	"github.com/Decentr-net/yatube/internal/paginator"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// PostsPageSize is the number of posts on every listing page.
const PostsPageSize = paginator.DefaultPageSize

var (
	// ErrAnonymous is returned when an operation requires an identity but none is given.
	ErrAnonymous = errors.New("anonymous identity")
	// ErrSelfFollow is returned on an attempt to follow oneself.
	ErrSelfFollow = errors.New("can not follow yourself")
	// ErrAlreadyFollowing is returned when the follow edge already exists.
	ErrAlreadyFollowing = errors.New("already following")
	// ErrPermissionDenied is returned when identity may not modify an entity.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidPost is returned when post or comment form is invalid.
	ErrInvalidPost = errors.New("invalid post")
)

// Service ...
type Service interface {
	EnsureUser(ctx context.Context, username string) error

	Index(ctx context.Context, page string) (*paginator.Page[*entities.Post], error)
	GroupPosts(ctx context.Context, slug, page string) (*GroupPage, error)
	Profile(ctx context.Context, viewer, username, page string) (*Profile, error)
	GetPost(ctx context.Context, id int64) (*PostDetail, error)

	CreatePost(ctx context.Context, author string, f PostForm) (*entities.Post, error)
	EditPost(ctx context.Context, editor string, id int64, f PostForm) (*entities.Post, error)
	AddComment(ctx context.Context, author string, postID int64, text string) (*entities.Comment, error)

	Follow(ctx context.Context, follower, followee string) error
	Unfollow(ctx context.Context, follower, followee string) error
	Feed(ctx context.Context, identity string) (*paginator.Paginator[*entities.Post], error)
}

// PostForm contains user input for post creation and editing.
type PostForm struct {
	Text  string
	Group string
	Image string
}

// GroupPage ...
type GroupPage struct {
	Group *entities.Group
	Posts *paginator.Page[*entities.Post]
}

// Profile ...
type Profile struct {
	Author *entities.User
	Posts  *paginator.Page[*entities.Post]
	// Following is nil for anonymous viewer.
	Following *bool
}

// PostDetail ...
type PostDetail struct {
	Post             *entities.Post
	Comments         []*entities.Comment
	AuthorPostsCount int
}
