// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Decentr-net/yatube/internal/entities"
	"github.com/Decentr-net/yatube/internal/paginator"
	"github.com/Decentr-net/yatube/internal/service"
	"github.com/Decentr-net/yatube/internal/storage"
)

type srv struct {
	s      storage.Storage
	policy *bluemonday.Policy
}

// New creates new instance of service.
func New(s storage.Storage) service.Service {
	return srv{
		s:      s,
		policy: bluemonday.StrictPolicy(),
	}
}

func (s srv) EnsureUser(ctx context.Context, username string) error {
	if username == "" {
		return service.ErrAnonymous
	}

	if err := s.s.EnsureUser(ctx, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}

	return nil
}

func (s srv) Index(ctx context.Context, page string) (*paginator.Page[*entities.Post], error) {
	p, err := s.posts(storage.PostsFilter{}).GetPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	return p, nil
}

func (s srv) GroupPosts(ctx context.Context, slug, page string) (*service.GroupPage, error) {
	g, err := s.s.GetGroup(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	p, err := s.posts(storage.PostsFilter{GroupSlug: &g.Slug}).GetPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	return &service.GroupPage{
		Group: g,
		Posts: p,
	}, nil
}

func (s srv) Profile(ctx context.Context, viewer, username, page string) (*service.Profile, error) {
	u, err := s.s.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	p, err := s.posts(storage.PostsFilter{Author: &u.Username}).GetPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}

	out := service.Profile{
		Author: u,
		Posts:  p,
	}

	if viewer != "" {
		following, err := s.s.IsFollowing(ctx, viewer, u.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to check following: %w", err)
		}
		out.Following = &following
	}

	return &out, nil
}

func (s srv) GetPost(ctx context.Context, id int64) (*service.PostDetail, error) {
	p, err := s.s.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	comments, err := s.s.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	count, err := s.s.CountPosts(ctx, storage.PostsFilter{Author: &p.Author})
	if err != nil {
		return nil, fmt.Errorf("failed to count author's posts: %w", err)
	}

	return &service.PostDetail{
		Post:             p,
		Comments:         comments,
		AuthorPostsCount: count,
	}, nil
}

func (s srv) CreatePost(ctx context.Context, author string, f service.PostForm) (*entities.Post, error) {
	if author == "" {
		return nil, service.ErrAnonymous
	}

	text, groupID, err := s.validate(ctx, f)
	if err != nil {
		return nil, err
	}

	p, err := s.s.CreatePost(ctx, &storage.CreatePostParams{
		Author:    author,
		Text:      text,
		GroupID:   groupID,
		Image:     f.Image,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return p, nil
}

func (s srv) EditPost(ctx context.Context, editor string, id int64, f service.PostForm) (*entities.Post, error) {
	if editor == "" {
		return nil, service.ErrAnonymous
	}

	p, err := s.s.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if p.Author != editor {
		return nil, service.ErrPermissionDenied
	}

	text, groupID, err := s.validate(ctx, f)
	if err != nil {
		return nil, err
	}

	if err := s.s.UpdatePost(ctx, &storage.UpdatePostParams{
		ID:      id,
		Text:    text,
		GroupID: groupID,
		Image:   f.Image,
	}); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	p, err = s.s.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return p, nil
}

func (s srv) AddComment(ctx context.Context, author string, postID int64, text string) (*entities.Comment, error) {
	if author == "" {
		return nil, service.ErrAnonymous
	}

	if _, err := s.s.GetPost(ctx, postID); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	text = s.sanitize(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", service.ErrInvalidPost)
	}

	c, err := s.s.CreateComment(ctx, &storage.CreateCommentParams{
		PostID:    postID,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return c, nil
}

func (s srv) Follow(ctx context.Context, follower, followee string) error {
	if follower == "" {
		return service.ErrAnonymous
	}

	if follower == followee {
		return service.ErrSelfFollow
	}

	if _, err := s.s.GetUser(ctx, followee); err != nil {
		return fmt.Errorf("failed to get followee: %w", err)
	}

	if err := s.s.Follow(ctx, follower, followee); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return service.ErrAlreadyFollowing
		}
		return fmt.Errorf("failed to follow: %w", err)
	}

	return nil
}

func (s srv) Unfollow(ctx context.Context, follower, followee string) error {
	if follower == "" {
		return service.ErrAnonymous
	}

	if _, err := s.s.GetUser(ctx, followee); err != nil {
		return fmt.Errorf("failed to get followee: %w", err)
	}

	if err := s.s.Unfollow(ctx, follower, followee); err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}

	return nil
}

func (s srv) Feed(_ context.Context, identity string) (*paginator.Paginator[*entities.Post], error) {
	if identity == "" {
		return nil, service.ErrAnonymous
	}

	return s.posts(storage.PostsFilter{FollowedBy: &identity}), nil
}

func (s srv) posts(f storage.PostsFilter) *paginator.Paginator[*entities.Post] {
	return paginator.New[*entities.Post](paginator.SourceFuncs[*entities.Post]{
		CountFunc: func(ctx context.Context) (int, error) {
			return s.s.CountPosts(ctx, f)
		},
		SliceFunc: func(ctx context.Context, offset, limit int) ([]*entities.Post, error) {
			return s.s.ListPosts(ctx, &storage.ListPostsParams{
				PostsFilter: f,
				Limit:       limit,
				Offset:      offset,
			})
		},
	}, service.PostsPageSize)
}

func (s srv) validate(ctx context.Context, f service.PostForm) (string, *int64, error) {
	text := s.sanitize(f.Text)
	if text == "" {
		return "", nil, fmt.Errorf("%w: text is required", service.ErrInvalidPost)
	}

	if f.Group == "" {
		return text, nil, nil
	}

	g, err := s.s.GetGroup(ctx, f.Group)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: unknown group %s", service.ErrInvalidPost, f.Group)
		}
		return "", nil, fmt.Errorf("failed to get group: %w", err)
	}

	return text, &g.ID, nil
}

// sanitize strips markup and returns plain text; the policy output is html-escaped.
func (s srv) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
