package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Decentr-net/yatube/internal/entities"
	"github.com/Decentr-net/yatube/internal/service"
	"github.com/Decentr-net/yatube/internal/storage"
	"github.com/Decentr-net/yatube/internal/storage/mock"
)

var errTest = errors.New("test")

func TestSrv_EnsureUser(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	require.True(t, errors.Is(srv.EnsureUser(context.Background(), ""), service.ErrAnonymous))

	s.EXPECT().EnsureUser(gomock.Any(), "leo").Return(nil)
	require.NoError(t, srv.EnsureUser(context.Background(), "leo"))

	s.EXPECT().EnsureUser(gomock.Any(), "leo").Return(context.Canceled)
	require.True(t, errors.Is(srv.EnsureUser(context.Background(), "leo"), context.Canceled))
}

func TestSrv_Follow(t *testing.T) {
	tt := []struct {
		name     string
		follower string
		followee string
		prepare  func(s *mock.MockStorage)

		err error
	}{
		{
			name:     "success",
			follower: "leo",
			followee: "kate",
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetUser(gomock.Any(), "kate").Return(&entities.User{Username: "kate"}, nil)
				s.EXPECT().Follow(gomock.Any(), "leo", "kate").Return(nil)
			},
		},
		{
			name:     "anonymous",
			follower: "",
			followee: "kate",
			err:      service.ErrAnonymous,
		},
		{
			name:     "self",
			follower: "leo",
			followee: "leo",
			err:      service.ErrSelfFollow,
		},
		{
			name:     "unknown followee",
			follower: "leo",
			followee: "kate",
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetUser(gomock.Any(), "kate").Return(nil, storage.ErrNotFound)
			},
			err: storage.ErrNotFound,
		},
		{
			name:     "duplicate",
			follower: "leo",
			followee: "kate",
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetUser(gomock.Any(), "kate").Return(&entities.User{Username: "kate"}, nil)
				s.EXPECT().Follow(gomock.Any(), "leo", "kate").Return(storage.ErrAlreadyExists)
			},
			err: service.ErrAlreadyFollowing,
		},
		{
			name:     "storage error",
			follower: "leo",
			followee: "kate",
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetUser(gomock.Any(), "kate").Return(&entities.User{Username: "kate"}, nil)
				s.EXPECT().Follow(gomock.Any(), "leo", "kate").Return(errTest)
			},
			err: errTest,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := mock.NewMockStorage(ctrl)
			if tc.prepare != nil {
				tc.prepare(s)
			}

			err := New(s).Follow(context.Background(), tc.follower, tc.followee)
			if tc.err == nil {
				require.NoError(t, err)
				return
			}

			require.True(t, errors.Is(err, tc.err), err)
		})
	}
}

func TestSrv_Unfollow(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	require.True(t, errors.Is(srv.Unfollow(context.Background(), "", "kate"), service.ErrAnonymous))

	s.EXPECT().GetUser(gomock.Any(), "kate").Return(&entities.User{Username: "kate"}, nil)
	s.EXPECT().Unfollow(gomock.Any(), "leo", "kate").Return(nil)
	require.NoError(t, srv.Unfollow(context.Background(), "leo", "kate"))

	s.EXPECT().GetUser(gomock.Any(), "bob").Return(nil, storage.ErrNotFound)
	require.True(t, errors.Is(srv.Unfollow(context.Background(), "leo", "bob"), storage.ErrNotFound))
}

func TestSrv_Feed(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	_, err := srv.Feed(context.Background(), "")
	require.True(t, errors.Is(err, service.ErrAnonymous))

	// nothing is queried until a page is requested
	feed, err := srv.Feed(context.Background(), "leo")
	require.NoError(t, err)

	posts := make([]*entities.Post, 12)
	for i := range posts {
		posts[i] = &entities.Post{ID: int64(12 - i), Author: "kate"}
	}

	s.EXPECT().CountPosts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f storage.PostsFilter) (int, error) {
		require.NotNil(t, f.FollowedBy)
		assert.Equal(t, "leo", *f.FollowedBy)
		assert.Nil(t, f.Author)
		assert.Nil(t, f.GroupSlug)
		return len(posts), nil
	}).Times(2)

	s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
		assert.Equal(t, "leo", *p.FollowedBy)
		assert.Equal(t, service.PostsPageSize, p.Limit)
		return posts[p.Offset:min(p.Offset+p.Limit, len(posts))], nil
	}).Times(2)

	var got []*entities.Post
	for page, err := range feed.All(context.Background()) {
		require.NoError(t, err)
		got = append(got, page.Items...)
	}

	require.Equal(t, posts, got)
}

func TestSrv_Index(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	s.EXPECT().CountPosts(gomock.Any(), storage.PostsFilter{}).Return(13, nil)
	s.EXPECT().ListPosts(gomock.Any(), &storage.ListPostsParams{Limit: 10, Offset: 10}).Return([]*entities.Post{
		{ID: 3}, {ID: 2}, {ID: 1},
	}, nil)

	p, err := New(s).Index(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)
	assert.Len(t, p.Items, 3)

	s.EXPECT().CountPosts(gomock.Any(), storage.PostsFilter{}).Return(0, errTest)
	_, err = New(s).Index(context.Background(), "1")
	require.True(t, errors.Is(err, errTest))
}

func TestSrv_GroupPosts(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	s.EXPECT().GetGroup(gomock.Any(), "dogs").Return(nil, storage.ErrNotFound)
	_, err := srv.GroupPosts(context.Background(), "dogs", "")
	require.True(t, errors.Is(err, storage.ErrNotFound))

	g := &entities.Group{ID: 1, Slug: "cats", Title: "Cats"}
	slug := "cats"

	s.EXPECT().GetGroup(gomock.Any(), "cats").Return(g, nil)
	s.EXPECT().CountPosts(gomock.Any(), storage.PostsFilter{GroupSlug: &slug}).Return(1, nil)
	s.EXPECT().ListPosts(gomock.Any(), &storage.ListPostsParams{
		PostsFilter: storage.PostsFilter{GroupSlug: &slug},
		Limit:       10,
	}).Return([]*entities.Post{{ID: 1, Group: g}}, nil)

	p, err := srv.GroupPosts(context.Background(), "cats", "")
	require.NoError(t, err)
	assert.Equal(t, g, p.Group)
	assert.Len(t, p.Posts.Items, 1)
}

func TestSrv_Profile(t *testing.T) {
	tt := []struct {
		name      string
		viewer    string
		following *bool
	}{
		{name: "anonymous"},
		{name: "follower", viewer: "leo", following: boolPtr(true)},
		{name: "stranger", viewer: "bob", following: boolPtr(false)},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := mock.NewMockStorage(ctrl)

			author := "kate"
			s.EXPECT().GetUser(gomock.Any(), "kate").Return(&entities.User{Username: "kate"}, nil)
			s.EXPECT().CountPosts(gomock.Any(), storage.PostsFilter{Author: &author}).Return(0, nil)

			if tc.viewer != "" {
				s.EXPECT().IsFollowing(gomock.Any(), tc.viewer, "kate").Return(*tc.following, nil)
			}

			p, err := New(s).Profile(context.Background(), tc.viewer, "kate", "")
			require.NoError(t, err)
			assert.Equal(t, "kate", p.Author.Username)
			assert.Empty(t, p.Posts.Items)
			assert.Equal(t, tc.following, p.Following)
		})
	}
}

func TestSrv_GetPost(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	s.EXPECT().GetPost(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)
	_, err := srv.GetPost(context.Background(), 404)
	require.True(t, errors.Is(err, storage.ErrNotFound))

	post := &entities.Post{ID: 1, Author: "kate", Text: "text"}
	comments := []*entities.Comment{{ID: 1, PostID: 1, Author: "leo", Text: "nice"}}
	author := "kate"

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(post, nil)
	s.EXPECT().ListComments(gomock.Any(), int64(1)).Return(comments, nil)
	s.EXPECT().CountPosts(gomock.Any(), storage.PostsFilter{Author: &author}).Return(5, nil)

	d, err := srv.GetPost(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &service.PostDetail{
		Post:             post,
		Comments:         comments,
		AuthorPostsCount: 5,
	}, d)
}

func TestSrv_CreatePost(t *testing.T) {
	tt := []struct {
		name    string
		author  string
		form    service.PostForm
		prepare func(s *mock.MockStorage)

		err error
	}{
		{
			name:   "success",
			author: "leo",
			form:   service.PostForm{Text: "Hello <script>alert(1)</script><b>world</b>", Group: "cats", Image: "posts/a.gif"},
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetGroup(gomock.Any(), "cats").Return(&entities.Group{ID: 7, Slug: "cats"}, nil)
				s.EXPECT().CreatePost(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
					assert.Equal(t, "leo", p.Author)
					assert.Equal(t, "Hello world", p.Text)
					assert.EqualValues(t, 7, *p.GroupID)
					assert.Equal(t, "posts/a.gif", p.Image)
					assert.WithinDuration(t, time.Now(), p.CreatedAt, time.Minute)
					return &entities.Post{ID: 1, Author: p.Author, Text: p.Text}, nil
				})
			},
		},
		{
			name:   "special characters",
			author: "leo",
			form:   service.PostForm{Text: `Tom & Jerry say "1 < 2" <script>alert(1)</script>`},
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().CreatePost(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
					assert.Equal(t, `Tom & Jerry say "1 < 2"`, p.Text)
					return &entities.Post{ID: 1, Author: p.Author, Text: p.Text}, nil
				})
			},
		},
		{
			name:   "without group",
			author: "leo",
			form:   service.PostForm{Text: "text"},
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().CreatePost(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
					assert.Nil(t, p.GroupID)
					return &entities.Post{ID: 1}, nil
				})
			},
		},
		{
			name:   "anonymous",
			author: "",
			form:   service.PostForm{Text: "text"},
			err:    service.ErrAnonymous,
		},
		{
			name:   "empty text",
			author: "leo",
			form:   service.PostForm{Text: "  <p></p> "},
			err:    service.ErrInvalidPost,
		},
		{
			name:   "unknown group",
			author: "leo",
			form:   service.PostForm{Text: "text", Group: "dogs"},
			prepare: func(s *mock.MockStorage) {
				s.EXPECT().GetGroup(gomock.Any(), "dogs").Return(nil, storage.ErrNotFound)
			},
			err: service.ErrInvalidPost,
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			s := mock.NewMockStorage(ctrl)
			if tc.prepare != nil {
				tc.prepare(s)
			}

			p, err := New(s).CreatePost(context.Background(), tc.author, tc.form)
			if tc.err != nil {
				require.True(t, errors.Is(err, tc.err), err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}

func TestSrv_EditPost(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	_, err := srv.EditPost(context.Background(), "", 1, service.PostForm{Text: "x"})
	require.True(t, errors.Is(err, service.ErrAnonymous))

	s.EXPECT().GetPost(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)
	_, err = srv.EditPost(context.Background(), "leo", 404, service.PostForm{Text: "x"})
	require.True(t, errors.Is(err, storage.ErrNotFound))

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Author: "kate"}, nil)
	_, err = srv.EditPost(context.Background(), "leo", 1, service.PostForm{Text: "x"})
	require.True(t, errors.Is(err, service.ErrPermissionDenied))

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Author: "kate", Text: "old"}, nil)
	s.EXPECT().UpdatePost(gomock.Any(), &storage.UpdatePostParams{ID: 1, Text: "new"}).Return(nil)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Author: "kate", Text: "new"}, nil)

	p, err := srv.EditPost(context.Background(), "kate", 1, service.PostForm{Text: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", p.Text)

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Author: "kate", Text: "new"}, nil)
	s.EXPECT().UpdatePost(gomock.Any(), &storage.UpdatePostParams{ID: 1, Text: `a & b < "c"`}).Return(nil)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Author: "kate", Text: `a & b < "c"`}, nil)

	p, err = srv.EditPost(context.Background(), "kate", 1, service.PostForm{Text: `<b>a</b> & b < "c"<script>x</script>`})
	require.NoError(t, err)
	assert.Equal(t, `a & b < "c"`, p.Text)
}

func TestSrv_AddComment(t *testing.T) {
	ctrl := gomock.NewController(t)

	s := mock.NewMockStorage(ctrl)

	srv := New(s)

	_, err := srv.AddComment(context.Background(), "", 1, "x")
	require.True(t, errors.Is(err, service.ErrAnonymous))

	s.EXPECT().GetPost(gomock.Any(), int64(404)).Return(nil, storage.ErrNotFound)
	_, err = srv.AddComment(context.Background(), "leo", 404, "x")
	require.True(t, errors.Is(err, storage.ErrNotFound))

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1}, nil)
	_, err = srv.AddComment(context.Background(), "leo", 1, "   ")
	require.True(t, errors.Is(err, service.ErrInvalidPost))

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1}, nil)
	s.EXPECT().CreateComment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.CreateCommentParams) (*entities.Comment, error) {
		assert.EqualValues(t, 1, p.PostID)
		assert.Equal(t, "leo", p.Author)
		assert.Equal(t, "nice", p.Text)
		return &entities.Comment{ID: 1, PostID: 1, Author: "leo", Text: "nice"}, nil
	})

	c, err := srv.AddComment(context.Background(), "leo", 1, "nice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.ID)

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1}, nil)
	s.EXPECT().CreateComment(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *storage.CreateCommentParams) (*entities.Comment, error) {
		assert.Equal(t, "rock & roll <3", p.Text)
		return &entities.Comment{ID: 2, PostID: 1, Author: "leo", Text: p.Text}, nil
	})

	_, err = srv.AddComment(context.Background(), "leo", 1, "<i>rock & roll</i> <3")
	require.NoError(t, err)
}

func boolPtr(v bool) *bool {
	return &v
}
