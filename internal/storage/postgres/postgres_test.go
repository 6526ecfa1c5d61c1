//+build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	m "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Decentr-net/yatube/internal/storage"
)

var (
	db  *sql.DB
	ctx = context.Background()
	s   storage.Storage
)

func TestMain(m *testing.M) {
	shutdown := setup()

	s = New(db)

	code := m.Run()
	shutdown()
	os.Exit(code)
}

func setup() func() {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:12",
		Env:          map[string]string{"POSTGRES_PASSWORD": "root"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
	})
	if err != nil {
		logrus.WithError(err).Fatalf("failed to create container")
	}

	if err := c.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("failed to start container")
	}

	host, err := c.Host(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("failed to get host")
	}

	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		logrus.WithError(err).Fatal("failed to map port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=postgres password=root sslmode=disable", host, port.Int())

	db, err = sql.Open("postgres", dsn)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open connection")
	}

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	shutdownFn := func() {
		if c != nil {
			c.Terminate(ctx)
		}
	}

	migrate("postgres", "root", host, "postgres", port.Int())

	return shutdownFn
}

func migrate(username, password, hostname, dbname string, port int) {
	_, currFile, _, ok := runtime.Caller(0)
	if !ok {
		logrus.Fatal("failed to get current file location")
	}

	migrations := filepath.Join(currFile, "../../../../scripts/migrations/postgres/")

	migrator, err := m.New(
		fmt.Sprintf("file://%s", migrations),
		fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			username, password, hostname, port, dbname),
	)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		logrus.WithError(err).Fatal("failed to migrate")
	}
}

func cleanup(t *testing.T) {
	for _, table := range []string{`follow`, `comment`, `post`, `"group"`, `"user"`} {
		_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table))
		require.NoError(t, err)
	}
}

func createUsers(t *testing.T, names ...string) {
	for _, v := range names {
		require.NoError(t, s.EnsureUser(ctx, v))
	}
}

func createPost(t *testing.T, author string, createdAt time.Time) int64 {
	p, err := s.CreatePost(ctx, &storage.CreatePostParams{
		Author:    author,
		Text:      fmt.Sprintf("post by %s", author),
		CreatedAt: createdAt,
	})
	require.NoError(t, err)

	return p.ID
}

func TestPg_Ping(t *testing.T) {
	require.NoError(t, s.Ping(ctx))
}

func TestPg_EnsureUser(t *testing.T) {
	defer cleanup(t)

	require.NoError(t, s.EnsureUser(ctx, "leo"))
	require.NoError(t, s.EnsureUser(ctx, "leo"))

	u, err := s.GetUser(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, "leo", u.Username)

	_, err = s.GetUser(ctx, "unknown")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPg_Group(t *testing.T) {
	defer cleanup(t)

	g, err := s.CreateGroup(ctx, &storage.CreateGroupParams{
		Slug:        "cats",
		Title:       "Cats",
		Description: "all about cats",
	})
	require.NoError(t, err)
	require.NotZero(t, g.ID)

	_, err = s.CreateGroup(ctx, &storage.CreateGroupParams{Slug: "cats", Title: "Cats 2"})
	require.True(t, errors.Is(err, storage.ErrAlreadyExists))

	got, err := s.GetGroup(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, g, got)

	_, err = s.GetGroup(ctx, "dogs")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPg_Posts(t *testing.T) {
	defer cleanup(t)

	createUsers(t, "leo", "kate")

	g, err := s.CreateGroup(ctx, &storage.CreateGroupParams{Slug: "cats", Title: "Cats"})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)

	p, err := s.CreatePost(ctx, &storage.CreatePostParams{
		Author:    "leo",
		Text:      "first",
		GroupID:   &g.ID,
		Image:     "posts/cat.gif",
		CreatedAt: now.Add(-time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, p.Group)
	assert.Equal(t, "cats", p.Group.Slug)
	assert.Equal(t, "posts/cat.gif", p.Image)

	second := createPost(t, "kate", now)

	_, err = s.CreatePost(ctx, &storage.CreatePostParams{Author: "unknown", Text: "x", CreatedAt: now})
	require.True(t, errors.Is(err, storage.ErrNotFound))

	all, err := s.ListPosts(ctx, &storage.ListPostsParams{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].ID)
	assert.Equal(t, p.ID, all[1].ID)

	slug := "cats"
	grouped, err := s.ListPosts(ctx, &storage.ListPostsParams{PostsFilter: storage.PostsFilter{GroupSlug: &slug}})
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	assert.Equal(t, p.ID, grouped[0].ID)

	author := "kate"
	c, err := s.CountPosts(ctx, storage.PostsFilter{Author: &author})
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	page, err := s.ListPosts(ctx, &storage.ListPostsParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, p.ID, page[0].ID)

	require.NoError(t, s.UpdatePost(ctx, &storage.UpdatePostParams{ID: p.ID, Text: "edited"}))
	edited, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)
	assert.Nil(t, edited.Group)
	assert.Equal(t, "leo", edited.Author)

	require.True(t, errors.Is(s.UpdatePost(ctx, &storage.UpdatePostParams{ID: -1, Text: "x"}), storage.ErrNotFound))

	_, err = s.GetPost(ctx, -1)
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPg_Comments(t *testing.T) {
	defer cleanup(t)

	createUsers(t, "leo", "kate")
	id := createPost(t, "leo", time.Now())

	now := time.Now()
	_, err := s.CreateComment(ctx, &storage.CreateCommentParams{PostID: id, Author: "kate", Text: "1", CreatedAt: now})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, &storage.CreateCommentParams{PostID: id, Author: "leo", Text: "2", CreatedAt: now.Add(time.Second)})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, &storage.CreateCommentParams{PostID: -1, Author: "leo", Text: "3", CreatedAt: now})
	require.True(t, errors.Is(err, storage.ErrNotFound))

	cc, err := s.ListComments(ctx, id)
	require.NoError(t, err)
	require.Len(t, cc, 2)
	assert.Equal(t, "1", cc[0].Text)
	assert.Equal(t, "2", cc[1].Text)
}

func TestPg_Follow(t *testing.T) {
	defer cleanup(t)

	createUsers(t, "leo", "kate", "bob")

	require.NoError(t, s.Follow(ctx, "leo", "kate"))
	require.True(t, errors.Is(s.Follow(ctx, "leo", "kate"), storage.ErrAlreadyExists))
	require.True(t, errors.Is(s.Follow(ctx, "leo", "unknown"), storage.ErrNotFound))
	require.Error(t, s.Follow(ctx, "leo", "leo"))

	ok, err := s.IsFollowing(ctx, "leo", "kate")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsFollowing(ctx, "kate", "leo")
	require.NoError(t, err)
	assert.False(t, ok)

	before := createPost(t, "kate", time.Now().Add(-time.Hour))
	createPost(t, "bob", time.Now())
	after := createPost(t, "kate", time.Now().Add(time.Hour))

	follower := "leo"
	feed, err := s.ListPosts(ctx, &storage.ListPostsParams{PostsFilter: storage.PostsFilter{FollowedBy: &follower}})
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, after, feed[0].ID)
	assert.Equal(t, before, feed[1].ID)

	require.NoError(t, s.Unfollow(ctx, "leo", "kate"))
	require.NoError(t, s.Unfollow(ctx, "leo", "kate"))

	c, err := s.CountPosts(ctx, storage.PostsFilter{FollowedBy: &follower})
	require.NoError(t, err)
	assert.Zero(t, c)
}

func TestPg_InTx(t *testing.T) {
	defer cleanup(t)

	errTest := errors.New("test")

	require.True(t, errors.Is(s.InTx(ctx, func(tx storage.Storage) error {
		require.NoError(t, tx.EnsureUser(ctx, "leo"))
		return errTest
	}), errTest))

	_, err := s.GetUser(ctx, "leo")
	require.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.InTx(ctx, func(tx storage.Storage) error {
		require.True(t, errors.Is(tx.InTx(ctx, nil), errBeginCalledWithinTx))
		return tx.EnsureUser(ctx, "leo")
	}))

	_, err = s.GetUser(ctx, "leo")
	require.NoError(t, err)
}
