// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/yatube/internal/entities"
	"github.com/Decentr-net/yatube/internal/storage"
)

var log = logrus.WithField("layer", "storage").WithField("package", "postgres")
var errBeginCalledWithinTx = errors.New("can not run InTx in tx")

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const selectPosts = `
	SELECT p.id, p.author, p.text, p.image, p.created_at,
		p.group_id, g.slug AS group_slug, g.title AS group_title, g.description AS group_description
	FROM post p
	LEFT JOIN "group" g ON g.id = p.group_id
`

type pg struct {
	ext sqlx.ExtContext
}

type userDTO struct {
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

type groupDTO struct {
	ID          int64  `db:"id"`
	Slug        string `db:"slug"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

type postDTO struct {
	ID               int64          `db:"id"`
	Author           string         `db:"author"`
	Text             string         `db:"text"`
	Image            string         `db:"image"`
	CreatedAt        time.Time      `db:"created_at"`
	GroupID          sql.NullInt64  `db:"group_id"`
	GroupSlug        sql.NullString `db:"group_slug"`
	GroupTitle       sql.NullString `db:"group_title"`
	GroupDescription sql.NullString `db:"group_description"`
}

type commentDTO struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	Author    string    `db:"author"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func (s pg) InTx(ctx context.Context, f func(s storage.Storage) error) error {
	db, ok := s.ext.(*sqlx.DB)
	if !ok {
		return errBeginCalledWithinTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to create tx: %w", err)
	}

	if err := f(pg{ext: tx}); err != nil {
		if err := tx.Rollback(); err != nil {
			log.WithError(err).Error("failed to rollback tx")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

func (s pg) Ping(ctx context.Context) error {
	if _, err := s.ext.ExecContext(ctx, `SELECT 1`); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) EnsureUser(ctx context.Context, username string) error {
	if _, err := s.ext.ExecContext(ctx,
		`INSERT INTO "user"(username, created_at) VALUES($1, $2) ON CONFLICT DO NOTHING`,
		username, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) GetUser(ctx context.Context, username string) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u,
		`SELECT username, created_at FROM "user" WHERE username = $1`, username,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.User{
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}, nil
}

func (s pg) CreateGroup(ctx context.Context, p *storage.CreateGroupParams) (*entities.Group, error) {
	var id int64

	if err := sqlx.GetContext(ctx, s.ext, &id,
		`INSERT INTO "group"(slug, title, description) VALUES($1, $2, $3) RETURNING id`,
		p.Slug, p.Title, p.Description,
	); err != nil {
		if isPQError(err, uniqueViolation) {
			return nil, storage.ErrAlreadyExists
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return &entities.Group{
		ID:          id,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
	}, nil
}

func (s pg) GetGroup(ctx context.Context, slug string) (*entities.Group, error) {
	var g groupDTO

	if err := sqlx.GetContext(ctx, s.ext, &g,
		`SELECT id, slug, title, description FROM "group" WHERE slug = $1`, slug,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.Group{
		ID:          g.ID,
		Slug:        g.Slug,
		Title:       g.Title,
		Description: g.Description,
	}, nil
}

func (s pg) CreatePost(ctx context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
	var id int64

	if err := sqlx.GetContext(ctx, s.ext, &id,
		`
			INSERT INTO post(author, text, group_id, image, created_at)
			VALUES($1, $2, $3, $4, $5)
			RETURNING id
		`,
		p.Author, p.Text, toNullInt64(p.GroupID), p.Image, p.CreatedAt.UTC(),
	); err != nil {
		if isPQError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return s.GetPost(ctx, id)
}

func (s pg) UpdatePost(ctx context.Context, p *storage.UpdatePostParams) error {
	res, err := s.ext.ExecContext(ctx,
		`UPDATE post SET text=$2, group_id=$3, image=$4 WHERE id=$1`,
		p.ID, p.Text, toNullInt64(p.GroupID), p.Image,
	)
	if err != nil {
		if isPQError(err, foreignKeyViolation) {
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) GetPost(ctx context.Context, id int64) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, selectPosts+`WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
	where, args := postsWhere(p.PostsFilter)

	query := selectPosts + where + ` ORDER BY p.created_at DESC, p.id DESC`
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var pp []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &pp, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(pp))
	for i, v := range pp {
		out[i] = toPost(v)
	}

	return out, nil
}

func (s pg) CountPosts(ctx context.Context, f storage.PostsFilter) (int, error) {
	where, args := postsWhere(f)

	var c int
	if err := sqlx.GetContext(ctx, s.ext, &c,
		`SELECT COUNT(*) FROM post p LEFT JOIN "group" g ON g.id = p.group_id `+where, args...,
	); err != nil {
		return 0, fmt.Errorf("failed to query: %w", err)
	}

	return c, nil
}

func (s pg) CreateComment(ctx context.Context, p *storage.CreateCommentParams) (*entities.Comment, error) {
	var id int64

	if err := sqlx.GetContext(ctx, s.ext, &id,
		`INSERT INTO comment(post_id, author, text, created_at) VALUES($1, $2, $3, $4) RETURNING id`,
		p.PostID, p.Author, p.Text, p.CreatedAt.UTC(),
	); err != nil {
		if isPQError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return &entities.Comment{
		ID:        id,
		PostID:    p.PostID,
		Author:    p.Author,
		Text:      p.Text,
		CreatedAt: p.CreatedAt.UTC(),
	}, nil
}

func (s pg) ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error) {
	var cc []*commentDTO

	if err := sqlx.SelectContext(ctx, s.ext, &cc,
		`SELECT id, post_id, author, text, created_at FROM comment WHERE post_id = $1 ORDER BY created_at, id`,
		postID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Comment, len(cc))
	for i, v := range cc {
		out[i] = &entities.Comment{
			ID:        v.ID,
			PostID:    v.PostID,
			Author:    v.Author,
			Text:      v.Text,
			CreatedAt: v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) Follow(ctx context.Context, follower, followee string) error {
	if _, err := s.ext.ExecContext(ctx,
		`INSERT INTO follow(follower, followee) VALUES($1, $2)`, follower, followee,
	); err != nil {
		switch {
		case isPQError(err, uniqueViolation):
			return storage.ErrAlreadyExists
		case isPQError(err, foreignKeyViolation):
			return storage.ErrNotFound
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) Unfollow(ctx context.Context, follower, followee string) error {
	if _, err := s.ext.ExecContext(ctx,
		`DELETE FROM follow WHERE follower=$1 AND followee=$2`, follower, followee,
	); err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	return nil
}

func (s pg) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	var ok bool

	if err := sqlx.GetContext(ctx, s.ext, &ok,
		`SELECT EXISTS(SELECT 1 FROM follow WHERE follower=$1 AND followee=$2)`, follower, followee,
	); err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}

	return ok, nil
}

func postsWhere(f storage.PostsFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if f.Author != nil {
		args = append(args, *f.Author)
		conds = append(conds, fmt.Sprintf("p.author = $%d", len(args)))
	}

	if f.GroupSlug != nil {
		args = append(args, *f.GroupSlug)
		conds = append(conds, fmt.Sprintf("g.slug = $%d", len(args)))
	}

	if f.FollowedBy != nil {
		args = append(args, *f.FollowedBy)
		conds = append(conds, fmt.Sprintf("p.author IN (SELECT followee FROM follow WHERE follower = $%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func toPost(p *postDTO) *entities.Post {
	out := &entities.Post{
		ID:        p.ID,
		Author:    p.Author,
		Text:      p.Text,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
	}

	if p.GroupID.Valid {
		out.Group = &entities.Group{
			ID:          p.GroupID.Int64,
			Slug:        p.GroupSlug.String,
			Title:       p.GroupTitle.String,
			Description: p.GroupDescription.String,
		}
	}

	return out
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *v, Valid: true}
}

func isPQError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
