package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/yatube/internal/storage"
)

type fixture struct {
	Users  []string `json:"users"`
	Groups []struct {
		Slug        string `json:"slug"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"groups"`
	Posts []struct {
		Author    string    `json:"author"`
		Text      string    `json:"text"`
		Group     string    `json:"group"`
		Image     string    `json:"image"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"posts"`
	Follows []struct {
		Follower string `json:"follower"`
		Followee string `json:"followee"`
	} `json:"follows"`
}

// seed imports fixture in a single transaction. Existing follow edges are skipped.
func seed(ctx context.Context, s storage.Storage, f *fixture) error {
	return s.InTx(ctx, func(s storage.Storage) error {
		logrus.Info("import users")
		for _, v := range f.Users {
			if err := s.EnsureUser(ctx, v); err != nil {
				return fmt.Errorf("failed to put user %s: %w", v, err)
			}
		}

		logrus.Info("import groups")
		groups := make(map[string]int64, len(f.Groups))
		for _, v := range f.Groups {
			g, err := s.CreateGroup(ctx, &storage.CreateGroupParams{
				Slug:        v.Slug,
				Title:       v.Title,
				Description: v.Description,
			})
			if err != nil {
				return fmt.Errorf("failed to put group %s: %w", v.Slug, err)
			}
			groups[g.Slug] = g.ID
		}

		logrus.Info("import posts")
		for i, v := range f.Posts {
			if err := s.EnsureUser(ctx, v.Author); err != nil {
				return fmt.Errorf("failed to put user %s: %w", v.Author, err)
			}

			p := storage.CreatePostParams{
				Author:    v.Author,
				Text:      v.Text,
				Image:     v.Image,
				CreatedAt: v.CreatedAt,
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now().UTC()
			}

			if v.Group != "" {
				id, ok := groups[v.Group]
				if !ok {
					return fmt.Errorf("post %d refers to unknown group %s", i, v.Group)
				}
				p.GroupID = &id
			}

			if _, err := s.CreatePost(ctx, &p); err != nil {
				return fmt.Errorf("failed to put post %d: %w", i, err)
			}

			if (i+1)%20 == 0 {
				logrus.Infof("%d of %d posts imported", i+1, len(f.Posts))
			}
		}

		logrus.Info("import followings")
		for _, v := range f.Follows {
			// a failed insert aborts the transaction, so duplicates are checked beforehand
			ok, err := s.IsFollowing(ctx, v.Follower, v.Followee)
			if err != nil {
				return fmt.Errorf("failed to check following %s->%s: %w", v.Follower, v.Followee, err)
			}
			if ok {
				logrus.Warnf("%s already follows %s", v.Follower, v.Followee)
				continue
			}

			if err := s.Follow(ctx, v.Follower, v.Followee); err != nil {
				return fmt.Errorf("failed to put following %s->%s: %w", v.Follower, v.Followee, err)
			}
		}

		return nil
	})
}
