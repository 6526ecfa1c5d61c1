package server

import (
	"github.com/Decentr-net/yatube/internal/entities"
	"github.com/Decentr-net/yatube/internal/paginator"
	"github.com/Decentr-net/yatube/internal/service"
)

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// Post ...
// swagger:model
type Post struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Group     *Group `json:"group,omitempty"`
	Image     string `json:"image,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Group ...
// swagger:model
type Group struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Comment ...
// swagger:model
type Comment struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// PageInfo describes position of the page in a listing.
type PageInfo struct {
	Number      int  `json:"number"`
	NumPages    int  `json:"numPages"`
	Count       int  `json:"count"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// ListPostsResponse ...
// swagger:model
type ListPostsResponse struct {
	Posts []Post   `json:"posts"`
	Page  PageInfo `json:"page"`
}

// GroupPostsResponse ...
// swagger:model
type GroupPostsResponse struct {
	Group Group `json:"group"`
	ListPostsResponse
}

// ProfileResponse ...
// swagger:model
type ProfileResponse struct {
	Author string `json:"author"`
	// Following is set only for authenticated requests.
	Following *bool `json:"following,omitempty"`
	ListPostsResponse
}

// GetPostResponse ...
// swagger:model
type GetPostResponse struct {
	Post             Post      `json:"post"`
	Comments         []Comment `json:"comments"`
	AuthorPostsCount int       `json:"authorPostsCount"`
}

// PostRequest is a body of create and edit post requests.
// swagger:model
type PostRequest struct {
	Text  string `json:"text"`
	Group string `json:"group"`
	Image string `json:"image"`
}

// CommentRequest ...
// swagger:model
type CommentRequest struct {
	Text string `json:"text"`
}

func toAPIPost(p *entities.Post) Post {
	out := Post{
		ID:        p.ID,
		Author:    p.Author,
		Text:      p.Text,
		Image:     p.Image,
		CreatedAt: p.CreatedAt.Unix(),
	}

	if p.Group != nil {
		g := toAPIGroup(p.Group)
		out.Group = &g
	}

	return out
}

func toAPIGroup(g *entities.Group) Group {
	return Group{
		Slug:        g.Slug,
		Title:       g.Title,
		Description: g.Description,
	}
}

func toAPIComment(c *entities.Comment) Comment {
	return Comment{
		ID:        c.ID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Unix(),
	}
}

func newListPostsResponse(p *paginator.Page[*entities.Post]) ListPostsResponse {
	out := ListPostsResponse{
		Posts: make([]Post, len(p.Items)),
		Page: PageInfo{
			Number:      p.Number,
			NumPages:    p.NumPages,
			Count:       p.Count,
			HasNext:     p.HasNext(),
			HasPrevious: p.HasPrevious(),
		},
	}

	for i, v := range p.Items {
		out.Posts[i] = toAPIPost(v)
	}

	return out
}

func newGetPostResponse(d *service.PostDetail) GetPostResponse {
	out := GetPostResponse{
		Post:             toAPIPost(d.Post),
		Comments:         make([]Comment, len(d.Comments)),
		AuthorPostsCount: d.AuthorPostsCount,
	}

	for i, v := range d.Comments {
		out.Comments[i] = toAPIComment(v)
	}

	return out
}
