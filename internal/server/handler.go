package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/Decentr-net/yatube/internal/api"
	"github.com/Decentr-net/yatube/internal/auth"
	"github.com/Decentr-net/yatube/internal/paginator"
	"github.com/Decentr-net/yatube/internal/service"
	"github.com/Decentr-net/yatube/internal/storage"
)

var errInvalidRequest = errors.New("invalid request")

func (s server) index(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts Posts Index
	//
	// Return a page of all posts, newest first. Response is cached for a short time.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: page
	//   description: page number, invalid values fall back to the first or the last page
	//   in: query
	//   required: false
	//   example: 2
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/ListPostsResponse"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	page, err := s.s.Index(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, r, err, "list posts")
		return
	}

	api.WriteOK(w, http.StatusOK, newListPostsResponse(page))
}

func (s server) clearCache(w http.ResponseWriter, r *http.Request) {
	// swagger:operation DELETE /posts/cache Posts ClearCache
	//
	// Drop cached posts pages.
	//
	// ---
	// security:
	// - bearer: []
	// responses:
	//   '204':
	//     description: Cache is cleared
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	if _, ok := auth.FromContext(r.Context()); !ok {
		writeServiceError(w, r, service.ErrAnonymous, "clear cache")
		return
	}

	if err := s.cache.Clear(r.Context()); err != nil {
		api.WriteInternalErrorf(r.Context(), w, "failed to clear cache: %s", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s server) groupPosts(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /groups/{slug}/posts Posts GroupPosts
	//
	// Return group and a page of its posts.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: slug
	//   in: path
	//   required: true
	//   type: string
	// - name: page
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Group posts
	//     schema:
	//       "$ref": "#/definitions/GroupPostsResponse"
	//   '404':
	//     description: group not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	gp, err := s.s.GroupPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, r, err, "get group posts")
		return
	}

	api.WriteOK(w, http.StatusOK, GroupPostsResponse{
		Group:             toAPIGroup(gp.Group),
		ListPostsResponse: newListPostsResponse(gp.Posts),
	})
}

func (s server) profile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /profiles/{username} Profiles GetProfile
	//
	// Return author's posts. Following flag is returned for authenticated requests only.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: username
	//   in: path
	//   required: true
	//   type: string
	// - name: page
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Profile
	//     schema:
	//       "$ref": "#/definitions/ProfileResponse"
	//   '404':
	//     description: user not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	viewer, _ := auth.FromContext(r.Context())

	p, err := s.s.Profile(r.Context(), viewer, chi.URLParam(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, r, err, "get profile")
		return
	}

	api.WriteOK(w, http.StatusOK, ProfileResponse{
		Author:            p.Author.Username,
		Following:         p.Following,
		ListPostsResponse: newListPostsResponse(p.Posts),
	})
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{id} Posts GetPost
	//
	// Get post with its comments.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: integer
	// responses:
	//   '200':
	//     description: Post
	//     schema:
	//       "$ref": "#/definitions/GetPostResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	id, err := postIDFromRequest(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.s.GetPost(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get post")
		return
	}

	api.WriteOK(w, http.StatusOK, newGetPostResponse(d))
}

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts Posts CreatePost
	//
	// Create post and redirect to author's profile.
	//
	// ---
	// consumes:
	// - application/json
	// security:
	// - bearer: []
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/PostRequest"
	// responses:
	//   '302':
	//     description: Redirect to author's profile
	//   '400':
	//     description: invalid post
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "create post")
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.s.CreatePost(r.Context(), identity, service.PostForm(req)); err != nil {
		writeServiceError(w, r, err, "create post")
		return
	}

	api.Redirect(w, r, "/v1/profiles/%s", url.PathEscape(identity))
}

func (s server) editPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/edit Posts EditPost
	//
	// Edit post. Only author can edit the post.
	//
	// ---
	// consumes:
	// - application/json
	// security:
	// - bearer: []
	// responses:
	//   '302':
	//     description: Redirect to the post
	//   '403':
	//     description: permission denied
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "edit post")
		return
	}

	id, err := postIDFromRequest(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.s.EditPost(r.Context(), identity, id, service.PostForm(req)); err != nil {
		writeServiceError(w, r, err, "edit post")
		return
	}

	api.Redirect(w, r, "/v1/posts/%d", id)
}

func (s server) addComment(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/comments Posts AddComment
	//
	// Comment post and redirect to it.
	//
	// ---
	// consumes:
	// - application/json
	// security:
	// - bearer: []
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: integer
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/CommentRequest"
	// responses:
	//   '302':
	//     description: Redirect to the post
	//   '400':
	//     description: empty comment
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "add comment")
		return
	}

	id, err := postIDFromRequest(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := s.s.AddComment(r.Context(), identity, id, req.Text); err != nil {
		writeServiceError(w, r, err, "add comment")
		return
	}

	api.Redirect(w, r, "/v1/posts/%d", id)
}

func (s server) feed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /follow Follows Feed
	//
	// Return a page of posts written by authors the requester follows.
	//
	// ---
	// produces:
	// - application/json
	// security:
	// - bearer: []
	// parameters:
	// - name: page
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Feed
	//     schema:
	//       "$ref": "#/definitions/ListPostsResponse"
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "get feed")
		return
	}

	p, err := s.s.Feed(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err, "get feed")
		return
	}

	page, err := p.GetPage(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		writeServiceError(w, r, err, "get feed page")
		return
	}

	api.WriteOK(w, http.StatusOK, newListPostsResponse(page))
}

func (s server) follow(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /profiles/{username}/follow Follows Follow
	//
	// Follow author and redirect to their profile.
	//
	// ---
	// security:
	// - bearer: []
	// parameters:
	// - name: username
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '302':
	//     description: Redirect to author's profile
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '403':
	//     description: self follow or already following
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: author not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "follow")
		return
	}

	username := chi.URLParam(r, "username")

	if err := s.s.Follow(r.Context(), identity, username); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			s.m.FollowRejected("self")
		case errors.Is(err, service.ErrAlreadyFollowing):
			s.m.FollowRejected("duplicate")
		}

		writeServiceError(w, r, err, "follow")
		return
	}

	s.m.Followed()

	api.Redirect(w, r, "/v1/profiles/%s", url.PathEscape(username))
}

func (s server) unfollow(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /profiles/{username}/unfollow Follows Unfollow
	//
	// Unfollow author and redirect to their profile. Unfollowing an author who is not followed does nothing.
	//
	// ---
	// security:
	// - bearer: []
	// parameters:
	// - name: username
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '302':
	//     description: Redirect to author's profile
	//   '401':
	//     description: authentication required
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: author not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	identity, ok := auth.FromContext(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrAnonymous, "unfollow")
		return
	}

	username := chi.URLParam(r, "username")

	if err := s.s.Unfollow(r.Context(), identity, username); err != nil {
		writeServiceError(w, r, err, "unfollow")
		return
	}

	s.m.Unfollowed()

	api.Redirect(w, r, "/v1/profiles/%s", url.PathEscape(username))
}

func postIDFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid post id", errInvalidRequest)
	}

	return id, nil
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, service.ErrAnonymous):
		api.WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrPermissionDenied):
		api.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrInvalidPost):
		api.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, paginator.ErrInvalidPage), errors.Is(err, paginator.ErrEmptyPage):
		api.WriteError(w, http.StatusNotFound, "page not found")
	default:
		api.WriteInternalErrorf(r.Context(), w, "failed to %s: %s", action, err.Error())
	}
}
