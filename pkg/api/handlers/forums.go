package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterForums registers forum and post routes. Posts get their own
// top-level prefix since edits and likes are addressed by post id alone.
func RegisterForums(r *mux.Router, svc *services.ForumService) {
	r.HandleFunc("/forums", listForums(svc)).Methods(http.MethodGet)
	r.HandleFunc("/forums", addForum(svc)).Methods(http.MethodPost)
	r.HandleFunc("/forums/{id}", getForum(svc)).Methods(http.MethodGet)
	r.HandleFunc("/forums/{id}", deleteForum(svc)).Methods(http.MethodDelete)
	r.HandleFunc("/forums/{id}/posts", listPosts(svc)).Methods(http.MethodGet)
	r.HandleFunc("/forums/{id}/posts", addPost(svc)).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}", updatePost(svc)).Methods(http.MethodPut)
	r.HandleFunc("/posts/{id}", deletePost(svc)).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{id}/like", likePost(svc)).Methods(http.MethodPost)
}

// listForums handles GET /forums?search=&page=.
func listForums(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		forums, total, err := svc.Forums(r.URL.Query().Get("search"), page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"forums": forums, "total": total})
	}
}

// addForum handles POST /forums and returns the assigned id.
func addForum(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Principal string `json:"principal"`
			Username  string `json:"username"`
			ForumName string `json:"forum_name"`
			Comment   string `json:"comment"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		id, err := svc.AddForum(principal, body.Username, body.ForumName, body.Comment)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"id": id})
	}
}

// getForum handles GET /forums/{id}.
func getForum(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		f, err := svc.Forum(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, f)
	}
}

// deleteForum handles DELETE /forums/{id}?principal=. Deletion cascades to
// every post in the forum.
func deleteForum(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, r.URL.Query().Get("principal"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.DeleteForum(id, principal); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

// listPosts handles GET /forums/{id}/posts?page=&photos=. With
// photos=false the photo blobs are stripped and no size ceiling applies;
// the full variant answers 413 when the encoded page exceeds the ceiling.
func listPosts(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		fetch := svc.Posts
		if r.URL.Query().Get("photos") == "false" {
			fetch = svc.PostsWithoutPhotos
		}
		posts, total, err := fetch(id, page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"posts": posts, "total": total})
	}
}

// addPost handles POST /forums/{id}/posts and returns the assigned id.
func addPost(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		var body struct {
			Principal string   `json:"principal"`
			Username  string   `json:"username"`
			Comment   string   `json:"comment"`
			Photos    [][]byte `json:"photos"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		postID, err := svc.AddPost(id, principal, body.Username, body.Comment, body.Photos)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"id": postID})
	}
}

// updatePost handles PUT /posts/{id}: a partial edit, comment and photos
// each optional.
func updatePost(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		var body struct {
			Principal string    `json:"principal"`
			Comment   *string   `json:"comment"`
			Photos    *[][]byte `json:"photos"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.UpdatePost(id, principal, body.Comment, body.Photos); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"updated": true})
	}
}

// deletePost handles DELETE /posts/{id}?principal=.
func deletePost(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, r.URL.Query().Get("principal"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.DeletePost(id, principal); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

// likePost handles POST /posts/{id}/like. No identity needed: likes are
// anonymous and unbounded.
func likePost(svc *services.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		if err := svc.LikePost(id); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"liked": true})
	}
}
