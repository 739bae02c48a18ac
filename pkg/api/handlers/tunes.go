package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterTunes registers tune repository routes. Tune titles may contain
// any character including slashes, so titles travel in query parameters
// and bodies, never in URL paths.
func RegisterTunes(r *mux.Router, svc *services.TuneService) {
	r.HandleFunc("/tunes", filterTunes(svc)).Methods(http.MethodGet)
	r.HandleFunc("/tunes", addTune(svc)).Methods(http.MethodPost)
	r.HandleFunc("/tunes", updateTune(svc)).Methods(http.MethodPut)
	r.HandleFunc("/tunes", removeTune(svc)).Methods(http.MethodDelete)
	r.HandleFunc("/tunes/original", listOriginalTunes(svc)).Methods(http.MethodGet)
	r.HandleFunc("/tunes/original/data", getOriginalTune(svc)).Methods(http.MethodGet)
	r.HandleFunc("/tunes/recent", recentTunes(svc)).Methods(http.MethodGet)
	r.HandleFunc("/profiles/{principal}/tunes", listUserTunes(svc)).Methods(http.MethodGet)
	r.HandleFunc("/profiles/{principal}/tunes/data", getUserTune(svc)).Methods(http.MethodGet)
}

// filterTunes handles GET /tunes?title=&rhythm=&key=&page=. Rhythm and key
// default to the sentinel "all", which disables header matching.
func filterTunes(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		q := r.URL.Query()
		rhythm := q.Get("rhythm")
		if rhythm == "" {
			rhythm = "all"
		}
		key := q.Get("key")
		if key == "" {
			key = "all"
		}
		tunes, total, err := svc.Filter(q.Get("title"), rhythm, key, page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"tunes": tunes, "total": total})
	}
}

type tuneBody struct {
	Principal string  `json:"principal"`
	Title     string  `json:"title"`
	TuneData  string  `json:"tune_data"`
	Origin    bool    `json:"origin"`
	Username  *string `json:"username"`
}

// addTune handles POST /tunes. The added flag reports false when the
// caller already holds the title.
func addTune(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tuneBody
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title required")
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		added, err := svc.Add(principal, body.Title, body.TuneData, body.Origin, body.Username)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"added": added})
	}
}

// updateTune handles PUT /tunes: replaces body, origin and username of a
// tune the caller holds.
func updateTune(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body tuneBody
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, body.Principal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.Update(principal, body.Title, body.TuneData, body.Origin, body.Username); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"updated": true})
	}
}

// removeTune handles DELETE /tunes?title=&principal=.
func removeTune(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		title := q.Get("title")
		if title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title required")
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, q.Get("principal"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.Remove(principal, title); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"removed": true})
	}
}

// listOriginalTunes handles GET /tunes/original?page=: titles of the whole
// repository, with total equal to the full map size.
func listOriginalTunes(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		titles, total, err := svc.OriginalList(page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"titles": titles, "total": total})
	}
}

// getOriginalTune handles GET /tunes/original/data?title=: any stored
// tune's body, no ownership check.
func getOriginalTune(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		if title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title required")
			return
		}
		data, err := svc.Original(title)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"title": title, "tune_data": data})
	}
}

// recentTunes handles GET /tunes/recent: every tune touched in the last
// week, regardless of ownership.
func recentTunes(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tunes, err := svc.Recent()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"tunes": tunes})
	}
}

// listUserTunes handles GET /profiles/{principal}/tunes?page=.
func listUserTunes(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		tunes, total, err := svc.UserTuneList(mux.Vars(r)["principal"], page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"tunes": tunes, "total": total})
	}
}

// getUserTune handles GET /profiles/{principal}/tunes/data?title=.
func getUserTune(svc *services.TuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		if title == "" {
			utils.JSONError(w, http.StatusBadRequest, "title required")
			return
		}
		data, err := svc.UserTune(mux.Vars(r)["principal"], title)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"title": title, "tune_data": data})
	}
}
