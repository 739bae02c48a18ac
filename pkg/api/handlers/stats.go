package handlers

import (
	"net/http"

	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterStats registers the record-count endpoint.
func RegisterStats(r *mux.Router, reg *services.Registry) {
	r.HandleFunc("/stats", getStats(reg)).Methods(http.MethodGet)
}

// getStats handles GET /stats: per-namespace record counts.
func getStats(reg *services.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profiles, err := reg.Profiles.Count()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		tunes, err := reg.Tunes.Count()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		sessions, err := reg.Sessions.Count()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		instruments, err := reg.Instruments.Count()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		forums, err := reg.Forums.ForumCount()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		posts, err := reg.Forums.PostCount()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]int{
			"profiles":    profiles,
			"tunes":       tunes,
			"sessions":    sessions,
			"instruments": instruments,
			"forums":      forums,
			"posts":       posts,
		})
	}
}
