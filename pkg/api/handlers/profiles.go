package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterProfiles registers profile routes on the provided router.
func RegisterProfiles(r *mux.Router, svc *services.ProfileService) {
	r.HandleFunc("/profiles/{principal}", getProfile(svc)).Methods(http.MethodGet)
	r.HandleFunc("/profiles/{principal}", putProfile(svc)).Methods(http.MethodPut)
	r.HandleFunc("/profiles/{principal}/friends", getFriends(svc)).Methods(http.MethodGet)
}

// getProfile handles GET /profiles/{principal}: the authenticate call, an
// existence check with no side effects.
func getProfile(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Authenticate(mux.Vars(r)["principal"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, p)
	}
}

// putProfile handles PUT /profiles/{principal}: create-or-overwrite of the
// caller's own profile. Avatar bytes travel base64-encoded in JSON.
func putProfile(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username    string  `json:"username"`
			Pob         string  `json:"pob"`
			Instruments string  `json:"instruments"`
			Bio         *string `json:"bio"`
			Avatar      []byte  `json:"avatar"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		principal, status, msg := auth.ResolvePrincipal(r, mux.Vars(r)["principal"])
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		p, err := svc.Upsert(principal, body.Username, body.Pob, body.Instruments, body.Bio, body.Avatar)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, p)
	}
}

// getFriends handles GET /profiles/{principal}/friends.
func getFriends(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friends, err := svc.Friends(mux.Vars(r)["principal"])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"friends": friends})
	}
}
