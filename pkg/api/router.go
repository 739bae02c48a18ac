package api

import (
	"net/http"

	"tunebook/pkg/api/handlers"
	"tunebook/pkg/services"
	"tunebook/pkg/telemetry"

	"github.com/gorilla/mux"
)

// Handler builds the versioned API router over the service registry. The
// telemetry middleware runs inside the router so it sees matched route
// templates rather than raw paths.
func Handler(reg *services.Registry) http.Handler {
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)

	v1 := r.PathPrefix("/v1").Subrouter()
	handlers.RegisterProfiles(v1, reg.Profiles)
	handlers.RegisterFriends(v1, reg.Profiles)
	handlers.RegisterTunes(v1, reg.Tunes)
	handlers.RegisterSessions(v1, reg.Sessions)
	handlers.RegisterInstruments(v1, reg.Instruments)
	handlers.RegisterForums(v1, reg.Forums)
	handlers.RegisterStats(v1, reg)

	return r
}
