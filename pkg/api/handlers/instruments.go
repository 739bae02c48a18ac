package handlers

import (
	"net/http"

	"tunebook/pkg/auth"
	"tunebook/pkg/services"
	"tunebook/pkg/utils"

	"github.com/gorilla/mux"
)

// RegisterInstruments registers marketplace routes.
func RegisterInstruments(r *mux.Router, svc *services.InstrumentService) {
	r.HandleFunc("/instruments", listInstruments(svc)).Methods(http.MethodGet)
	r.HandleFunc("/instruments", addInstrument(svc)).Methods(http.MethodPost)
	r.HandleFunc("/instruments/{id}", deleteInstrument(svc)).Methods(http.MethodDelete)
}

// listInstruments handles GET /instruments?search=&page=.
func listInstruments(svc *services.InstrumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := pageParam(w, r)
		if !ok {
			return
		}
		instruments, total, err := svc.List(r.URL.Query().Get("search"), page)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"instruments": instruments, "total": total})
	}
}

// addInstrument handles POST /instruments. Photo blobs travel
// base64-encoded in JSON.
func addInstrument(svc *services.InstrumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SellerPrincipal string   `json:"seller_principal"`
			BuyerPrincipal  string   `json:"buyer_principal"`
			Username        string   `json:"username"`
			Name            string   `json:"name"`
			Location        string   `json:"location"`
			Product         string   `json:"product"`
			Comment         string   `json:"comment"`
			Price           string   `json:"price"`
			Photos          [][]byte `json:"photos"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		seller, status, msg := auth.ResolvePrincipal(r, body.SellerPrincipal)
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		id, err := svc.Add(seller, body.BuyerPrincipal, body.Username, body.Name, body.Location, body.Product, body.Comment, body.Price, body.Photos)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"id": id})
	}
}

// deleteInstrument handles DELETE /instruments/{id}?seller=.
func deleteInstrument(svc *services.InstrumentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, mux.Vars(r)["id"])
		if !ok {
			return
		}
		seller, status, msg := auth.ResolvePrincipal(r, r.URL.Query().Get("seller"))
		if status != 0 {
			utils.JSONError(w, status, msg)
			return
		}
		if err := svc.Delete(id, seller); err != nil {
			writeServiceError(w, err)
			return
		}
		utils.JSONWrite(w, http.StatusOK, map[string]any{"deleted": true})
	}
}
