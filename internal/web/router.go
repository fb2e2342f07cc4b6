package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Web pages
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/embed/map", h.EmbedMap).Methods("GET")
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.PathPrefix("/static/").Handler(staticHandler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.APIState).Methods("GET")
	api.HandleFunc("/tab", h.APISwitchTab).Methods("POST")
	api.HandleFunc("/incident-types", h.APIIncidentTypes).Methods("GET")
	api.HandleFunc("/pins", h.APICreatePin).Methods("POST")
	api.HandleFunc("/map/scene", h.APIMapScene).Methods("GET")
	api.HandleFunc("/map/self", h.APIMapSelf).Methods("POST")
	api.HandleFunc("/map/snapshot.png", h.APIMapSnapshot).Methods("GET")
	api.HandleFunc("/event-logs", h.APIEventLogs).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
