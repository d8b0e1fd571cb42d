package server

import (
	"github.com/gorilla/mux"

	"crm-ev-sync/src/handler"
)

func Setup(h *handler.WebhookHandler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/webhooks/ev", h.EVSync)
	router.HandleFunc("/health", h.Health)

	return router
}
