package payment

import (
	"github.com/go-chi/chi/v5"
)

// WebhookRoutes returns the gateway callback router. No actor middleware here:
// the gateway authenticates by payload signature, not by identity headers.
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/moyasar", h.Webhook)
	return r
}
