package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns booking router. Every route requires an actor identity.
// The checkout handler lives in the payment domain and is injected to keep
// all /bookings routes in one router.
func (h *Handler) Routes(actorMiddleware func(http.Handler) http.Handler, checkout http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(actorMiddleware)

		r.Post("/", h.Create)
		r.Post("/quote", h.Quote)
		r.Get("/{id}", h.Get)

		r.Post("/{id}/hall/approve", h.HallApprove)
		r.Post("/{id}/hall/reject", h.HallReject)

		r.Post("/{id}/vendor-bookings/{vbID}/approve", h.VendorApprove)
		r.Post("/{id}/vendor-bookings/{vbID}/reject", h.VendorReject)
		r.Post("/{id}/vendor-bookings/{vbID}/replace", h.ReplaceVendor)

		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/decline", h.Decline)

		r.Post("/{id}/checkout", checkout)
	})

	return r
}
