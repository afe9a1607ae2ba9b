package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qasr/qasr-api/internal/domain/booking"
	"github.com/qasr/qasr-api/internal/middleware"
	"github.com/qasr/qasr-api/internal/pkg/errorhandler"
	"github.com/qasr/qasr-api/internal/pkg/response"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateCheckout handles POST /bookings/{id}/checkout
// @Summary Open a hosted payment page for a ready booking
// @Tags Payment
// @Produce json
// @Success 201 {object} response.Response{data=Checkout}
// @Failure 400,403,404,409,422,500 {object} response.Response
// @Router /bookings/{id}/checkout [post]
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	actor := booking.Actor{
		ID:    middleware.GetActorID(r.Context()),
		Admin: middleware.GetActorRole(r.Context()) == middleware.RoleAdmin,
	}

	checkout, err := h.service.CreateCheckout(r.Context(), bookingID, actor)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, booking.ErrNotAllowed):
			response.Forbidden(w, "You are not allowed to pay for this booking")
		case errors.Is(err, booking.ErrRejectedVendorsPending):
			response.Conflict(w, "Replace rejected vendors or decline the booking before paying")
		case errors.Is(err, booking.ErrInvalidTransition):
			response.Conflict(w, err.Error())
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Internal server error", err)
		}
		return
	}

	response.Created(w, checkout)
}

// Webhook handles POST /webhooks/moyasar. The gateway signs the raw body;
// verification happens before any parsing.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.BadRequest(w, "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-Moyasar-Signature")
	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrInvalidSignature):
			response.Unauthorized(w, "Invalid webhook signature")
		case errors.Is(err, ErrPaymentNotFound):
			response.NotFound(w, err.Error())
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Internal server error", err)
		}
		return
	}

	response.OK(w, map[string]string{"status": "accepted"})
}
