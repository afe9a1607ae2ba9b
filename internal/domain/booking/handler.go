package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/qasr/qasr-api/internal/domain/hall"
	"github.com/qasr/qasr-api/internal/domain/vendor"
	"github.com/qasr/qasr-api/internal/middleware"
	"github.com/qasr/qasr-api/internal/pkg/errorhandler"
	"github.com/qasr/qasr-api/internal/pkg/response"
	"github.com/qasr/qasr-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func actorFromContext(r *http.Request) Actor {
	return Actor{
		ID:    middleware.GetActorID(r.Context()),
		Admin: middleware.GetActorRole(r.Context()) == middleware.RoleAdmin,
	}
}

// parseEventWindow composes the event date and HH:MM clock strings into
// concrete instants on that date. Inputs are already format-validated.
func parseEventWindow(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return
	}
	startClock, err := time.Parse("15:04", startStr)
	if err != nil {
		return
	}
	endClock, err := time.Parse("15:04", endStr)
	if err != nil {
		return
	}
	start = time.Date(date.Year(), date.Month(), date.Day(), startClock.Hour(), startClock.Minute(), 0, 0, time.UTC)
	end = time.Date(date.Year(), date.Month(), date.Day(), endClock.Hour(), endClock.Minute(), 0, 0, time.UTC)
	return
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Create handles POST /bookings
// @Summary Create a booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "Booking request"
// @Success 201 {object} response.Response{data=BookingResponse}
// @Failure 400,404,409,422,500 {object} response.Response
// @Router /bookings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	hallID, _ := uuid.Parse(req.HallID)
	date, start, end, err := parseEventWindow(req.EventDate, req.StartTime, req.EndTime)
	if err != nil {
		response.BadRequest(w, "Invalid date or time format")
		return
	}

	in := CreateBookingInput{
		CustomerID:       middleware.GetActorID(r.Context()),
		HallID:           hallID,
		EventDate:        date,
		StartTime:        start,
		EndTime:          end,
		GuestCount:       req.GuestCount,
		GenderPreference: hall.Segment(req.GenderPreference),
		DiscountCode:     req.DiscountCode,
	}
	for _, sel := range req.Vendors {
		vendorID, _ := uuid.Parse(sel.VendorID)
		itemIDs, err := parseUUIDs(sel.ServiceItemIDs)
		if err != nil {
			response.BadRequest(w, "Invalid service item id")
			return
		}
		in.Vendors = append(in.Vendors, VendorSelection{VendorID: vendorID, ServiceItemIDs: itemIDs})
	}

	b, err := h.service.CreateBooking(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.Created(w, BookingResponseFromEntity(b))
}

// Get handles GET /bookings/{id}
// @Summary Get a booking
// @Tags Booking
// @Produce json
// @Success 200 {object} response.Response{data=BookingResponse}
// @Failure 400,404,500 {object} response.Response
// @Router /bookings/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	b, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// Quote handles POST /bookings/quote: a price preview, nothing is persisted
// @Summary Quote a prospective booking
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Quote request"
// @Success 200 {object} response.Response{data=PriceBreakdown}
// @Failure 400,409,422,500 {object} response.Response
// @Router /bookings/quote [post]
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	hallID, _ := uuid.Parse(req.HallID)
	_, start, end, err := parseEventWindow(req.EventDate, req.StartTime, req.EndTime)
	if err != nil {
		response.BadRequest(w, "Invalid date or time format")
		return
	}
	itemIDs, err := parseUUIDs(req.ServiceItemIDs)
	if err != nil {
		response.BadRequest(w, "Invalid service item id")
		return
	}

	breakdown, err := h.service.Quote(r.Context(), QuoteInput{
		HallID:           hallID,
		GenderPreference: hall.Segment(req.GenderPreference),
		Start:            start,
		End:              end,
		ServiceItemIDs:   itemIDs,
		DiscountCode:     req.DiscountCode,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, breakdown)
}

// FreeSlots handles GET /halls/{id}/free-slots and GET /vendors/{id}/free-slots
// @Summary List free slots of a resource's day
// @Tags Booking
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Response{data=[]FreeSlotResponse}
// @Failure 400,500 {object} response.Response
// @Router /halls/{id}/free-slots [get]
func (h *Handler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid resource id")
		return
	}
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "Invalid or missing date, expected YYYY-MM-DD")
		return
	}

	slots, err := h.service.GetFreeSlots(r.Context(), resourceID, date)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, FreeSlotsResponseFromIntervals(slots))
}

// HallApprove handles POST /bookings/{id}/hall/approve
func (h *Handler) HallApprove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	b, err := h.service.HallApprove(r.Context(), id, actorFromContext(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// HallReject handles POST /bookings/{id}/hall/reject
func (h *Handler) HallReject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	b, err := h.service.HallReject(r.Context(), id, actorFromContext(r), req.Reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// VendorApprove handles POST /bookings/{id}/vendor-bookings/{vbID}/approve
func (h *Handler) VendorApprove(w http.ResponseWriter, r *http.Request) {
	h.vendorDecision(w, r, true)
}

// VendorReject handles POST /bookings/{id}/vendor-bookings/{vbID}/reject
func (h *Handler) VendorReject(w http.ResponseWriter, r *http.Request) {
	h.vendorDecision(w, r, false)
}

func (h *Handler) vendorDecision(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}
	vbID, err := uuid.Parse(chi.URLParam(r, "vbID"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor booking id")
		return
	}

	var reason string
	if !approve {
		var req RejectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			response.ValidationError(w, errs)
			return
		}
		reason = req.Reason
	}

	b, err := h.service.VendorDecision(r.Context(), id, vbID, actorFromContext(r), approve, reason)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// ReplaceVendor handles POST /bookings/{id}/vendor-bookings/{vbID}/replace
func (h *Handler) ReplaceVendor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}
	vbID, err := uuid.Parse(chi.URLParam(r, "vbID"))
	if err != nil {
		response.BadRequest(w, "Invalid vendor booking id")
		return
	}

	var req ReplaceVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	newVendorID, _ := uuid.Parse(req.NewVendorID)
	itemIDs, err := parseUUIDs(req.ServiceItemIDs)
	if err != nil {
		response.BadRequest(w, "Invalid service item id")
		return
	}

	b, err := h.service.ReplaceVendor(r.Context(), id, vbID, ReplaceVendorInput{
		NewVendorID:    newVendorID,
		ServiceItemIDs: itemIDs,
	}, actorFromContext(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// Cancel handles POST /bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	b, err := h.service.Cancel(r.Context(), id, actorFromContext(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// Decline handles POST /bookings/{id}/decline
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking id")
		return
	}

	b, err := h.service.Decline(r.Context(), id, actorFromContext(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, BookingResponseFromEntity(b))
}

// respondError maps domain errors to HTTP responses
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.UnprocessableEntity(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		response.Conflict(w, "Requested time slot is no longer available")
	case errors.Is(err, ErrVersionConflict):
		response.Conflict(w, "Booking was modified concurrently, reload and retry")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrAlreadyDecided):
		response.Conflict(w, "Decision was already recorded")
	case errors.Is(err, ErrTariffUnavailable):
		response.UnprocessableEntity(w, "TARIFF_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, "You are not allowed to perform this action")
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrVendorBookingNotFound),
		errors.Is(err, hall.ErrHallNotFound),
		errors.Is(err, hall.ErrTariffNotFound),
		errors.Is(err, vendor.ErrVendorNotFound):
		response.NotFound(w, err.Error())
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Internal server error", err)
	}
}
