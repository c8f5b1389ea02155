package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"rentabook/internal/reservations/service"
	apperrors "rentabook/pkg/errors"
	httputil "rentabook/pkg/http"
	"rentabook/pkg/logger"
	"rentabook/pkg/middleware"
	"rentabook/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

// AvailabilityResponse lists the free calendar days of an inclusive range.
type AvailabilityResponse struct {
	PropertyID    string   `json:"property_id"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	AvailableDays []string `json:"available_days"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.Header.Get(middleware.UserIDHeader)
	if userID == "" {
		h.writeError(w, "Create", apperrors.Unauthorized("missing "+middleware.UserIDHeader+" header"))
		return
	}

	var req model.CreateReservationRequest
	if !h.decode(w, r, "Create", &req, false) {
		return
	}
	req.CreatedBy = userID

	reservation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", reservation)
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	propertyID := r.URL.Query().Get("property_id")
	if propertyID == "" {
		h.writeError(w, "Search", apperrors.InvalidInput("'property_id' query parameter is required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	from, err := optionalDate(r, "start_date")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	to, err := optionalDate(r, "end_date")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	reservations, total, err := h.service.SearchByProperty(r.Context(), propertyID, from, to, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) UpdateStay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StayUpdate
	if !h.decode(w, r, "UpdateStay", &update, false) {
		return
	}

	reservation, err := h.service.UpdateStay(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStay", err)
		return
	}
	h.writeSuccess(w, "UpdateStay", reservation)
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Confirm(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}
	h.writeSuccess(w, "Confirm", reservation)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if !h.decode(w, r, "Cancel", &req, true) {
		return
	}

	reservation, err := h.service.Cancel(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", reservation)
}

func (h *ReservationHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.Complete(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Complete", err)
		return
	}
	h.writeSuccess(w, "Complete", reservation)
}

func (h *ReservationHandler) AddPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.PaymentRequest
	if !h.decode(w, r, "AddPayment", &req, false) {
		return
	}

	reservation, err := h.service.AddPayment(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AddPayment", err)
		return
	}
	h.writeSuccess(w, "AddPayment", reservation)
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, err := httputil.ExtractDate(r, "start_date", true)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	to, err := httputil.ExtractDate(r, "end_date", true)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	propertyID := ps.ByName("id")
	days, err := h.service.AvailableDays(r.Context(), propertyID, from, to)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	resp := AvailabilityResponse{
		PropertyID:    propertyID,
		StartDate:     model.FormatDay(from),
		EndDate:       model.FormatDay(to),
		AvailableDays: make([]string, 0, len(days)),
	}
	for _, d := range days {
		resp.AvailableDays = append(resp.AvailableDays, model.FormatDay(d))
	}
	h.writeSuccess(w, "Availability", resp)
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/search", h.Search)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.PATCH("/api/v1/reservations/id/:id", h.UpdateStay)
	router.POST("/api/v1/reservations/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/reservations/id/:id/complete", h.Complete)
	router.POST("/api/v1/reservations/id/:id/payments", h.AddPayment)
	router.GET("/api/v1/properties/:id/availability", h.Availability)
}

// decode reads a JSON body into v. With optional set, an empty body leaves v as is.
func (h *ReservationHandler) decode(w http.ResponseWriter, r *http.Request, handler string, v any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}

	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Code:  apperrors.CodeBadRequest,
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
	return false
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func optionalDate(r *http.Request, name string) (*time.Time, error) {
	d, err := httputil.ExtractDate(r, name, false)
	if err != nil || d.IsZero() {
		return nil, err
	}
	return &d, nil
}
