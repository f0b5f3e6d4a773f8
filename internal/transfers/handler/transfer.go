package handler

import (
	"encoding/json"
	"net/http"

	"seatwise/internal/transfers/service"
	apperrors "seatwise/pkg/errors"
	httputil "seatwise/pkg/http"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TransferHandler struct {
	service service.MatcherService
	log     *logger.Logger
}

func NewTransferHandler(service service.MatcherService, log *logger.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		log:     log,
	}
}

func (h *TransferHandler) FindCandidates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var criteria model.TransferCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "FindCandidates", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	candidates, err := h.service.FindCandidates(r.Context(), &criteria)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "FindCandidates", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"candidates": candidates}); err != nil {
		h.log.Error("failed to write success response", "handler", "FindCandidates", "operation", "WriteSuccess", "error", err)
	}
}

type offerRequest struct {
	OriginalBookingID string `json:"original_booking_id"`
	CandidateRideID   string `json:"candidate_ride_id"`
	Reason            string `json:"reason,omitempty"`
}

func (h *TransferHandler) Offer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Offer", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	request, err := h.service.Offer(r.Context(), req.OriginalBookingID, req.CandidateRideID, req.Reason)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Offer", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, request); err != nil {
		h.log.Error("failed to write created response", "handler", "Offer", "operation", "WriteCreated", "error", err)
	}
}

type respondRequest struct {
	Decision model.TransferDecision `json:"decision"`
}

func (h *TransferHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Respond", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	request, booking, err := h.service.Respond(r.Context(), ps.ByName("id"), req.Decision)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Respond", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"transfer_request": request,
		"booking":          booking,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransferHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	request, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransferHandler) ListByBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookingID := r.URL.Query().Get("booking_id")
	if bookingID == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("The 'booking_id' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	requests, err := h.service.ListByBooking(r.Context(), bookingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListByBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"transfer_requests": requests}); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TransferHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/transfers/candidates", h.FindCandidates)
	router.POST("/api/v1/transfers", h.Offer)
	router.GET("/api/v1/transfers", h.ListByBooking)
	router.GET("/api/v1/transfers/id/:id", h.GetByID)
	router.POST("/api/v1/transfers/id/:id/respond", h.Respond)
}
