package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"seatwise/internal/rides/service"
	apperrors "seatwise/pkg/errors"
	httputil "seatwise/pkg/http"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RideHandler struct {
	service service.RideService
	log     *logger.Logger
}

func NewRideHandler(service service.RideService, log *logger.Logger) *RideHandler {
	return &RideHandler{
		service: service,
		log:     log,
	}
}

func (h *RideHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var ride model.Ride
	if err := json.NewDecoder(r.Body).Decode(&ride); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &ride); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, ride); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RideHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ride, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ride); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	status := model.RideStatus(query.Get("status"))
	switch status {
	case "", model.RideActive, model.RideCancelled, model.RideCompleted:
	default:
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid status parameter: %s", status))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	var offset int64
	if offsetStr := query.Get("offset"); offsetStr != "" {
		var err error
		offset, err = strconv.ParseInt(offsetStr, 10, 64)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid offset parameter: %s", offsetStr))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
			}
			return
		}
	}

	rides, total, err := h.service.GetAll(r.Context(), status, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"rides":  rides,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Cancel", h.service.Cancel)
}

func (h *RideHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Complete", h.service.Complete)
}

func (h *RideHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	ps httprouter.Params,
	name string,
	fn func(ctx context.Context, id string) (*model.Ride, error),
) {
	ride, err := fn(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ride); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) Layout(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	l, err := h.service.Layout(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Layout", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, l); err != nil {
		h.log.Error("failed to write success response", "handler", "Layout", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) SeatPricing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	prices, err := h.service.SeatPricing(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SeatPricing", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"prices": prices}); err != nil {
		h.log.Error("failed to write success response", "handler", "SeatPricing", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rides", h.Create)
	router.GET("/api/v1/rides", h.GetAll)
	router.GET("/api/v1/rides/id/:id", h.GetByID)
	router.POST("/api/v1/rides/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/rides/id/:id/complete", h.Complete)
	router.GET("/api/v1/rides/id/:id/layout", h.Layout)
	router.GET("/api/v1/rides/id/:id/pricing", h.SeatPricing)
}
