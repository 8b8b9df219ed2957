// Package handler internal/infrastructure/handler/rate_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eurofx/rate-service/internal/application/service"
	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/eurofx/rate-service/internal/infrastructure/logger"
	"github.com/eurofx/rate-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RateHandler handles HTTP requests for exchange rates and conversion
type RateHandler struct {
	service *service.ExchangeService
	logger  logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(service *service.ExchangeService, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		service: service,
		logger:  log,
	}
}

// ListCurrencies handles retrieving the supported currency list
func (h *RateHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.service.ListCurrencies())
}

// AllRates handles retrieving the full dataset
func (h *RateHandler) AllRates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.service.AllRates())
}

// RatesByDate handles retrieving every currency's rate on one date
func (h *RateHandler) RatesByDate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	date, ok := h.parseDate(w, r, mux.Vars(r)["date"])
	if !ok {
		return
	}

	rates, err := h.service.RatesByDate(date)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidDate) {
			sendErrorResponse(w, h.logger, "Invalid date",
				"Date must be in the past; current or future dates are not allowed",
				http.StatusBadRequest, requestID)
			return
		}
		h.unexpectedError(w, r, err)
		return
	}

	h.writeJSON(w, r, rates)
}

// RateForCurrency handles retrieving one currency's rate on one date
func (h *RateHandler) RateForCurrency(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)
	currency := strings.ToUpper(vars["currency"])

	date, ok := h.parseDate(w, r, vars["date"])
	if !ok {
		return
	}

	rate, found, err := h.service.RateFor(currency, date)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidDate) {
			sendErrorResponse(w, h.logger, "Invalid date",
				"Date must be in the past; current or future dates are not allowed",
				http.StatusBadRequest, requestID)
			return
		}
		h.unexpectedError(w, r, err)
		return
	}

	if !found {
		sendErrorResponse(w, h.logger, "Exchange rate unavailable",
			"No exchange rate is available for the requested currency and date",
			http.StatusNotFound, requestID)
		return
	}

	h.writeJSON(w, r, rate)
}

// ConvertToEUR handles converting an amount into EUR
func (h *RateHandler) ConvertToEUR(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	vars := mux.Vars(r)
	currency := strings.ToUpper(vars["currency"])

	date, ok := h.parseDate(w, r, vars["date"])
	if !ok {
		return
	}

	// ParseFloat accepts "NaN" and "Inf" spellings; those are not amounts
	amount, err := strconv.ParseFloat(vars["amount"], 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a decimal number", http.StatusBadRequest, requestID)
		return
	}

	converted, found, err := h.service.ConvertToEUR(currency, date, amount)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidDate) {
			sendErrorResponse(w, h.logger, "Invalid date",
				"Date must be in the past; current or future dates are not allowed",
				http.StatusBadRequest, requestID)
			return
		}
		h.unexpectedError(w, r, err)
		return
	}

	if !found {
		sendErrorResponse(w, h.logger, "Conversion unavailable",
			"No conversion is possible for the requested currency, date, and amount",
			http.StatusNotFound, requestID)
		return
	}

	h.writeJSON(w, r, converted)
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/exchange-rates/currencies", h.ListCurrencies).Methods("GET")
	router.HandleFunc("/exchange-rates", h.AllRates).Methods("GET")
	router.HandleFunc("/exchange-rates/date/{date}", h.RatesByDate).Methods("GET")
	router.HandleFunc("/exchange-rates/{currency}/date/{date}", h.RateForCurrency).Methods("GET")
	router.HandleFunc("/exchange-rates/{currency}/convert-to-eur/{date}/{amount}", h.ConvertToEUR).Methods("GET")

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /exchange-rates/currencies",
			"GET /exchange-rates",
			"GET /exchange-rates/date/{date}",
			"GET /exchange-rates/{currency}/date/{date}",
			"GET /exchange-rates/{currency}/convert-to-eur/{date}/{amount}",
		},
	})
}

func (h *RateHandler) parseDate(w http.ResponseWriter, r *http.Request, raw string) (time.Time, bool) {
	date, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid date",
			"Date must use ISO format (yyyy-MM-dd)", http.StatusBadRequest,
			middleware.GetRequestID(r.Context()))
		return time.Time{}, false
	}
	return date, true
}

func (h *RateHandler) unexpectedError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Error("Unexpected error in rate handler", map[string]interface{}{
		"request_id": requestID,
		"path":       r.URL.Path,
		"error":      err.Error(),
	})
	sendErrorResponse(w, h.logger, "Internal server error",
		"An unexpected error occurred. Please try again later.",
		http.StatusInternalServerError, requestID)
}

func (h *RateHandler) writeJSON(w http.ResponseWriter, r *http.Request, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse writes a standardized JSON error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, errMsg, description string, status int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error:       errMsg,
		Status:      status,
		Description: description,
		RequestID:   requestID,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to encode error response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}
