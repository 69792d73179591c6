package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/pincode-shipping/internal/calculator"
	"github.com/eugenenazirov/pincode-shipping/internal/location"
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
	"github.com/eugenenazirov/pincode-shipping/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// ErrMissingField is the sentinel behind MissingFieldError.
var ErrMissingField = errors.New("missing field")

// MissingFieldError reports a required request field that is absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing " + e.Field
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// Handler wires classifier, calculator and storage dependencies into HTTP handlers.
type Handler struct {
	classifier location.Classifier
	calculator calculator.Calculator
	storage    storage.Storage
	logger     *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(classifier location.Classifier, calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		classifier: classifier,
		calculator: calc,
		storage:    store,
		logger:     zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetRates(w http.ResponseWriter, r *http.Request) {
	_ = r
	table, err := h.storage.GetRateTable()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	profile, err := h.storage.GetPackageProfile()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	carriers := make([]carrierRatesResponse, 0, len(table))
	for _, carrier := range table {
		rates := make(map[string]float64, len(carrier.Rates))
		for level, rate := range carrier.Rates {
			rates[level.String()] = rate
		}
		carriers = append(carriers, carrierRatesResponse{Name: carrier.Name, Rates: rates})
	}

	resp := ratesResponse{
		Package:  profile,
		Carriers: carriers,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCalculateShipping(w http.ResponseWriter, r *http.Request) {
	var req calculateShippingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	h.logger.Debug("shipping request received",
		zap.Any("payload", req),
		zap.String("pincode", req.Pincode),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	level, err := h.classifier.Classify(req.Pincode)
	if err != nil {
		if errors.Is(err, location.ErrInvalidFormat) {
			writeError(w, http.StatusBadRequest, "Invalid pincode format. Must be a 6-digit number.", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	quote, err := h.calculator.ComputeCosts(level)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidLevel) {
			writeError(w, http.StatusBadRequest, "Invalid location level", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	cheapest, err := calculator.Cheapest(quote.Costs)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newShippingResponse(quote, cheapest))
}

func newShippingResponse(quote calculator.Quote, cheapest shipping.CarrierCost) shippingResponse {
	costs := make(map[string]float64, len(quote.Costs))
	for _, c := range quote.Costs {
		costs[c.Carrier] = c.Cost
	}
	return shippingResponse{
		ShippingCosts: costs,
		LowestCost: lowestCost{
			Company:       cheapest.Carrier,
			Cost:          cheapest.Cost,
			LocationLevel: quote.Level,
		},
		WeightUsed: quote.WeightUsed,
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type calculateShippingRequest struct {
	Pincode string `json:"pincode"`
}

func (r calculateShippingRequest) validate() error {
	if r.Pincode == "" {
		return &MissingFieldError{Field: "pincode"}
	}
	return nil
}

type shippingResponse struct {
	ShippingCosts map[string]float64        `json:"shipping_costs"`
	LowestCost    lowestCost                `json:"lowest_cost"`
	WeightUsed    shipping.ChargeableWeight `json:"weight_used"`
}

type lowestCost struct {
	Company       string         `json:"company"`
	Cost          float64        `json:"cost"`
	LocationLevel shipping.Level `json:"location_level"`
}

type ratesResponse struct {
	Package  shipping.PackageProfile `json:"package"`
	Carriers []carrierRatesResponse  `json:"carriers"`
}

type carrierRatesResponse struct {
	Name  string             `json:"name"`
	Rates map[string]float64 `json:"rates"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
