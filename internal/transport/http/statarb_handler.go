package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/middleware"
	"quantdesk/internal/services"
)

// PairRequest is the body of POST /api/statarb/test-pair.
type PairRequest struct {
	TickerA         string  `json:"ticker_a" validate:"required,ticker"`
	TickerB         string  `json:"ticker_b" validate:"required,ticker"`
	LookbackDays    int     `json:"lookback_days" validate:"omitempty,gte=30,lte=3650"`
	PValueThreshold float64 `json:"p_value_threshold" validate:"omitempty,gt=0,lt=1"`
}

// FindPairsRequest is the body of POST /api/statarb/find-pairs.
type FindPairsRequest struct {
	Tickers         []string `json:"tickers" validate:"required,min=2,max=50,unique,dive,ticker"`
	LookbackDays    int      `json:"lookback_days" validate:"omitempty,gte=30,lte=3650"`
	PValueThreshold float64  `json:"p_value_threshold" validate:"omitempty,gt=0,lt=1"`
}

// SpreadRequest is the body of POST /api/statarb/spread. ExitThreshold is a
// pointer so an explicit zero survives decoding; absent means the default.
type SpreadRequest struct {
	TickerA        string   `json:"ticker_a" validate:"required,ticker"`
	TickerB        string   `json:"ticker_b" validate:"required,ticker"`
	LookbackDays   int      `json:"lookback_days" validate:"omitempty,gte=30,lte=3650"`
	Window         int      `json:"window" validate:"omitempty,gte=5,lte=252"`
	EntryThreshold float64  `json:"entry_threshold" validate:"omitempty,gt=0"`
	ExitThreshold  *float64 `json:"exit_threshold" validate:"omitempty,gte=0"`
}

// StatArbHandler handles cointegration and spread requests.
type StatArbHandler struct {
	service      StatArbServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.RequestValidator
}

// NewStatArbHandler creates the pairs-trading handler.
func NewStatArbHandler(service StatArbServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StatArbHandler {
	return &StatArbHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "statarb")),
		errorHandler: errorHandler,
		validator:    middleware.NewRequestValidator(logger, errorHandler),
	}
}

// Routes returns the pairs-trading routes, mounted under /api/statarb.
func (h *StatArbHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/test-pair", h.TestPair)
	r.Post("/find-pairs", h.FindPairs)
	r.Post("/spread", h.Spread)
	return r
}

// TestPair handles POST /api/statarb/test-pair.
func (h *StatArbHandler) TestPair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PairRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "pair test requested",
		slog.String("ticker_a", req.TickerA),
		slog.String("ticker_b", req.TickerB),
		slog.Int("lookback_days", req.LookbackDays),
	)

	result, err := h.service.TestPair(ctx, req.TickerA, req.TickerB, req.LookbackDays, req.PValueThreshold)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// FindPairs handles POST /api/statarb/find-pairs.
func (h *StatArbHandler) FindPairs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FindPairsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "pair scan requested",
		slog.Int("tickers", len(req.Tickers)),
		slog.Int("lookback_days", req.LookbackDays),
	)

	result, err := h.service.FindPairs(ctx, req.Tickers, req.LookbackDays, req.PValueThreshold)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Spread handles POST /api/statarb/spread.
func (h *StatArbHandler) Spread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SpreadRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "spread series requested",
		slog.String("ticker_a", req.TickerA),
		slog.String("ticker_b", req.TickerB),
		slog.Int("window", req.Window),
	)

	result, err := h.service.Spread(ctx, services.SpreadParams{
		TickerA:        req.TickerA,
		TickerB:        req.TickerB,
		LookbackDays:   req.LookbackDays,
		Window:         req.Window,
		EntryThreshold: req.EntryThreshold,
		ExitThreshold:  req.ExitThreshold,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
