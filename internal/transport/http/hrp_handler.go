package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/middleware"
)

// CorrelationRequest is the body of POST /api/hrp/correlation.
type CorrelationRequest struct {
	Tickers      []string `json:"tickers" validate:"required,min=2,max=50,unique,dive,ticker"`
	LookbackDays int      `json:"lookback_days" validate:"omitempty,gte=30,lte=3650"`
}

// AnalyzeRequest is the body of POST /api/hrp/analyze.
type AnalyzeRequest struct {
	Tickers       []string `json:"tickers" validate:"required,min=3,max=50,unique,dive,ticker"`
	LookbackDays  int      `json:"lookback_days" validate:"omitempty,gte=30,lte=3650"`
	LinkageMethod string   `json:"linkage_method" validate:"omitempty,oneof=single complete average ward"`
}

// HRPHandler handles hierarchical clustering requests.
type HRPHandler struct {
	service      HRPServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *middleware.RequestValidator
}

// NewHRPHandler creates the clustering handler.
func NewHRPHandler(service HRPServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HRPHandler {
	return &HRPHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "hrp")),
		errorHandler: errorHandler,
		validator:    middleware.NewRequestValidator(logger, errorHandler),
	}
}

// Routes returns the clustering routes, mounted under /api/hrp.
func (h *HRPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/correlation", h.Correlation)
	r.Post("/analyze", h.Analyze)
	return r
}

// Correlation handles POST /api/hrp/correlation.
func (h *HRPHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CorrelationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "correlation matrix requested",
		slog.Int("tickers", len(req.Tickers)),
		slog.Int("lookback_days", req.LookbackDays),
	)

	result, err := h.service.Correlation(ctx, req.Tickers, req.LookbackDays)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Analyze handles POST /api/hrp/analyze.
func (h *HRPHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "clustering analysis requested",
		slog.Int("tickers", len(req.Tickers)),
		slog.Int("lookback_days", req.LookbackDays),
		slog.String("linkage_method", req.LinkageMethod),
	)

	result, err := h.service.Analyze(ctx, req.Tickers, req.LookbackDays, req.LinkageMethod)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
