package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"quantdesk/internal/config"
	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/middleware"
)

const maxMinVolume = 1_000_000

// OptionsHandler handles volatility surface requests.
type OptionsHandler struct {
	service      OptionsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
}

// NewOptionsHandler creates the volatility surface handler.
func NewOptionsHandler(service OptionsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OptionsHandler {
	return &OptionsHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "options")),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the options routes, mounted under /api/options.
func (h *OptionsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/surface/{ticker}", h.Surface)
	return r
}

// Surface handles GET /api/options/surface/{ticker}?expiration=&min_volume=.
// An absent min_volume passes -1 through so the service applies its
// configured default; an explicit 0 means no volume floor.
func (h *OptionsHandler) Surface(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticker := chi.URLParam(r, "ticker")
	if !middleware.ValidTickerSymbol(ticker) {
		h.errorHandler.HandleError(w, r,
			apierrors.ErrFieldValidation("ticker", "must be 1-10 characters of letters, digits, dot, or hyphen"))
		return
	}

	expiration, ok := h.params.ValidateEnum(w, r, "expiration", config.ExpirationFilters, "")
	if !ok {
		return
	}
	minVolume, ok := h.params.ValidateInt(w, r, "min_volume", 0, maxMinVolume, -1)
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "volatility surface requested",
		slog.String("ticker", ticker),
		slog.String("expiration", expiration),
		slog.Int("min_volume", minVolume),
	)

	result, err := h.service.Surface(ctx, ticker, expiration, int64(minVolume))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}
