package news

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
	newsUC "news-aggregator/internal/usecase/news"
)

// ListHandler serves GET /news?limit=N.
type ListHandler struct {
	Svc    newsUC.Service
	Logger *slog.Logger
}

// ServeHTTP returns a random sample of stored news, newest first.
// @Summary      Random news sample
// @Description  Samples up to limit stored items at random and returns them sorted by date, newest first. favicon is never null.
// @Tags         news
// @Produce      json
// @Param        limit  query    int  false  "Number of items" default(200) minimum(1) maximum(200)
// @Success      200 {array}  DTO "News items"
// @Failure      400 {object} map[string]string "Limit must be between 1 and 200"
// @Failure      500 {object} map[string]string "internal server error"
// @Router       /news [get]
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	base := h.Logger
	if base == nil {
		base = slog.Default()
	}
	logger := logging.WithRequestID(ctx, base)

	limit, err := parseLimit(r)
	if err != nil {
		logger.Warn("invalid limit parameter",
			slog.String("limit", r.URL.Query().Get("limit")))
		respond.Error(w, http.StatusBadRequest, newsUC.ErrInvalidLimit)
		return
	}

	items, err := h.Svc.Sample(ctx, limit)
	if err != nil {
		if errors.Is(err, newsUC.ErrInvalidLimit) {
			respond.Error(w, http.StatusBadRequest, err)
			return
		}
		logger.Error("failed to sample news",
			slog.Int("limit", limit),
			slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	dtos := make([]DTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toDTO(item))
	}

	logger.Info("news sample served",
		slog.Int("limit", limit),
		slog.Int("returned_count", len(dtos)),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	respond.JSON(w, http.StatusOK, dtos)
}

// parseLimit reads the limit query parameter, defaulting to DefaultLimit when absent.
func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return newsUC.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newsUC.ErrInvalidLimit
	}
	if err := newsUC.ValidateLimit(limit); err != nil {
		return 0, err
	}
	return limit, nil
}
