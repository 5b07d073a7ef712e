package news

import (
	"log/slog"
	"net/http"

	newsUC "news-aggregator/internal/usecase/news"
)

// Register mounts the news endpoints on mux.
func Register(mux *http.ServeMux, svc newsUC.Service, logger *slog.Logger) {
	mux.Handle("GET /news", ListHandler{
		Svc:    svc,
		Logger: logger,
	})
}
