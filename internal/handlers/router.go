package handlers

import (
	"net/http"
	"strings"

	"peerlend/internal/config"
	"peerlend/internal/metrics"
	"peerlend/internal/middleware"
	"peerlend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	cfg    config.Config
	ledger LedgerService
	hub    *websocket.Hub
	log    logrus.FieldLogger
}

func New(cfg config.Config, ledger LedgerService, hub *websocket.Hub, log logrus.FieldLogger) *Handler {
	return &Handler{
		cfg:    cfg,
		ledger: ledger,
		hub:    hub,
		log:    log,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(middleware.Recover(h.log))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(metrics.InstrumentHandler)

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.CurrentUser(h.cfg.DemoUserID))
		r.Get("/contracts", h.ListContracts)
		r.Post("/contracts", h.CreateContract)
		r.Get("/contracts/{id}", h.GetContract)
		r.Post("/contracts/{id}/sign", h.SignContract)
		r.Post("/contracts/{id}/complete", h.CompleteContract)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.ExecuteTransaction)
		r.Get("/trust-score", h.GetTrustScore)
		r.Post("/trust-score", h.VerifyIdentity)
		r.Get("/trust-score/history", h.GetTrustScoreHistory)
	})
	router.Get("/ws/trust-score", h.WSTrustScore)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	return router
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	h.log.WithError(err).
		WithField("path", r.URL.Path).
		WithField("request_id", chimiddleware.GetReqID(r.Context())).
		Error(message)
	respondError(w, http.StatusInternalServerError, message)
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
