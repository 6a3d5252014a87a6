package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/shaibs3/scrapeapi/internal/storage"
	"go.uber.org/zap"
)

// Executor runs a scrape and its optional filter
type Executor interface {
	Execute(ctx context.Context, url, selector string, cfg db_model.ScrapeConfig, filterExpr string) (any, error)
	ExecuteDefinition(ctx context.Context, def db_model.ScrapingDefinition) (any, error)
}

// ScrapeHandler serves stored definitions and ad-hoc scrapes
type ScrapeHandler struct {
	DB       storage.DefinitionProvider
	executor Executor
	logger   *zap.Logger
}

// NewScrapeHandler creates a new scrape handler
func NewScrapeHandler(dbProvider storage.DefinitionProvider, executor Executor, logger *zap.Logger) *ScrapeHandler {
	return &ScrapeHandler{DB: dbProvider, executor: executor, logger: logger.Named("handlers")}
}

// RegisterRoutes registers the routes for this handler
func (h *ScrapeHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/scrape/{endpoint}", h.handleInvoke).Methods(http.MethodGet)
	router.HandleFunc("/insertexecute", h.handleInsertExecute).Methods(http.MethodPost)
	router.HandleFunc("/test", h.handleTest).Methods(http.MethodPost)
}

func (h *ScrapeHandler) handleInvoke(w http.ResponseWriter, req *http.Request) {
	endpoint := mux.Vars(req)["endpoint"]
	def, err := h.DB.GetDefinitionByEndpoint(req.Context(), endpoint)
	if err != nil {
		h.logger.Error("failed to look up definition", zap.String("endpoint", endpoint), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	if def == nil {
		writeError(w, h.logger, http.StatusNotFound, "Endpoint not found")
		return
	}
	h.execute(req.Context(), w, *def)
}

func (h *ScrapeHandler) handleInsertExecute(w http.ResponseWriter, req *http.Request) {
	def, ok := decodeDefinition(w, req, h.logger)
	if !ok {
		return
	}
	id, err := h.DB.CreateDefinition(req.Context(), def)
	if err != nil {
		h.logger.Error("failed to create definition", zap.String("endpoint", def.Endpoint), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	def.ID = id
	h.execute(req.Context(), w, def)
}

// handleTest runs a scrape without persisting it; every failure is a 500 carrying its message
func (h *ScrapeHandler) handleTest(w http.ResponseWriter, req *http.Request) {
	var body db_model.DefinitionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}
	if body.URL == nil || body.ElementSelector == nil {
		writeError(w, h.logger, http.StatusInternalServerError, db_model.ErrMissingFields.Error())
		return
	}
	filterExpr := ""
	if body.FilterExpression != nil {
		filterExpr = *body.FilterExpression
	}
	data, err := h.executor.Execute(req.Context(), *body.URL, *body.ElementSelector, body.ScrapeConfig(), filterExpr)
	if err != nil {
		h.logger.Warn("test scrape failed", zap.String("url", *body.URL), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, data)
}

func (h *ScrapeHandler) execute(ctx context.Context, w http.ResponseWriter, def db_model.ScrapingDefinition) {
	data, err := h.executor.ExecuteDefinition(ctx, def)
	if err != nil {
		h.logger.Error("scrape failed",
			zap.Int64("id", def.ID),
			zap.String("endpoint", def.Endpoint),
			zap.String("url", def.URL),
			zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, data)
}
