package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shaibs3/scrapeapi/internal/db_model"
	"github.com/shaibs3/scrapeapi/internal/storage"
	"go.uber.org/zap"
)

// DefinitionHandler manages the stored scraping definitions
type DefinitionHandler struct {
	DB     storage.DefinitionProvider
	logger *zap.Logger
}

// NewDefinitionHandler creates a new definition handler
func NewDefinitionHandler(dbProvider storage.DefinitionProvider, logger *zap.Logger) *DefinitionHandler {
	return &DefinitionHandler{DB: dbProvider, logger: logger.Named("handlers")}
}

// RegisterRoutes registers the routes for this handler
func (h *DefinitionHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	router.HandleFunc("/definition", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/definition/{id:[0-9]+}", h.handleUpdate).Methods(http.MethodPut)
	router.HandleFunc("/definition/{id:[0-9]+}", h.handleDelete).Methods(http.MethodDelete)
	router.HandleFunc("/getdefs", h.handleList).Methods(http.MethodGet)
}

func (h *DefinitionHandler) handleCreate(w http.ResponseWriter, req *http.Request) {
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
	h.logger.Info("definition created", zap.Int64("id", id), zap.String("endpoint", def.Endpoint))
	writeJSON(w, h.logger, http.StatusCreated, map[string]any{"status": "success", "id": id})
}

func (h *DefinitionHandler) handleUpdate(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, h.logger)
	if !ok {
		return
	}
	def, ok := decodeDefinition(w, req, h.logger)
	if !ok {
		return
	}
	if err := h.DB.UpdateDefinition(req.Context(), id, def); err != nil {
		h.logger.Error("failed to update definition", zap.Int64("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *DefinitionHandler) handleDelete(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(w, req, h.logger)
	if !ok {
		return
	}
	if err := h.DB.DeleteDefinition(req.Context(), id); err != nil {
		h.logger.Error("failed to delete definition", zap.Int64("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DefinitionHandler) handleList(w http.ResponseWriter, req *http.Request) {
	defs, err := h.DB.ListDefinitions(req.Context())
	if err != nil {
		h.logger.Error("failed to list definitions", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, errInternal)
		return
	}
	if defs == nil {
		defs = []db_model.ScrapingDefinition{}
	}
	writeJSON(w, h.logger, http.StatusOK, defs)
}

// decodeDefinition parses and validates a definition body, writing a 400 on failure
func decodeDefinition(w http.ResponseWriter, req *http.Request, logger *zap.Logger) (db_model.ScrapingDefinition, bool) {
	var body db_model.DefinitionRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, logger, http.StatusBadRequest, "Invalid request body")
		return db_model.ScrapingDefinition{}, false
	}
	if err := body.Validate(); err != nil {
		if errors.Is(err, db_model.ErrMissingFields) {
			writeError(w, logger, http.StatusBadRequest, db_model.ErrMissingFields.Error())
		} else {
			writeError(w, logger, http.StatusBadRequest, err.Error())
		}
		return db_model.ScrapingDefinition{}, false
	}
	return body.Definition(), true
}

func pathID(w http.ResponseWriter, req *http.Request, logger *zap.Logger) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, "Invalid definition id")
		return 0, false
	}
	return id, true
}
