package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
)

type NotebookHandler struct {
	dbclient core.DbClient
	log      *zap.Logger
}

func NewNotebookHandler(dbclient core.DbClient, log *zap.Logger) *NotebookHandler {
	return &NotebookHandler{dbclient: dbclient, log: log}
}

type createNotebookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *NotebookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createNotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	nb := &models.Notebook{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.dbclient.CreateNotebook(r.Context(), nb); err != nil {
		h.log.Error("create notebook failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create notebook")
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

func (h *NotebookHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notebooks, err := h.dbclient.ListNotebooksByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list notebooks failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list notebooks")
		return
	}
	if notebooks == nil {
		notebooks = []models.Notebook{}
	}
	writeJSON(w, http.StatusOK, notebooks)
}

func (h *NotebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	nb, err := h.dbclient.GetNotebookByID(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.log.Error("get notebook failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch notebook")
		return
	}
	if nb == nil {
		writeError(w, http.StatusNotFound, "notebook not found")
		return
	}
	writeJSON(w, http.StatusOK, nb)
}

func (h *NotebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.dbclient.DeleteNotebook(r.Context(), chi.URLParam(r, "id"), userID)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, http.StatusNotFound, "notebook not found")
		return
	}
	if err != nil {
		h.log.Error("delete notebook failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete notebook")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Documents lists a notebook's documents, newest first.
func (h *NotebookHandler) Documents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := h.dbclient.ListDocumentsByNotebook(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.log.Error("list documents failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}
