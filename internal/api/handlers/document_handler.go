package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/config"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/core/ingestion_engine"
	"github.com/danielokoye-py/Notestack/internal/metrics"
	"github.com/danielokoye-py/Notestack/internal/models"
)

const maxUploadBytes = 32 << 20 // 32 MB

type DocumentHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	pipeline     *ingestion_engine.Pipeline
	cfg          *config.Config
	log          *zap.Logger
}

func NewDocumentHandler(dbclient core.DbClient, objectclient core.ObjectClient, pipeline *ingestion_engine.Pipeline, cfg *config.Config, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{dbclient: dbclient, objectclient: objectclient, pipeline: pipeline, cfg: cfg, log: log}
}

type uploadResponse struct {
	DocumentID    string `json:"documentId"`
	ChunksCreated int    `json:"chunksCreated"`
	PageCount     int    `json:"pageCount"`
}

// Upload receives a PDF, stores the raw bytes, creates the document row with
// status=processing, and runs the ingestion pipeline synchronously. The
// pipeline owns the terminal status transition; the handler only reports the
// outcome. Concurrent uploads to the same notebook are independent, and
// identical files are deliberately not deduplicated.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	notebookID := r.FormValue("notebookId")
	if notebookID == "" {
		writeError(w, http.StatusBadRequest, "notebookId is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !isPDF(contentType, header.Filename) {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}

	nb, err := h.dbclient.GetNotebookByID(r.Context(), notebookID, userID)
	if err != nil {
		h.log.Error("notebook lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch notebook")
		return
	}
	if nb == nil {
		writeError(w, http.StatusNotFound, "notebook not found")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	// Sanitize filename to prevent path traversal in the object key.
	cleanFilename := filepath.Base(header.Filename)
	docID := uuid.NewString()
	s3Key := fmt.Sprintf("%s/%s/%s", userID, docID, cleanFilename)

	storageURL, err := h.objectclient.UploadFile(r.Context(), h.cfg.BucketName, s3Key, bytes.NewReader(data), "application/pdf")
	if err != nil {
		h.log.Error("object upload failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	doc := &models.Document{
		ID:          docID,
		NotebookID:  notebookID,
		UserID:      userID,
		Filename:    header.Filename,
		Status:      models.StatusProcessing,
		StoragePath: storageURL,
		FileSize:    int64(len(data)),
	}
	if err := h.dbclient.CreateDocument(r.Context(), doc); err != nil {
		h.log.Error("document insert failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store document metadata")
		return
	}

	result, err := h.pipeline.Run(r.Context(), doc, data)
	if err != nil {
		metrics.RecordIngestion(models.StatusError, 0)
		writeTaxonomyError(w, err, "document processing failed", h.cfg.IsDev())
		return
	}
	metrics.RecordIngestion(models.StatusReady, result.ChunksCreated)

	writeJSON(w, http.StatusOK, uploadResponse{
		DocumentID:    doc.ID,
		ChunksCreated: result.ChunksCreated,
		PageCount:     result.PageCount,
	})
}

// Status is a check-only probe reporting whether a document has been chunked
// and embedded. It never triggers re-ingestion.
func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docID := chi.URLParam(r, "id")
	doc, err := h.dbclient.GetDocumentByID(r.Context(), docID)
	if err != nil {
		h.log.Error("document lookup failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}
	if doc == nil || doc.UserID != userID {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	count, err := h.dbclient.CountChunksByDocument(r.Context(), docID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check document chunks")
		return
	}

	isEmbedded := count > 0
	message := "Document needs embedding"
	if isEmbedded {
		message = "Document is already embedded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documentId": doc.ID,
		"filename":   doc.Filename,
		"status":     doc.Status,
		"isEmbedded": isEmbedded,
		"hasChunks":  isEmbedded,
		"message":    message,
	})
}

// ServePDF streams the stored PDF bytes back to the owner so the client can
// render the original file alongside the chat.
func (h *DocumentHandler) ServePDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docID := chi.URLParam(r, "id")
	doc, err := h.dbclient.GetDocumentByID(r.Context(), docID)
	if err != nil {
		h.log.Error("document lookup failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}
	if doc == nil || doc.UserID != userID {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	bucket, key, ok := parseS3URL(doc.StoragePath)
	if !ok {
		writeError(w, http.StatusNotFound, "PDF file not available")
		return
	}

	data, err := h.objectclient.GetFile(r.Context(), bucket, key)
	if err != nil {
		h.log.Error("object fetch failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve PDF file")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete removes the document row (chunks cascade) and best-effort deletes the
// stored object.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docID := chi.URLParam(r, "id")
	doc, err := h.dbclient.GetDocumentByID(r.Context(), docID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch document")
		return
	}
	if doc == nil || doc.UserID != userID {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	if err := h.dbclient.DeleteDocument(r.Context(), docID, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.log.Error("document delete failed", zap.String("document_id", docID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	if bucket, key, ok := parseS3URL(doc.StoragePath); ok {
		if err := h.objectclient.DeleteFile(r.Context(), bucket, key); err != nil {
			h.log.Warn("object delete failed", zap.String("document_id", docID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func isPDF(contentType, filename string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// parseS3URL extracts the bucket and key from a virtual-hosted-style S3 URL,
// e.g. https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf.
func parseS3URL(u string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(u, "https://")
	if !found {
		return "", "", false
	}
	hostPath := strings.SplitN(rest, "/", 2)
	if len(hostPath) != 2 {
		return "", "", false
	}
	host := hostPath[0]
	key = hostPath[1]
	bucket, _, found = strings.Cut(host, ".")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
