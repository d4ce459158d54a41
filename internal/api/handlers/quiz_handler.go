package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
	"github.com/danielokoye-py/Notestack/internal/quiz"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

type QuizHandler struct {
	dbclient core.DbClient
	selector *retrieval.Selector
	llm      core.LLMProvider
	isDev    bool
	log      *zap.Logger
}

func NewQuizHandler(dbclient core.DbClient, selector *retrieval.Selector, llm core.LLMProvider, isDev bool, log *zap.Logger) *QuizHandler {
	return &QuizHandler{dbclient: dbclient, selector: selector, llm: llm, isDev: isDev, log: log}
}

type generateQuizRequest struct {
	NotebookID        string   `json:"notebookId"`
	SelectedDocuments []string `json:"selectedDocuments,omitempty"`
	QuestionCount     int      `json:"questionCount"`
	QuestionTypes     []string `json:"questionTypes,omitempty"`
}

type generateQuizResponse struct {
	Questions []models.QuizQuestion `json:"questions"`
	Message   string                `json:"message"`
}

// Generate builds quiz questions from the notebook's documents. A model reply
// that cannot be parsed into valid questions is replaced with fixed fallback
// questions and still returned as a success.
func (h *QuizHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.NotebookID == "" {
		writeError(w, http.StatusBadRequest, "notebookId is required")
		return
	}

	docs, err := h.selector.Select(ctx, userID, req.NotebookID, req.SelectedDocuments)
	if err != nil {
		h.log.Error("retrieval failed",
			zap.String("operation", "quiz"),
			zap.String("notebook_id", req.NotebookID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch documents")
		return
	}
	if !hasUsableContent(docs) {
		writeError(w, http.StatusNotFound, "no document content available for quiz generation")
		return
	}

	prompt := quiz.BuildPrompt(req.QuestionCount, req.QuestionTypes, docs)

	raw, err := h.llm.Generate(ctx, "", prompt)
	if err != nil {
		h.log.Error("quiz generation failed",
			zap.String("notebook_id", req.NotebookID),
			zap.Error(err))
		writeTaxonomyError(w, err, "failed to generate quiz", h.isDev)
		return
	}

	questions, err := quiz.ParseQuestions(raw)
	if err != nil {
		h.log.Warn("unparseable quiz output, serving fallback questions",
			zap.String("notebook_id", req.NotebookID),
			zap.Error(err))
		questions = quiz.FallbackQuestions()
	}

	writeJSON(w, http.StatusOK, generateQuizResponse{
		Questions: questions,
		Message:   "Quiz generated successfully",
	})
}

func hasUsableContent(docs []retrieval.DocContext) bool {
	for _, d := range docs {
		if d.Content != "" {
			return true
		}
	}
	return false
}

type saveAttemptRequest struct {
	NotebookID     string          `json:"notebookId"`
	DocumentID     string          `json:"documentId,omitempty"`
	Topic          string          `json:"topic"`
	QuizType       string          `json:"quizType"`
	Questions      json.RawMessage `json:"questions"`
	Answers        json.RawMessage `json:"answers"`
	Score          float64         `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	CorrectAnswers int             `json:"correctAnswers"`
}

// SaveAttempt records a completed quiz. Attempts are append-only; scoring
// happens on the client and is stored as reported.
func (h *QuizHandler) SaveAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req saveAttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.NotebookID == "" {
		writeError(w, http.StatusBadRequest, "notebookId is required")
		return
	}

	nb, err := h.dbclient.GetNotebookByID(r.Context(), req.NotebookID, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch notebook")
		return
	}
	if nb == nil {
		writeError(w, http.StatusNotFound, "notebook not found")
		return
	}

	attempt := &models.QuizAttempt{
		ID:             uuid.NewString(),
		NotebookID:     req.NotebookID,
		UserID:         userID,
		DocumentID:     req.DocumentID,
		Topic:          req.Topic,
		QuizType:       req.QuizType,
		Questions:      req.Questions,
		Answers:        req.Answers,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
	}
	if err := h.dbclient.SaveQuizAttempt(r.Context(), attempt); err != nil {
		h.log.Error("save quiz attempt failed", zap.String("notebook_id", req.NotebookID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save quiz attempt")
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

// ListAttempts returns a notebook's quiz attempts, newest first.
func (h *QuizHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notebookID := r.URL.Query().Get("notebookId")
	if notebookID == "" {
		writeError(w, http.StatusBadRequest, "notebookId is required")
		return
	}

	attempts, err := h.dbclient.ListQuizAttempts(r.Context(), notebookID, userID)
	if err != nil {
		h.log.Error("list quiz attempts failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch quiz attempts")
		return
	}
	if attempts == nil {
		attempts = []models.QuizAttempt{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"attempts": attempts})
}
