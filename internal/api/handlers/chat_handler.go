package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	middleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

type ChatHandler struct {
	dbclient core.DbClient
	selector *retrieval.Selector
	llm      core.LLMProvider
	isDev    bool
	log      *zap.Logger
}

func NewChatHandler(dbclient core.DbClient, selector *retrieval.Selector, llm core.LLMProvider, isDev bool, log *zap.Logger) *ChatHandler {
	return &ChatHandler{dbclient: dbclient, selector: selector, llm: llm, isDev: isDev, log: log}
}

type chatRequest struct {
	Message           string   `json:"message"`
	NotebookID        string   `json:"notebookId"`
	SelectedDocuments []string `json:"selectedDocuments,omitempty"`
}

type chatResponse struct {
	Response  string   `json:"response"`
	Sources   []string `json:"sources"`
	Citations []string `json:"citations"`
}

// Query answers a chat message against the notebook's documents. Each turn is
// independent: history is stored but not fed back into the prompt.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.NotebookID == "" {
		writeError(w, http.StatusBadRequest, "notebookId is required")
		return
	}

	docs, err := h.selector.Select(ctx, userID, req.NotebookID, req.SelectedDocuments)
	if err != nil {
		h.log.Error("retrieval failed",
			zap.String("operation", "chat"),
			zap.String("notebook_id", req.NotebookID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch documents")
		return
	}

	prompt := buildChatPrompt(req.Message, docs)

	answer, err := h.llm.Generate(ctx, "", prompt)
	if err != nil {
		h.log.Error("generation failed",
			zap.String("operation", "chat"),
			zap.String("notebook_id", req.NotebookID),
			zap.Error(err))
		writeTaxonomyError(w, err, "failed to generate response", h.isDev)
		return
	}

	h.saveTurn(r, userID, req.NotebookID, req.Message, answer)

	sources := req.SelectedDocuments
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Response: answer,
		Sources:  sources,
		// Citation extraction from the response is not implemented.
		Citations: []string{},
	})
}

// History returns the notebook's stored chat turns, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.dbclient.ListChatMessages(r.Context(), notebookID, userID)
	if err != nil {
		h.log.Error("chat history fetch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// saveTurn persists both sides of the exchange. History is a convenience, so a
// failed write only logs.
func (h *ChatHandler) saveTurn(r *http.Request, userID, notebookID, question, answer string) {
	ctx := r.Context()
	for _, msg := range []*models.ChatMessage{
		{ID: uuid.NewString(), NotebookID: notebookID, UserID: userID, Role: "user", Content: question},
		{ID: uuid.NewString(), NotebookID: notebookID, UserID: userID, Role: "assistant", Content: answer},
	} {
		if err := h.dbclient.SaveChatMessage(ctx, msg); err != nil {
			h.log.Warn("failed to save chat message", zap.String("notebook_id", notebookID), zap.Error(err))
		}
	}
}

// buildChatPrompt embeds the retrieved document context and the question into
// a single prompt. With no usable context the model is steered to say it
// cannot access the documents rather than hallucinate an answer.
func buildChatPrompt(message string, docs []retrieval.DocContext) string {
	var contextBuilder strings.Builder
	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		fmt.Fprintf(&contextBuilder, "Document: %s\nContent: %s\n---\n\n", d.Filename, d.Content)
	}
	documentContext := contextBuilder.String()

	if strings.TrimSpace(documentContext) == "" {
		return fmt.Sprintf(`You are an intelligent assistant. The user is asking about documents in their notebook, but I cannot access the document content at the moment.

User Question: %s

Please respond that you're unable to access the document content and suggest they try uploading the documents again or contact support if the issue persists. Be helpful and apologetic.

Answer:`, message)
	}

	return fmt.Sprintf(`You are an intelligent educational assistant designed to help students learn from their documents. Use the following document content to provide clear, educational explanations.

Document Context:
%s

User Question: %s

Educational Instructions:
- Answer based primarily on the provided document content
- Explain concepts in a clear, student-friendly manner
- Break down complex topics into understandable parts
- Provide examples and analogies when helpful
- Highlight key terms and their definitions
- If explaining processes, break them into step-by-step format
- Use bullet points or numbered lists for clarity when appropriate
- If the question cannot be answered from the documents, state that clearly
- Encourage further learning by suggesting related questions or topics to explore

Answer:`, documentContext, message)
}
