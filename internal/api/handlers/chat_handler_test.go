package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	middleware "github.com/danielokoye-py/Notestack/internal/api/middlewares"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
	"github.com/danielokoye-py/Notestack/internal/retrieval"
)

// fakeDB backs handler tests; only the methods the handlers under test reach
// are implemented.
type fakeDB struct {
	core.DbClient

	notebooks map[string]models.Notebook // id -> notebook
	docs      map[string]models.Document
	recent    []models.Document
	chunks    map[string][]models.DocumentChunk
	messages  []models.ChatMessage
	attempts  []models.QuizAttempt
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		notebooks: map[string]models.Notebook{},
		docs:      map[string]models.Document{},
		chunks:    map[string][]models.DocumentChunk{},
	}
}

func (f *fakeDB) GetNotebookByID(_ context.Context, id, userID string) (*models.Notebook, error) {
	nb, ok := f.notebooks[id]
	if !ok || nb.UserID != userID {
		return nil, nil
	}
	return &nb, nil
}

func (f *fakeDB) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDB) GetDocumentsByIDs(_ context.Context, ids []string, userID, notebookID string) ([]models.Document, error) {
	var out []models.Document
	for _, id := range ids {
		d, ok := f.docs[id]
		if !ok || d.UserID != userID || d.NotebookID != notebookID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDB) ListRecentDocuments(_ context.Context, notebookID, userID string, limit int) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.recent {
		if d.NotebookID != notebookID || d.UserID != userID {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDB) GetChunksByDocument(_ context.Context, documentID string) ([]models.DocumentChunk, error) {
	return f.chunks[documentID], nil
}

func (f *fakeDB) SaveChatMessage(_ context.Context, msg *models.ChatMessage) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeDB) ListChatMessages(_ context.Context, notebookID, userID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range f.messages {
		if m.NotebookID == notebookID && m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) SaveQuizAttempt(_ context.Context, attempt *models.QuizAttempt) error {
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeDB) ListQuizAttempts(_ context.Context, notebookID, userID string) ([]models.QuizAttempt, error) {
	var out []models.QuizAttempt
	for _, a := range f.attempts {
		if a.NotebookID == notebookID && a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeLLM captures the prompt and returns a canned reply.
type fakeLLM struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, userPrompt string) (string, error) {
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func authedRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	return req.WithContext(middleware.WithUserID(req.Context(), "alice"))
}

func seedReadyDoc(db *fakeDB, id, filename, content string) {
	d := models.Document{ID: id, NotebookID: "nb1", UserID: "alice", Filename: filename, Status: models.StatusReady}
	db.docs[id] = d
	db.recent = append(db.recent, d)
	db.chunks[id] = []models.DocumentChunk{{DocumentID: id, PageNumber: 1, ChunkIndex: 0, Content: content}}
}

func newChatHandler(db *fakeDB, llm *fakeLLM) *ChatHandler {
	sel := retrieval.NewSelector(db, 3, zap.NewNop())
	return NewChatHandler(db, sel, llm, false, zap.NewNop())
}

func TestChatQueryWithContext(t *testing.T) {
	db := newFakeDB()
	seedReadyDoc(db, "d1", "bio.pdf", "Photosynthesis converts light into chemical energy stored in glucose for the plant to use later.")
	llm := &fakeLLM{reply: "It converts light into energy."}
	h := newChatHandler(db, llm)

	rec := httptest.NewRecorder()
	h.Query(rec, authedRequest(http.MethodPost, "/api/chat", map[string]any{
		"message":    "What is photosynthesis?",
		"notebookId": "nb1",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "It converts light into energy.", resp.Response)
	assert.NotNil(t, resp.Sources)
	assert.Equal(t, []string{}, resp.Citations)

	assert.Contains(t, llm.lastPrompt, "Document: bio.pdf")
	assert.Contains(t, llm.lastPrompt, "Photosynthesis converts light")
	assert.Contains(t, llm.lastPrompt, "What is photosynthesis?")
	assert.Contains(t, llm.lastPrompt, "educational assistant")

	// Both sides of the turn are persisted.
	require.Len(t, db.messages, 2)
	assert.Equal(t, "user", db.messages[0].Role)
	assert.Equal(t, "assistant", db.messages[1].Role)
}

func TestChatQueryEmptyContextUsesCannotAccessPrompt(t *testing.T) {
	db := newFakeDB()
	llm := &fakeLLM{reply: "Sorry, I cannot access your documents."}
	h := newChatHandler(db, llm)

	rec := httptest.NewRecorder()
	h.Query(rec, authedRequest(http.MethodPost, "/api/chat", map[string]any{
		"message":    "What is in my notes?",
		"notebookId": "nb1",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, llm.lastPrompt, "cannot access the document content")
	assert.NotContains(t, llm.lastPrompt, "educational assistant")
}

func TestChatQueryValidation(t *testing.T) {
	h := newChatHandler(newFakeDB(), &fakeLLM{})

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing message", map[string]any{"notebookId": "nb1"}},
		{"missing notebook", map[string]any{"message": "hello"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Query(rec, authedRequest(http.MethodPost, "/api/chat", tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatHistoryScopedToNotebook(t *testing.T) {
	db := newFakeDB()
	db.messages = []models.ChatMessage{
		{ID: "m1", NotebookID: "nb1", UserID: "alice", Role: "user", Content: "hi"},
		{ID: "m2", NotebookID: "nb2", UserID: "alice", Role: "user", Content: "other notebook"},
		{ID: "m3", NotebookID: "nb1", UserID: "bob", Role: "user", Content: "other user"},
	}
	h := newChatHandler(db, &fakeLLM{})

	rec := httptest.NewRecorder()
	h.History(rec, authedRequest(http.MethodGet, "/api/chat/history?notebookId=nb1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "m1", resp.Messages[0].ID)
}
