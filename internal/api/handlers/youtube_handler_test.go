package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/recommend"
)

func TestYouTubeRecommendByTopic(t *testing.T) {
	llm := &fakeLLM{reply: `{"videos": [
		{"title": "Intro to Calculus", "search_query": "calculus basics explained"}
	]}`}
	h := NewYouTubeHandler(llm, false, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Recommend(rec, authedRequest(http.MethodPost, "/api/youtube", map[string]any{
		"topic": "calculus",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool              `json:"success"`
		Videos  []recommend.Video `json:"videos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Videos, 1)
	assert.Equal(t, "Intro to Calculus", resp.Videos[0].Title)

	assert.Contains(t, llm.lastPrompt, `For the topic "calculus"`)
}

func TestYouTubeRecommendByDocumentContent(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n" + `{"videos": [
		{"title": "Cell Biology Crash Course", "search_query": "cell biology crash course"}
	]}` + "\n```"}
	h := NewYouTubeHandler(llm, false, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Recommend(rec, authedRequest(http.MethodPost, "/api/youtube", map[string]any{
		"documentContent": "The cell is the basic structural unit of all organisms.",
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, llm.lastPrompt, "Document Content:")
	assert.Contains(t, llm.lastPrompt, "basic structural unit")
}

func TestYouTubeRecommendValidation(t *testing.T) {
	h := NewYouTubeHandler(&fakeLLM{}, false, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Recommend(rec, authedRequest(http.MethodPost, "/api/youtube", map[string]any{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestYouTubeRecommendUnparseableOutput(t *testing.T) {
	// Unlike quiz generation there are no fallback videos; a bad reply is an
	// error response.
	h := NewYouTubeHandler(&fakeLLM{reply: "I cannot produce JSON."}, false, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Recommend(rec, authedRequest(http.MethodPost, "/api/youtube", map[string]any{
		"topic": "calculus",
	}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
