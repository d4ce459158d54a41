package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/recommend"
)

type YouTubeHandler struct {
	llm   core.LLMProvider
	isDev bool
	log   *zap.Logger
}

func NewYouTubeHandler(llm core.LLMProvider, isDev bool, log *zap.Logger) *YouTubeHandler {
	return &YouTubeHandler{llm: llm, isDev: isDev, log: log}
}

type youtubeRequest struct {
	Topic           string `json:"topic"`
	DocumentContent string `json:"documentContent"`
}

type youtubeResponse struct {
	Success bool              `json:"success"`
	Videos  []recommend.Video `json:"videos"`
}

// Recommend suggests YouTube videos for a topic or for pasted document
// content. The model only produces titles and search queries; no YouTube API
// is involved.
func (h *YouTubeHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req youtubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Topic == "" && req.DocumentContent == "" {
		writeError(w, http.StatusBadRequest, "topic or document content is required")
		return
	}

	prompt := recommend.BuildPrompt(req.Topic, req.DocumentContent)

	raw, err := h.llm.Generate(r.Context(), "", prompt)
	if err != nil {
		h.log.Error("video recommendation failed", zap.Error(err))
		writeTaxonomyError(w, err, "failed to generate video recommendations", h.isDev)
		return
	}

	videos, err := recommend.ParseVideos(raw)
	if err != nil {
		h.log.Warn("unparseable recommendation output", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate valid video recommendations")
		return
	}

	writeJSON(w, http.StatusOK, youtubeResponse{Success: true, Videos: videos})
}
