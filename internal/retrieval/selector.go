package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
)

// DocContext is one document's contribution to a prompt.
type DocContext struct {
	DocumentID string
	Filename   string
	Content    string
}

// Selector picks which documents' text to hand to the generation step. It
// does no similarity search: either the caller names documents explicitly, or
// the most recently created documents in the notebook are used, capped to
// bound prompt size.
type Selector struct {
	db          core.DbClient
	maxFallback int
	log         *zap.Logger
}

func NewSelector(db core.DbClient, maxFallback int, log *zap.Logger) *Selector {
	if maxFallback <= 0 {
		maxFallback = 3
	}
	return &Selector{db: db, maxFallback: maxFallback, log: log}
}

// Select resolves the retrieval context for a chat or quiz request. Explicit
// ids are scoped to the requesting user and notebook in the query itself, so
// unknown or foreign ids silently drop out. With no ids, the newest documents
// in the notebook are used. No matching documents is an empty result, not an
// error: callers treat empty context as "cannot answer from documents".
func (s *Selector) Select(ctx context.Context, userID, notebookID string, documentIDs []string) ([]DocContext, error) {
	var (
		docs []models.Document
		err  error
	)
	if len(documentIDs) > 0 {
		docs, err = s.db.GetDocumentsByIDs(ctx, documentIDs, userID, notebookID)
	} else {
		docs, err = s.db.ListRecentDocuments(ctx, notebookID, userID, s.maxFallback)
	}
	if err != nil {
		return nil, err
	}

	out := make([]DocContext, 0, len(docs))
	for i := range docs {
		content, err := s.documentText(ctx, &docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, DocContext{
			DocumentID: docs[i].ID,
			Filename:   docs[i].Filename,
			Content:    content,
		})
	}
	return out, nil
}

// documentText assembles a document's full text from its chunks in (page,
// index) order. Documents ingested before chunking existed carry their text in
// the legacy content_text column instead.
func (s *Selector) documentText(ctx context.Context, doc *models.Document) (string, error) {
	chunks, err := s.db.GetChunksByDocument(ctx, doc.ID)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return doc.ContentText, nil
	}

	parts := make([]string, 0, len(chunks))
	for i := range chunks {
		parts = append(parts, chunks[i].Content)
	}
	return strings.Join(parts, "\n\n"), nil
}
