package core

import (
	"context"
	"io"

	"github.com/danielokoye-py/Notestack/internal/models"
)

// DbClient defines all persistence operations the handlers and the ingestion
// pipeline need. It abstracts Postgres/pgvector so higher layers never depend
// on a specific DB and tests can substitute fakes.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateNotebook(ctx context.Context, nb *models.Notebook) error
	GetNotebookByID(ctx context.Context, id, userID string) (*models.Notebook, error)
	ListNotebooksByUser(ctx context.Context, userID string) ([]models.Notebook, error)
	DeleteNotebook(ctx context.Context, id, userID string) error

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocumentsByNotebook(ctx context.Context, notebookID, userID string) ([]models.Document, error)
	// GetDocumentsByIDs returns only documents that exist AND belong to the
	// given user and notebook, preserving the order of ids; unknown or foreign
	// ids are silently excluded.
	GetDocumentsByIDs(ctx context.Context, ids []string, userID, notebookID string) ([]models.Document, error)
	// ListRecentDocuments returns the most recently created documents in a
	// notebook, capped at limit.
	ListRecentDocuments(ctx context.Context, notebookID, userID string, limit int) ([]models.Document, error)
	UpdateDocumentStatus(ctx context.Context, id, status string) error
	DeleteDocument(ctx context.Context, id, userID string) error

	// InsertChunksAndMarkReady writes every chunk row and flips the document to
	// ready with its page count in a single transaction: either the whole
	// ingestion result becomes visible or none of it does, so a document can
	// never hold chunks without being ready.
	InsertChunksAndMarkReady(ctx context.Context, documentID string, pageCount int, chunks []models.DocumentChunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error)
	CountChunksByDocument(ctx context.Context, documentID string) (int, error)

	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, notebookID, userID string) ([]models.ChatMessage, error)

	SaveQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	ListQuizAttempts(ctx context.Context, notebookID, userID string) ([]models.QuizAttempt, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage. It is
// abstract so AWS can be replaced with MinIO, GCP, etc.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}
