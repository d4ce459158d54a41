package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/danielokoye-py/Notestack/internal/config"
	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// ---- users ----

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ---- notebooks ----

func (c *DatabaseClient) CreateNotebook(ctx context.Context, nb *models.Notebook) error {
	if nb == nil {
		return errors.New("nil notebook")
	}
	const q = `
		INSERT INTO notebooks (id, user_id, title, description, created_at)
		VALUES ($1, $2, $3, $4, now())
	`
	_, err := c.db.ExecContext(ctx, q, nb.ID, nb.UserID, nb.Title, nb.Description)
	return err
}

func (c *DatabaseClient) GetNotebookByID(ctx context.Context, id, userID string) (*models.Notebook, error) {
	const q = `
		SELECT id, user_id, title, description, created_at
		FROM notebooks WHERE id = $1 AND user_id = $2
	`
	var nb models.Notebook
	err := c.db.QueryRowContext(ctx, q, id, userID).Scan(
		&nb.ID, &nb.UserID, &nb.Title, &nb.Description, &nb.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &nb, nil
}

func (c *DatabaseClient) ListNotebooksByUser(ctx context.Context, userID string) ([]models.Notebook, error) {
	const q = `
		SELECT id, user_id, title, description, created_at
		FROM notebooks WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notebook
	for rows.Next() {
		var nb models.Notebook
		if err := rows.Scan(&nb.ID, &nb.UserID, &nb.Title, &nb.Description, &nb.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteNotebook(ctx context.Context, id, userID string) error {
	// Documents and their chunks go with it via ON DELETE CASCADE.
	const q = `DELETE FROM notebooks WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ---- documents ----

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, notebook_id, user_id, filename, status, storage_path, content_text, file_size, page_count, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.NotebookID, doc.UserID, doc.Filename, doc.Status,
		doc.StoragePath, doc.ContentText, doc.FileSize, doc.PageCount)
	return err
}

const documentColumns = `id, notebook_id, user_id, filename, status, storage_path,
	COALESCE(content_text, ''), file_size, page_count, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.NotebookID, &d.UserID, &d.Filename, &d.Status,
		&d.StoragePath, &d.ContentText, &d.FileSize, &d.PageCount,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(c.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return doc, err
}

func (c *DatabaseClient) ListDocumentsByNotebook(ctx context.Context, notebookID, userID string) ([]models.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE notebook_id = $1 AND user_id = $2
		ORDER BY created_at DESC`
	return c.queryDocuments(ctx, q, notebookID, userID)
}

func (c *DatabaseClient) GetDocumentsByIDs(ctx context.Context, ids []string, userID, notebookID string) ([]models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// Ownership and notebook scoping happen here: ids that do not match are
	// simply absent from the result. array_position keeps the caller's order.
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE id = ANY($1) AND user_id = $2 AND notebook_id = $3
		ORDER BY array_position($1, id)`
	return c.queryDocuments(ctx, q, ids, userID, notebookID)
}

func (c *DatabaseClient) ListRecentDocuments(ctx context.Context, notebookID, userID string, limit int) ([]models.Document, error) {
	q := `SELECT ` + documentColumns + `
		FROM documents
		WHERE notebook_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3`
	return c.queryDocuments(ctx, q, notebookID, userID, limit)
}

func (c *DatabaseClient) queryDocuments(ctx context.Context, q string, args ...any) ([]models.Document, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) DeleteDocument(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM documents WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ---- document chunks ----

// InsertChunksAndMarkReady inserts the run's chunks and flips the document to
// ready in one transaction. A failure at any point rolls everything back, so
// the chunk rows and the ready status always land together.
func (c *DatabaseClient) InsertChunksAndMarkReady(ctx context.Context, documentID string, pageCount int, chunks []models.DocumentChunk) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const insertQ = `
		INSERT INTO document_chunks
			(id, document_id, page_number, chunk_index, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`
	stmt, err := tx.PrepareContext(ctx, insertQ)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.PageNumber, ch.ChunkIndex, ch.Content, vec,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	const readyQ = `
		UPDATE documents
		SET status = $2, page_count = $3, updated_at = now()
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, readyQ, documentID, models.StatusReady, pageCount)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("document not found: %s", documentID)
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.DocumentChunk, error) {
	const q = `
		SELECT id, document_id, page_number, chunk_index, content, embedding, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY page_number ASC, chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentChunk
	for rows.Next() {
		var (
			ch  models.DocumentChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.PageNumber, &ch.ChunkIndex, &ch.Content, &emb, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CountChunksByDocument(ctx context.Context, documentID string) (int, error) {
	const q = `SELECT count(*) FROM document_chunks WHERE document_id = $1`
	var n int
	if err := c.db.QueryRowContext(ctx, q, documentID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ---- chat history ----

func (c *DatabaseClient) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil chat message")
	}
	const q = `
		INSERT INTO chat_messages (id, notebook_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := c.db.ExecContext(ctx, q, msg.ID, msg.NotebookID, msg.UserID, msg.Role, msg.Content)
	return err
}

func (c *DatabaseClient) ListChatMessages(ctx context.Context, notebookID, userID string) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, notebook_id, user_id, role, content, created_at
		FROM chat_messages
		WHERE notebook_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, notebookID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.NotebookID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- quiz attempts ----

func (c *DatabaseClient) SaveQuizAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt == nil {
		return errors.New("nil quiz attempt")
	}
	const q = `
		INSERT INTO quiz_attempts
			(id, notebook_id, user_id, document_id, topic, quiz_type, questions, answers,
			 score, total_questions, correct_answers, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, now())
	`
	_, err := c.db.ExecContext(ctx, q,
		attempt.ID, attempt.NotebookID, attempt.UserID, attempt.DocumentID,
		attempt.Topic, attempt.QuizType, []byte(attempt.Questions), []byte(attempt.Answers),
		attempt.Score, attempt.TotalQuestions, attempt.CorrectAnswers)
	return err
}

func (c *DatabaseClient) ListQuizAttempts(ctx context.Context, notebookID, userID string) ([]models.QuizAttempt, error) {
	const q = `
		SELECT id, notebook_id, user_id, COALESCE(document_id, ''), topic, quiz_type,
			questions, answers, score, total_questions, correct_answers, created_at
		FROM quiz_attempts
		WHERE notebook_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, notebookID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizAttempt
	for rows.Next() {
		var (
			a         models.QuizAttempt
			questions []byte
			answers   []byte
		)
		if err := rows.Scan(
			&a.ID, &a.NotebookID, &a.UserID, &a.DocumentID, &a.Topic, &a.QuizType,
			&questions, &answers, &a.Score, &a.TotalQuestions, &a.CorrectAnswers, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Questions = questions
		a.Answers = answers
		out = append(out, a)
	}
	return out, rows.Err()
}
