package models

import (
	"encoding/json"
	"time"
)

// Document processing states. A document is created in StatusProcessing and is
// moved to exactly one terminal state per upload attempt.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusError      = "error"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Notebook is a named collection of documents belonging to one user. It carries
// no behaviour of its own; it is the scoping key for documents, chat history
// and quiz attempts.
type Notebook struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Document represents one uploaded PDF file and its processing state.
// ContentText is a legacy column: older rows carry the full extracted text
// there instead of per-page chunks, and retrieval falls back to it when a
// document has no chunk rows.
type Document struct {
	ID          string    `db:"id" json:"id"`
	NotebookID  string    `db:"notebook_id" json:"notebook_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Filename    string    `db:"filename" json:"filename"`
	Status      string    `db:"status" json:"status"`
	StoragePath string    `db:"storage_path" json:"storage_path,omitempty"`
	ContentText string    `db:"content_text" json:"-"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	PageCount   int       `db:"page_count" json:"page_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentChunk is one contiguous, possibly overlapping slice of a document
// page, plus its embedding. PageNumber is 1-based and matches source page
// order; ChunkIndex is 0-based and contiguous within a page. Chunks are
// written in bulk after a successful ingestion run and never updated in place.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	PageNumber int       `db:"page_number" json:"page_number"`
	ChunkIndex int       `db:"chunk_index" json:"chunk_index"`
	Content    string    `db:"content" json:"content"`
	Embedding  []float32 `db:"embedding" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is one turn of notebook chat history, owned by the server.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	NotebookID string    `db:"notebook_id" json:"notebook_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Role       string    `db:"role" json:"role"` // "user" or "assistant"
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// QuizQuestion is one generated quiz question. Options is only present for
// multiple-choice questions.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"` // mcq | saq | laq
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty"` // easy | medium | hard
}

// QuizAttempt is an append-only record of one completed quiz, including the
// generated questions and the user's answers as raw JSON.
type QuizAttempt struct {
	ID             string          `db:"id" json:"id"`
	NotebookID     string          `db:"notebook_id" json:"notebook_id"`
	UserID         string          `db:"user_id" json:"user_id"`
	DocumentID     string          `db:"document_id" json:"document_id,omitempty"`
	Topic          string          `db:"topic" json:"topic"`
	QuizType       string          `db:"quiz_type" json:"quiz_type"`
	Questions      json.RawMessage `db:"questions" json:"questions"`
	Answers        json.RawMessage `db:"answers" json:"answers"`
	Score          float64         `db:"score" json:"score"`
	TotalQuestions int             `db:"total_questions" json:"total_questions"`
	CorrectAnswers int             `db:"correct_answers" json:"correct_answers"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
