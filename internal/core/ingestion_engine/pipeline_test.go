package ingestion_engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
)

// fakeDB records pipeline persistence calls. Embedding core.DbClient keeps the
// mock small; any method the pipeline should never touch panics on nil.
type fakeDB struct {
	core.DbClient

	mu            sync.Mutex
	insertedRows  []models.DocumentChunk
	finalizeErr   error
	statusUpdates []string
	readyPages    int
	readyCalled   bool
}

// InsertChunksAndMarkReady mirrors the real client's atomicity: on error
// nothing is recorded, on success the rows and the ready flip land together.
func (f *fakeDB) InsertChunksAndMarkReady(_ context.Context, _ string, pageCount int, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.insertedRows = append(f.insertedRows, chunks...)
	f.readyCalled = true
	f.readyPages = pageCount
	return nil
}

func (f *fakeDB) UpdateDocumentStatus(_ context.Context, _, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates = append(f.statusUpdates, status)
	return nil
}

type fakeExtractor struct {
	pages []string
	err   error
}

func (f *fakeExtractor) ExtractPages(_ []byte) ([]string, error) {
	return f.pages, f.err
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	// failOnCall makes the nth EmbedTexts call (1-based) fail; 0 disables.
	failOnCall int
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.failOnCall != 0 && call == f.failOnCall {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		var first float32
		if len(texts[i]) > 0 {
			first = float32(texts[i][0])
		}
		out[i] = []float32{float32(len(texts[i])), first}
	}
	return out, nil
}

func newTestPipeline(db *fakeDB, ext core.PageExtractor, emb core.EmbeddingProvider, cfg IngestConfig) *Pipeline {
	return NewPipeline(db, ext, emb, cfg, zap.NewNop())
}

func testDoc() *models.Document {
	return &models.Document{ID: "doc-1", NotebookID: "nb-1", UserID: "u-1", Status: models.StatusProcessing}
}

func TestPipelineHappyPath(t *testing.T) {
	// Page 1: 3000 chars -> windows at 0, 1300, 2600 (400-char tail kept).
	// Page 2: 100 chars -> one short window.
	db := &fakeDB{}
	ext := &fakeExtractor{pages: []string{
		strings.Repeat("a", 3000),
		strings.Repeat("b", 100),
	}}
	p := newTestPipeline(db, ext, &fakeEmbedder{}, IngestConfig{ChunkSize: 1500, ChunkOverlap: 200, EmbedBatchSize: 16})

	res, err := p.Run(context.Background(), testDoc(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PageCount)
	assert.Equal(t, 4, res.ChunksCreated)

	require.Len(t, db.insertedRows, 4)
	assert.True(t, db.readyCalled)
	assert.Equal(t, 2, db.readyPages)
	assert.Empty(t, db.statusUpdates, "no error status on success")

	// Page numbers are 1-based, chunk index restarts per page.
	assert.Equal(t, 1, db.insertedRows[0].PageNumber)
	assert.Equal(t, 0, db.insertedRows[0].ChunkIndex)
	assert.Equal(t, 1, db.insertedRows[2].PageNumber)
	assert.Equal(t, 2, db.insertedRows[2].ChunkIndex)
	assert.Equal(t, 2, db.insertedRows[3].PageNumber)
	assert.Equal(t, 0, db.insertedRows[3].ChunkIndex)

	for _, row := range db.insertedRows {
		assert.NotEmpty(t, row.ID)
		assert.Equal(t, "doc-1", row.DocumentID)
		assert.NotEmpty(t, row.Embedding)
	}
}

func TestPipelineEmbeddingFailureIsAllOrNothing(t *testing.T) {
	// 5 chunks with batch size 1: the third embedding call fails, and no chunk
	// row may be persisted.
	db := &fakeDB{}
	ext := &fakeExtractor{pages: []string{strings.Repeat("c", 500)}}
	emb := &fakeEmbedder{failOnCall: 3}
	p := newTestPipeline(db, ext, emb, IngestConfig{ChunkSize: 100, ChunkOverlap: 0, EmbedBatchSize: 1})

	_, err := p.Run(context.Background(), testDoc(), nil)
	var embedErr *core.EmbeddingError
	require.ErrorAs(t, err, &embedErr)

	assert.Empty(t, db.insertedRows, "failed run must persist zero chunks")
	assert.False(t, db.readyCalled)
	assert.Equal(t, []string{models.StatusError}, db.statusUpdates)
}

func TestPipelineNoUsableText(t *testing.T) {
	db := &fakeDB{}
	ext := &fakeExtractor{pages: []string{"", "   ", "too short"}}
	p := newTestPipeline(db, ext, &fakeEmbedder{}, IngestConfig{ChunkSize: 1500, ChunkOverlap: 200, EmbedBatchSize: 16})

	_, err := p.Run(context.Background(), testDoc(), nil)
	var extractErr *core.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, []string{models.StatusError}, db.statusUpdates)
	assert.Empty(t, db.insertedRows)
}

func TestPipelineExtractorFailure(t *testing.T) {
	db := &fakeDB{}
	ext := &fakeExtractor{err: &core.ExtractionError{Err: errors.New("malformed pdf")}}
	p := newTestPipeline(db, ext, &fakeEmbedder{}, IngestConfig{ChunkSize: 1500, ChunkOverlap: 200, EmbedBatchSize: 16})

	_, err := p.Run(context.Background(), testDoc(), nil)
	require.Error(t, err)
	assert.Equal(t, []string{models.StatusError}, db.statusUpdates)
}

func TestPipelineFinalizeFailureLeavesNoChunks(t *testing.T) {
	// A failed finalize (insert or ready flip, e.g. the request context
	// cancelling right after embedding) must leave the document in error with
	// zero chunk rows, never chunks on a non-ready document.
	db := &fakeDB{finalizeErr: errors.New("connection reset")}
	ext := &fakeExtractor{pages: []string{strings.Repeat("d", 200)}}
	p := newTestPipeline(db, ext, &fakeEmbedder{}, IngestConfig{ChunkSize: 1500, ChunkOverlap: 200, EmbedBatchSize: 16})

	_, err := p.Run(context.Background(), testDoc(), nil)
	require.Error(t, err)
	assert.False(t, db.readyCalled)
	assert.Empty(t, db.insertedRows, "failed finalize must persist zero chunks")
	assert.Equal(t, []string{models.StatusError}, db.statusUpdates)
}

func TestPipelineEmbeddingOrderPreserved(t *testing.T) {
	// Many small batches run concurrently; vectors must land at their source
	// offsets. The fake embedder encodes each text's first byte, and every
	// chunk here starts with a distinct letter.
	db := &fakeDB{}
	pageText := ""
	for i := 0; i < 12; i++ {
		pageText += strings.Repeat(string(rune('a'+i)), 100)
	}
	ext := &fakeExtractor{pages: []string{pageText}}
	p := newTestPipeline(db, ext, &fakeEmbedder{}, IngestConfig{ChunkSize: 100, ChunkOverlap: 0, EmbedBatchSize: 1})

	res, err := p.Run(context.Background(), testDoc(), nil)
	require.NoError(t, err)
	require.Equal(t, 12, res.ChunksCreated)

	for i, row := range db.insertedRows {
		assert.Equal(t, i, row.ChunkIndex)
		require.Len(t, row.Embedding, 2)
		assert.Equal(t, float32(row.Content[0]), row.Embedding[1],
			"vector for chunk %d does not match its content", i)
	}
}
