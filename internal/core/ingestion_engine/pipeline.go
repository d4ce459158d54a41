package ingestion_engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielokoye-py/Notestack/internal/core"
	"github.com/danielokoye-py/Notestack/internal/models"
)

// maxParallelEmbedBatches bounds concurrent embedding API calls per ingestion
// run.
const maxParallelEmbedBatches = 4

// IngestConfig tunes the pipeline.
//
// ChunkSize / ChunkOverlap: character window parameters for Chunk.
// EmbedBatchSize: how many chunk texts go into one embedding request.
type IngestConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
}

// Result is what the upload handler reports back to the client.
type Result struct {
	PageCount     int
	ChunksCreated int
}

// Pipeline orchestrates extract -> chunk -> embed -> persist for one uploaded
// document. The document row already exists with status=processing when Run is
// called; Run guarantees exactly one terminal transition (ready or error) per
// attempt and never leaves chunk rows behind on failure.
type Pipeline struct {
	db        core.DbClient
	extractor core.PageExtractor
	embedder  core.EmbeddingProvider
	cfg       IngestConfig
	log       *zap.Logger
}

func NewPipeline(db core.DbClient, extractor core.PageExtractor, embedder core.EmbeddingProvider, cfg IngestConfig, log *zap.Logger) *Pipeline {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 16
	}
	return &Pipeline{db: db, extractor: extractor, embedder: embedder, cfg: cfg, log: log}
}

// Run processes one document synchronously and returns the page and chunk
// counts. On any failure the document is flipped to status=error before the
// error is returned; the status write uses a detached context so a client
// disconnect cannot strand the document in processing.
func (p *Pipeline) Run(ctx context.Context, doc *models.Document, data []byte) (*Result, error) {
	res, err := p.run(ctx, doc, data)
	if err != nil {
		p.log.Error("ingestion failed",
			zap.String("operation", "ingest"),
			zap.String("document_id", doc.ID),
			zap.Error(err))
		flipCtx := context.WithoutCancel(ctx)
		if serr := p.db.UpdateDocumentStatus(flipCtx, doc.ID, models.StatusError); serr != nil {
			p.log.Error("failed to mark document as error",
				zap.String("document_id", doc.ID),
				zap.Error(serr))
		}
		return nil, err
	}

	p.log.Info("ingestion complete",
		zap.String("document_id", doc.ID),
		zap.Int("pages", res.PageCount),
		zap.Int("chunks", res.ChunksCreated))
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, doc *models.Document, data []byte) (*Result, error) {
	pages, err := p.extractor.ExtractPages(data)
	if err != nil {
		return nil, err
	}

	items, err := p.chunkPages(pages)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &core.ExtractionError{Err: errors.New("no usable text extracted")}
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = items[i].Content
	}

	vecs, err := p.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	rows := make([]models.DocumentChunk, len(items))
	for i := range items {
		rows[i] = models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			PageNumber: items[i].PageNumber,
			ChunkIndex: items[i].ChunkIndex,
			Content:    items[i].Content,
			Embedding:  vecs[i],
		}
	}

	// The run's result becomes visible only here, in one transaction: the
	// chunk rows and the ready flip land together or not at all, so a failed
	// run can never leave chunks behind on an error document.
	if err := p.db.InsertChunksAndMarkReady(ctx, doc.ID, len(pages), rows); err != nil {
		return nil, fmt.Errorf("persist ingestion result: %w", err)
	}

	return &Result{PageCount: len(pages), ChunksCreated: len(rows)}, nil
}

// chunkPages windows every page and assigns (page number, chunk index) pairs.
// Chunk index restarts at 0 on each page and is contiguous within it.
func (p *Pipeline) chunkPages(pages []string) ([]models.DocumentChunk, error) {
	var items []models.DocumentChunk
	for pageIdx, pageText := range pages {
		windows, err := Chunk(pageText, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return nil, err
		}
		for chunkIdx, w := range windows {
			items = append(items, models.DocumentChunk{
				PageNumber: pageIdx + 1,
				ChunkIndex: chunkIdx,
				Content:    w,
			})
		}
	}
	return items, nil
}

// embedAll embeds texts in batches. Batches run concurrently but each one
// writes its vectors into the output slice at its source offset, so the
// returned order always matches the input order regardless of completion
// order.
func (p *Pipeline) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelEmbedBatches)

	for start := 0; start < len(texts); start += p.cfg.EmbedBatchSize {
		end := start + p.cfg.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		g.Go(func() error {
			vecs, err := p.embedder.EmbedTexts(gctx, texts[start:end])
			if err != nil {
				return &core.EmbeddingError{Err: err}
			}
			if len(vecs) != end-start {
				return &core.EmbeddingError{
					Err: fmt.Errorf("got %d vectors for %d texts", len(vecs), end-start),
				}
			}
			copy(out[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
