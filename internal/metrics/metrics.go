package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var documentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_ingested_total",
	Help: "Ingestion runs by terminal document status",
}, []string{"status"})

var chunksCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "document_chunks_created_total",
	Help: "Chunk rows persisted by successful ingestion runs",
})

func RecordIngestion(status string, chunkCount int) {
	documentsIngested.WithLabelValues(status).Inc()
	if chunkCount > 0 {
		chunksCreated.Add(float64(chunkCount))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument counts every request by route pattern and response status. The
// chi pattern (e.g. /api/documents/{id}) keeps the label set bounded; raw
// paths would mint a label value per document id.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		httpRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
	})
}
