// internal/audit/indexer.go

// Package audit records verification outcomes in Elasticsearch.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"subscription-workers/internal/common/logger"
)

// Event is one verification outcome as stored in the audit index.
type Event struct {
	EventID     string    `json:"eventId"`
	FranchiseID string    `json:"franchiseId"`
	UserID      string    `json:"userId,omitempty"`
	Backend     string    `json:"backend"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	CacheHit    bool      `json:"cacheHit"`
	DurationMs  int64     `json:"durationMs"`
	Timestamp   time.Time `json:"timestamp"`
}

// Recorder accepts verification outcome events. Implementations must never
// fail the caller; auditing is strictly best effort.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Indexer writes events into one Elasticsearch index. Failures are logged and
// swallowed; a verification verdict never depends on the audit trail.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log,
	}
}

func (i *Indexer) Record(ctx context.Context, event Event) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	docJSON, err := json.Marshal(event)
	if err != nil {
		i.logger.Warn("failed to marshal audit event", map[string]interface{}{
			"eventId": event.EventID,
			"error":   err.Error(),
		})
		return
	}

	res, err := i.es.Index(
		i.index,
		strings.NewReader(string(docJSON)),
		i.es.Index.WithDocumentID(event.EventID),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		i.logger.Warn("failed to index audit event", map[string]interface{}{
			"eventId": event.EventID,
			"index":   i.index,
			"error":   err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Warn("audit index responded with error", map[string]interface{}{
			"eventId": event.EventID,
			"index":   i.index,
			"status":  res.Status(),
		})
	}
}

// NopRecorder discards events. Used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event Event) {}
