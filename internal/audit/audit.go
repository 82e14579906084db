// internal/audit/audit.go
//
// Routing decision audit trail in Elasticsearch. Every decision that assigns
// an area is indexed so ops can analyze routing quality offline (rule hit
// rates, clarification frequency, confidence distributions). Indexing is
// best-effort and never blocks or fails the conversation.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"guest-router/internal/common/logger"
	"guest-router/internal/models"
)

type Indexer struct {
	esClient *elasticsearch.Client
	index    string
	logger   logger.Logger
}

func NewIndexer(esClient *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		esClient: esClient,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// RecordDecision indexes one routing decision. Errors are logged only.
func (i *Indexer) RecordDecision(ctx context.Context, conversationID string, decision models.RoutingDecision) {
	doc := map[string]interface{}{
		"conversationId":    conversationID,
		"area":              decision.Area,
		"routingSource":     decision.Source,
		"routingReason":     decision.Reason,
		"routingConfidence": decision.Confidence,
		"routingVersion":    decision.Version,
		"recordedAt":        time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		i.logger.Warn("audit document marshal failed", map[string]interface{}{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req := esapi.IndexRequest{
		Index: i.index,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.esClient)
	if err != nil {
		i.logger.Warn("audit index request failed", map[string]interface{}{
			"error":          err.Error(),
			"conversationId": conversationID,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Warn("audit index rejected", map[string]interface{}{
			"status":         res.Status(),
			"conversationId": conversationID,
		})
	}
}

// Ensure verifies the audit index exists, creating it with a minimal mapping
// on first boot.
func (i *Indexer) Ensure(ctx context.Context) error {
	exists := esapi.IndicesExistsRequest{Index: []string{i.index}}
	res, err := exists.Do(ctx, i.esClient)
	if err != nil {
		return fmt.Errorf("check audit index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"conversationId":    {"type": "keyword"},
				"area":              {"type": "keyword"},
				"routingSource":     {"type": "keyword"},
				"routingReason":     {"type": "text"},
				"routingConfidence": {"type": "float"},
				"routingVersion":    {"type": "keyword"},
				"recordedAt":        {"type": "date"}
			}
		}
	}`

	create := esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  bytes.NewReader([]byte(mapping)),
	}
	res, err = create.Do(ctx, i.esClient)
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create audit index: %s", res.Status())
	}
	return nil
}
