package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bookshare_backend/internal/config"
	"bookshare_backend/internal/domain"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Indexer keeps the catalog index in step with the store and queries it.
type Indexer interface {
	// Enabled reports whether queries are served by the index.
	Enabled() bool
	IndexBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	// BulkIndex upserts books in one request and returns how many were accepted.
	BulkIndex(ctx context.Context, books []domain.Book) (int, error)
	// SearchBookIDs returns matching book IDs, best match first.
	SearchBookIDs(ctx context.Context, q string, limit int) ([]uuid.UUID, error)
}

// NewIndexer returns the Elasticsearch indexer when a URL is configured and
// reachable, and a no-op indexer otherwise.
func NewIndexer(cfg *config.Config, logger *zap.Logger) Indexer {
	if cfg.ElasticsearchURL == "" {
		logger.Info("Search index disabled; catalog search uses the store")
		return NoopIndexer{}
	}
	client, err := NewClient(cfg, logger)
	if err == nil {
		err = EnsureBooksIndex(context.Background(), client, logger)
	}
	if err != nil {
		logger.Warn("Search index unavailable; catalog search uses the store", zap.Error(err))
		return NoopIndexer{}
	}
	return NewESIndexer(client, logger)
}

// NoopIndexer is used when no index is configured.
type NoopIndexer struct{}

func (NoopIndexer) Enabled() bool                                { return false }
func (NoopIndexer) IndexBook(context.Context, *domain.Book) error { return nil }
func (NoopIndexer) DeleteBook(context.Context, uuid.UUID) error   { return nil }
func (NoopIndexer) BulkIndex(context.Context, []domain.Book) (int, error) {
	return 0, nil
}
func (NoopIndexer) SearchBookIDs(context.Context, string, int) ([]uuid.UUID, error) {
	return nil, nil
}

// ESIndexer is the Elasticsearch-backed Indexer.
type ESIndexer struct {
	client *elasticsearch.Client
	logger *zap.Logger
}

// NewESIndexer wraps a connected client.
func NewESIndexer(client *elasticsearch.Client, logger *zap.Logger) *ESIndexer {
	return &ESIndexer{client: client, logger: logger.Named("search")}
}

func (x *ESIndexer) Enabled() bool { return true }

// IndexBook upserts the book document.
func (x *ESIndexer) IndexBook(ctx context.Context, b *domain.Book) error {
	body, err := BookToDocument(b)
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      BooksIndexName,
		DocumentID: b.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("index book %s: %w", b.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteBook removes the book document. A missing document is not an error.
func (x *ESIndexer) DeleteBook(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{Index: BooksIndexName, DocumentID: id.String()}.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// BulkIndex sends one _bulk request. Item-level failures are logged and
// reported in the returned error after the accepted count.
func (x *ESIndexer) BulkIndex(ctx context.Context, books []domain.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	var body bytes.Buffer
	sent := 0
	for i := range books {
		doc, err := BookToDocument(&books[i])
		if err != nil {
			x.logger.Error("Failed to convert book to search document", zap.String("bookID", books[i].ID.String()), zap.Error(err))
			continue
		}
		fmt.Fprintf(&body, `{"index":{"_index":%q,"_id":%q}}`+"\n", BooksIndexName, books[i].ID.String())
		body.Write(doc)
		body.WriteByte('\n')
		sent++
	}
	if sent == 0 {
		return 0, fmt.Errorf("no indexable books in batch of %d", len(books))
	}

	res, err := esapi.BulkRequest{Body: &body, Refresh: "false"}.Do(ctx, x.client)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, responseError("bulk", res)
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string                 `json:"_id"`
				Status int                    `json:"status"`
				Error  map[string]interface{} `json:"error,omitempty"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}
	ok, failed := 0, len(books)-sent
	for _, item := range parsed.Items {
		if item.Index.Error != nil {
			x.logger.Error("Failed to index book in bulk batch",
				zap.String("bookID", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error))
			failed++
			continue
		}
		ok++
	}
	if failed > 0 {
		return ok, fmt.Errorf("%d of %d books failed to index", failed, len(books))
	}
	return ok, nil
}

// SearchBookIDs runs a prefix-tolerant multi-field match.
func (x *ESIndexer) SearchBookIDs(ctx context.Context, q string, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 50
	}
	query := map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"title^3", "author^2", "genre", "description", "isbn"},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{BooksIndexName}, Body: &buf}.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			x.logger.Warn("Skipping search hit with a non-UUID id", zap.String("id", h.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
