package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// BooksIndexName is the catalog index.
const BooksIndexName = "books"

func booksMapping() (string, error) {
	text := map[string]interface{}{"type": "text"}
	keyword := map[string]interface{}{"type": "keyword"}
	date := map[string]interface{}{"type": "date"}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":       text,
				"author":      text,
				"genre":       text,
				"genre_key":   keyword,
				"description": text,
				"isbn":        keyword,
				"owner_id":    keyword,
				"status":      keyword,
				"created_at":  date,
				"updated_at":  date,
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling books mapping to JSON: %w", err)
	}
	return string(b), nil
}

// EnsureBooksIndex creates the books index with its mapping unless it exists.
func EnsureBooksIndex(ctx context.Context, client *elasticsearch.Client, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{BooksIndexName}}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("error checking if books index exists: %w", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Debug("Books index already exists")
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if books index exists: status %s", res.Status())
	}

	mapping, err := booksMapping()
	if err != nil {
		return err
	}
	createRes, err := esapi.IndicesCreateRequest{Index: BooksIndexName, Body: strings.NewReader(mapping)}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("error creating books index: %w", err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return responseError("create index", createRes)
	}

	log.Info("Books index created", zap.String("index_name", BooksIndexName))
	return nil
}
