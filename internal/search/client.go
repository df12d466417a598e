// Package search keeps an optional Elasticsearch index of the book catalog.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"bookshare_backend/internal/config"
)

// zapTransportLogger adapts zap to elastictransport.Logger.
type zapTransportLogger struct {
	logger *zap.Logger
}

var _ elastictransport.Logger = (*zapTransportLogger)(nil)

func (l *zapTransportLogger) LogRoundTrip(req *http.Request, res *http.Response, err error, _ time.Time, dur time.Duration) error {
	var statusCode int
	if res != nil {
		statusCode = res.StatusCode
	}
	l.logger.Debug("Elasticsearch round trip",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", statusCode),
		zap.Duration("duration", dur),
		zap.Error(err),
	)
	return nil
}

func (l *zapTransportLogger) RequestBodyEnabled() bool  { return false }
func (l *zapTransportLogger) ResponseBodyEnabled() bool { return false }

// NewClient connects to the configured cluster and checks it answers.
func NewClient(cfg *config.Config, logger *zap.Logger) (*elasticsearch.Client, error) {
	if cfg.ElasticsearchURL == "" {
		return nil, fmt.Errorf("ELASTICSEARCH_URL is not configured")
	}

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.ElasticsearchURL},
		Logger:        &zapTransportLogger{logger: logger.Named("elasticsearch_client")},
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
		MaxRetries:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}

	res, err := esClient.Info()
	if err != nil {
		return nil, fmt.Errorf("esClient.Info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("ping", res)
	}

	logger.Info("Elasticsearch client connected", zap.String("url", cfg.ElasticsearchURL), zap.String("es_version", elasticsearch.Version))
	return esClient, nil
}

// responseError turns an error response into a Go error carrying the
// server's reason when one can be decoded.
func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Reason != "" {
		return fmt.Errorf("elasticsearch %s: %s: %s: %s", op, res.Status(), e.Error.Type, e.Error.Reason)
	}
	return fmt.Errorf("elasticsearch %s: %s", op, res.Status())
}
