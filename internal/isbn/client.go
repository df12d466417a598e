package isbn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound means the provider has no record for the ISBN.
var ErrNotFound = errors.New("isbn not found")

// BookInfo is the best-effort metadata used to pre-fill a new book.
type BookInfo struct {
	ISBN        string   `json:"isbn"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	PageCount   *int     `json:"page_count,omitempty"`
	PublishYear *int     `json:"publish_year,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// Provider fetches metadata for a normalized ISBN.
type Provider interface {
	Fetch(ctx context.Context, isbn string) (*BookInfo, error)
}

// OpenLibraryClient queries the Open Library books API.
type OpenLibraryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenLibraryClient creates a client with its own pooled transport.
func NewOpenLibraryClient(baseURL string, timeout time.Duration) *OpenLibraryClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenLibraryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type openLibraryBook struct {
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle"`
	NumberOfPages int             `json:"number_of_pages"`
	PublishDate   string          `json:"publish_date"`
	Notes         json.RawMessage `json:"notes"`
	Authors       []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Fetch implements Provider.
func (c *OpenLibraryClient) Fetch(ctx context.Context, isbn string) (*BookInfo, error) {
	q := url.Values{}
	q.Set("bibkeys", "ISBN:"+isbn)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/books?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open library request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library returned %s", resp.Status)
	}

	var payload map[string]openLibraryBook
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open library response: %w", err)
	}
	book, ok := payload["ISBN:"+isbn]
	if !ok || book.Title == "" {
		return nil, ErrNotFound
	}

	info := &BookInfo{ISBN: isbn, Title: book.Title, Authors: []string{}}
	for _, a := range book.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			info.Authors = append(info.Authors, name)
		}
	}
	if book.NumberOfPages > 0 {
		n := book.NumberOfPages
		info.PageCount = &n
	}
	info.PublishYear = parseYear(book.PublishDate)
	info.Description = parseNotes(book.Notes)
	return info, nil
}

var yearPattern = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)

// parseYear extracts a year from free-form dates like "March 1965".
func parseYear(date string) *int {
	m := yearPattern.FindString(date)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

// parseNotes accepts both the plain string and the {"value": ...} forms.
func parseNotes(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var typed struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &typed); err != nil {
			return nil
		}
		s = typed.Value
	}
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
