package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Source fetches a feed URL and returns its title and items in feed order.
type Source interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

type HTTPSource struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewHTTPSource(httpClient *http.Client, parser *Parser, userAgent string) *HTTPSource {
	return &HTTPSource{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, url string) (*Document, error) {
	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := s.parser.Run(data)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"url":   url,
		"title": doc.Title,
		"items": len(doc.Items),
	}).Debug("Feed fetched")

	return doc, nil
}

func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
