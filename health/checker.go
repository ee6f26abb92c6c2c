package health

import (
	"alistlauncher/models"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Status is the result of probing the service's landing page
type Status struct {
	URL        string
	StatusCode int
	Title      string
	Latency    time.Duration
}

// Summary renders the status for a notification
func (s *Status) Summary() string {
	title := s.Title
	if title == "" {
		title = "untitled page"
	}
	return fmt.Sprintf("%s answered %d (%s) in %s", s.URL, s.StatusCode, title, s.Latency.Round(time.Millisecond))
}

// Checker probes the local file server over HTTP
type Checker struct {
	client *http.Client
}

// NewChecker creates a checker with a short timeout
func NewChecker() *Checker {
	return &Checker{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Check fetches http://host:port/ and extracts the page title
func (c *Checker) Check(ctx context.Context, host string, port int) (*Status, error) {
	url := "http://" + models.FormatAddress(host, port) + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "alist-launcher")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("service at %s is not reachable: %w", url, err)
	}
	defer resp.Body.Close()

	status := &Status{
		URL:        url,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}

	if resp.StatusCode >= 500 {
		return status, fmt.Errorf("service at %s returned status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return status, nil
	}
	status.Title = strings.TrimSpace(doc.Find("title").First().Text())

	return status, nil
}
