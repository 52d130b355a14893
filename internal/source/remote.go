package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ridership.subwaydash.org/internal/logging"
	"ridership.subwaydash.org/internal/ridership"
	"ridership.subwaydash.org/internal/tabular"
)

const maxRemoteSize = 512 * 1024 * 1024

// Remote fetches rows from a tabular-data HTTP endpoint. JSON bodies are
// expected unless the endpoint serves CSV.
type Remote struct {
	URL      string
	RowLimit int
	AppToken string
	Client   *http.Client
	Logger   *slog.Logger
}

// NewRemote builds a Remote with a client tuned for large downloads.
func NewRemote(endpoint string, rowLimit int, appToken string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Remote{
		URL:      endpoint,
		RowLimit: rowLimit,
		AppToken: appToken,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

func (r *Remote) Name() string { return "remote:" + r.URL }

// RequestURL returns the endpoint with the row cap applied.
func (r *Remote) RequestURL() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("invalid ridership URL: %w", err)
	}
	if r.RowLimit > 0 {
		q := u.Query()
		q.Set("$limit", strconv.Itoa(r.RowLimit))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (r *Remote) Load(ctx context.Context) (ridership.RawBatch, error) {
	logger := logging.Component(r.Logger, "remote_loader")

	target, err := r.RequestURL()
	if err != nil {
		return ridership.RawBatch{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ridership.RawBatch{}, fmt.Errorf("error creating ridership request: %w", err)
	}
	if r.AppToken != "" {
		req.Header.Set("X-App-Token", r.AppToken)
	}
	req.Header.Set("Accept", "application/json, text/csv")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return ridership.RawBatch{}, fmt.Errorf("error downloading ridership data: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, logger, "http_response_body")

	if resp.StatusCode != http.StatusOK {
		return ridership.RawBatch{}, fmt.Errorf("failed to download ridership data: received HTTP status %s", resp.Status)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return ridership.RawBatch{}, fmt.Errorf("error reading ridership data: %w", err)
	}
	if len(b) > maxRemoteSize {
		return ridership.RawBatch{}, fmt.Errorf("ridership response exceeds size limit of %d bytes", maxRemoteSize)
	}

	var (
		batch  ridership.RawBatch
		report tabular.ConvertReport
	)
	if isCSV(resp.Header.Get("Content-Type"), r.URL) {
		batch, report, err = tabular.ReadCSV(bytes.NewReader(b))
	} else {
		batch, report, err = tabular.ReadJSON(bytes.NewReader(b))
	}
	if err != nil {
		return ridership.RawBatch{}, err
	}
	if err := batch.Validate(); err != nil {
		return ridership.RawBatch{}, fmt.Errorf("unusable ridership response: %w", err)
	}
	if report.Skipped > 0 {
		logging.LogOperation(logger, "remote_rows_skipped", slog.Int("skipped", report.Skipped))
	}
	return batch, nil
}

func isCSV(contentType, endpoint string) bool {
	if strings.Contains(strings.ToLower(contentType), "csv") {
		return true
	}
	if u, err := url.Parse(endpoint); err == nil {
		return strings.HasSuffix(strings.ToLower(u.Path), ".csv")
	}
	return false
}
