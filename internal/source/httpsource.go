package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tartampluch/weekgrid/internal/config"
)

// HTTPClient implements Client against a JSON calendar API:
//
//	GET {base}/calendars                           -> []Descriptor
//	GET {base}/calendars/{id}/events?start=&end=   -> []RawEvent
//
// Range bounds are sent in RFC3339.
type HTTPClient struct {
	BaseURL  string
	Username string
	Password string

	Client *http.Client
}

// NewHTTPClient creates an HTTPClient with the configured timeout.
func NewHTTPClient(baseURL, username, password string) *HTTPClient {
	return &HTTPClient{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Client:   &http.Client{Timeout: config.HTTPTimeout},
	}
}

func (c *HTTPClient) ListCalendars(ctx context.Context) ([]Descriptor, error) {
	var out []Descriptor
	if err := c.getJSON(ctx, c.BaseURL+"/calendars", &out); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrListCalendars, err)
	}
	return out, nil
}

func (c *HTTPClient) FetchEvents(ctx context.Context, calendarID string, start, end time.Time) ([]RawEvent, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events?start=%s&end=%s",
		c.BaseURL,
		url.PathEscape(calendarID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)),
	)
	var out []RawEvent
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON performs a GET and decodes the JSON body into dst. It validates
// the URL scheme, strips query parameters from logged URLs and caps the
// response size.
func (c *HTTPClient) getJSON(ctx context.Context, targetURL string, dst any) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	safeURL := u.Scheme + "://" + u.Host + u.Path
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompSource),
		slog.String(config.LogKeyURL, safeURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeJSON)
	if c.Username != "" || c.Password != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("network error during fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Warn(config.MsgFetchFailed, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body := io.LimitReader(resp.Body, config.MaxHTTPResponseSize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%s: %w", config.ErrDecodeEvents, err)
	}
	return nil
}
