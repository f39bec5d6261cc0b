package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vytor/sentenceflash/internal/errors"
	"github.com/vytor/sentenceflash/internal/logger"
)

const DefaultBaseURL = "https://sheets.googleapis.com/v4"

// Responses larger than this fail with a remote error.
const maxResponseBytes = 32 << 20

// Client talks to the Google Sheets v4 REST API on behalf of the signed-in user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	session    Session
	maxBody    int64
	log        *logger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey adds the project API key to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func New(session Session, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		session:    session,
		maxBody:    maxResponseBytes,
		log:        logger.Default().WithPrefix("sheets"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type metadataResp struct {
	SpreadsheetID string `json:"spreadsheetId"`
	Properties    struct {
		Title string `json:"title"`
	} `json:"properties"`
}

func (c *Client) Metadata(ctx context.Context, spreadsheetID string) (*Metadata, error) {
	log := logger.FromContext(ctx).WithPrefix("sheets").WithField("spreadsheet_id", spreadsheetID)

	q := url.Values{}
	q.Set("fields", "spreadsheetId,properties.title")
	body, err := c.get(ctx, "/spreadsheets/"+url.PathEscape(spreadsheetID), q)
	if err != nil {
		return nil, err
	}

	var out metadataResp
	if err := json.Unmarshal(body, &out); err != nil {
		log.Error("failed to decode metadata response: %v", err)
		return nil, errors.NewRemoteError(body, err)
	}

	log.Info("fetched metadata: title=%q", out.Properties.Title)
	return &Metadata{SpreadsheetID: spreadsheetID, Title: out.Properties.Title}, nil
}

func (c *Client) Values(ctx context.Context, spreadsheetID, sheetName string) (*ValueRange, error) {
	log := logger.FromContext(ctx).WithPrefix("sheets").WithFields(map[string]any{
		"spreadsheet_id": spreadsheetID,
		"sheet":          sheetName,
	})

	q := url.Values{}
	q.Set("valueRenderOption", "UNFORMATTED_VALUE")
	q.Set("majorDimension", "ROWS")
	path := fmt.Sprintf("/spreadsheets/%s/values/%s", url.PathEscape(spreadsheetID), url.PathEscape(sheetName))
	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, err
	}

	var out ValueRange
	if err := json.Unmarshal(body, &out); err != nil {
		log.Error("failed to decode values response: %v", err)
		return nil, errors.NewRemoteError(body, err)
	}
	out.Raw = body

	log.Info("fetched %d value rows", len(out.Values))
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("sheets")

	if c.session == nil {
		return nil, errors.NewNotAuthorizedError(nil)
	}
	ts, ok := c.session.TokenSource(ctx)
	if !ok {
		log.Debug("no active session")
		return nil, errors.NewNotAuthorizedError(nil)
	}
	token, err := ts.Token()
	if err != nil {
		log.Warn("failed to obtain access token: %v", err)
		return nil, errors.NewNotAuthorizedError(err)
	}

	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, errors.NewInternalError(err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	log.Debug("GET %s", path)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return nil, errors.NewRemoteError(nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		log.Error("failed to read response body: %v", err)
		return nil, errors.NewRemoteError(nil, err)
	}
	if int64(len(body)) > c.maxBody {
		log.Error("response body exceeds %d bytes", c.maxBody)
		return nil, errors.NewRemoteError(nil, fmt.Errorf("response body exceeds %d bytes", c.maxBody))
	}

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		log.Warn("session rejected by sheets service")
		return nil, errors.NewNotAuthorizedError(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		log.Error("request failed: status=%d", resp.StatusCode)
		return nil, errors.NewRemoteError(body, fmt.Errorf("status %d", resp.StatusCode))
	}
	return body, nil
}
