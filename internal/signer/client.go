package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/SeakMengs/Signfy/pkg/signfy"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// how much of an error body is kept on APIError
const maxErrorBody = 4 << 10

var ErrMissingFilePath = errors.New("signing backend returned a document without a file path")

// APIError is a non-2xx answer from the signing backend.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("signing backend %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

type Document struct {
	ID       string `json:"_id"`
	FilePath string `json:"filePath"`
}

// Client talks to the signing backend on behalf of one caller. It implements signfy.Submitter.
type Client struct {
	logger         *zap.SugaredLogger
	httpClient     *http.Client
	plainClient    *http.Client // no credentials, for files hosted elsewhere
	apiBase        string
	fileBase       string
	maxDownload    int64
	idempotencyKey string
}

func New(cfg config.SignerConfig, logger *zap.SugaredLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	apiBase := strings.TrimRight(cfg.API_BASE_URL, "/")
	fileBase := strings.TrimRight(cfg.FILE_BASE_URL, "/")
	if fileBase == "" {
		fileBase = strings.TrimSuffix(apiBase, "/api")
	}

	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		logger:      logger,
		httpClient:  httpClient,
		plainClient: httpClient,
		apiBase:     apiBase,
		fileBase:    fileBase,
		maxDownload: cfg.MaxDocumentBytes,
	}
}

// WithToken returns a copy that sends token as its bearer credential.
func (c *Client) WithToken(ctx context.Context, token string) *Client {
	clone := *c
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.plainClient)
	clone.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	clone.httpClient.Timeout = c.plainClient.Timeout
	return &clone
}

// WithIdempotencyKey returns a copy that tags signature submissions with key.
func (c *Client) WithIdempotencyKey(key string) *Client {
	clone := *c
	clone.idempotencyKey = key
	return &clone
}

// ResolveFileURL turns a path stored by the backend, possibly with Windows separators,
// into an absolute URL. Absolute URLs are returned unchanged.
func (c *Client) ResolveFileURL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}

	clean := strings.ReplaceAll(path, `\`, "/")
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}
	return c.fileBase + clean
}

func (c *Client) GetDocument(ctx context.Context, documentID string) (Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, "/docs/"+url.PathEscape(documentID), nil, &doc); err != nil {
		return Document{}, err
	}
	if doc.FilePath == "" {
		return Document{}, ErrMissingFilePath
	}
	if doc.ID == "" {
		doc.ID = documentID
	}
	return doc, nil
}

func (c *Client) SubmitSignature(ctx context.Context, s signfy.SignatureSubmission) error {
	c.logger.Debugf("Submit signature for document %s at (%d, %d) on page %d", s.DocumentID, s.X, s.Y, s.Page)
	return c.doJSON(ctx, http.MethodPost, "/signatures", s, nil)
}

func (c *Client) FetchSignedFile(ctx context.Context, documentID string) (signfy.SignedFile, error) {
	var signed signfy.SignedFile
	if err := c.doJSON(ctx, http.MethodGet, "/signatures/apply/"+url.PathEscape(documentID), nil, &signed); err != nil {
		return signfy.SignedFile{}, err
	}
	if signed.URL == "" {
		return signfy.SignedFile{}, errors.New("signing backend returned no signed file url")
	}

	signed.URL = c.ResolveFileURL(signed.URL)
	return signed, nil
}

// trusts reports whether u is served by the signing backend, the only host that may see
// the caller's bearer token.
func (c *Client) trusts(u *url.URL) bool {
	for _, base := range []string{c.apiBase, c.fileBase} {
		b, err := url.Parse(base)
		if err != nil || b.Host == "" {
			continue
		}
		if strings.EqualFold(b.Scheme, u.Scheme) && strings.EqualFold(b.Host, u.Host) {
			return true
		}
	}
	return false
}

// Download reads the file at fileURL, refusing anything larger than the configured limit.
// The bearer token is only sent to the backend's own hosts.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}

	httpClient := c.httpClient
	if !c.trusts(req.URL) {
		c.logger.Debugf("Download %s from a foreign host without credentials", req.URL.Redacted())
		httpClient = c.plainClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", fileURL, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		return nil, err
	}

	var body io.Reader = resp.Body
	if c.maxDownload > 0 {
		body = io.LimitReader(resp.Body, c.maxDownload+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileURL, err)
	}
	if c.maxDownload > 0 && int64(len(data)) > c.maxDownload {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileURL, c.maxDownload)
	}

	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && c.idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, c.idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("signing backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		c.logger.Errorf("Signing backend request failed: %v", err)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode signing backend response for %s %s: %w", method, path, err)
	}
	return nil
}

func checkResponse(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
