// Package remotesync uploads a snapshot of the database file to a GitHub
// repository through the contents API.
package remotesync

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmynk/debtbook/internal/metrics"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

var (
	// ErrNotConfigured is returned when owner, repo or path is missing.
	ErrNotConfigured = errors.New("remote sync is not configured")

	// ErrMissingToken is returned when Upload is called without a token.
	ErrMissingToken = errors.New("github token is required")
)

// Config identifies the file to write.
type Config struct {
	Owner  string
	Repo   string
	Path   string
	APIURL string
}

// Configured reports whether owner, repo and path are all set.
func (c Config) Configured() bool {
	return c.Owner != "" && c.Repo != "" && c.Path != ""
}

// APIError is a non-success response from the contents API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github: status %d", e.StatusCode)
	}
	return fmt.Sprintf("github: status %d: %s", e.StatusCode, e.Message)
}

// Result describes a completed upload.
type Result struct {
	Path      string
	CommitSHA string
	// Created is true when the file did not exist before.
	Created bool
}

// GitHub uploads the file at source to the configured repository.
type GitHub struct {
	cfg    Config
	source string
	client *http.Client
}

// NewGitHub creates an uploader for the file at source. A nil client uses
// one with a 30 second timeout.
func NewGitHub(cfg Config, source string, client *http.Client) *GitHub {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHub{cfg: cfg, source: source, client: client}
}

type contentResponse struct {
	SHA string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type putResponse struct {
	Content struct {
		Path string `json:"path"`
	} `json:"content"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Upload commits the current database file with message. An existing
// remote file is replaced.
func (g *GitHub) Upload(ctx context.Context, token, message string) (res *Result, err error) {
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.SnapshotUploads.WithLabelValues(outcome).Inc()
	}()

	if !g.cfg.Configured() {
		return nil, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(message) == "" {
		message = "Update " + g.cfg.Path
	}

	content, err := os.ReadFile(g.source)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	sha, err := g.currentSHA(ctx, token)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := g.newRequest(ctx, http.MethodPut, token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	res = &Result{
		Path:      g.cfg.Path,
		CommitSHA: out.Commit.SHA,
		Created:   resp.StatusCode == http.StatusCreated,
	}
	if out.Content.Path != "" {
		res.Path = out.Content.Path
	}

	slog.Info("Snapshot uploaded",
		"repo", g.cfg.Owner+"/"+g.cfg.Repo,
		"path", res.Path,
		"commit", res.CommitSHA,
		"created", res.Created,
		"bytes", len(content),
	)
	return res, nil
}

// currentSHA returns the blob sha of the remote file, or "" if it does
// not exist yet.
func (g *GitHub) currentSHA(ctx context.Context, token string) (string, error) {
	req, err := g.newRequest(ctx, http.MethodGet, token, nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup remote file: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out contentResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode remote file: %w", err)
		}
		return out.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		return "", apiError(resp)
	}
}

func (g *GitHub) newRequest(ctx context.Context, method, token string, body io.Reader) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(g.cfg.APIURL, "/"),
		url.PathEscape(g.cfg.Owner),
		url.PathEscape(g.cfg.Repo),
		escapePath(g.cfg.Path),
	)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	return req, nil
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func apiError(resp *http.Response) error {
	var out errorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &out); err != nil || out.Message == "" {
		out.Message = "Unknown error"
	}
	return &APIError{StatusCode: resp.StatusCode, Message: out.Message}
}
