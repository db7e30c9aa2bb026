package portalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ashfaaq98/caseportal/internal/casedata"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL matches the case API's development address.
const DefaultBaseURL = "http://localhost:5000/api"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 * 1024

// Config controls how the client reaches the case API.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero leaves requests bounded only by ctx.
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the case API. Every call is a single attempt: there is no
// retry, backoff or caching.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logrus.Entry
}

// AuthResult is a successful authentication.
type AuthResult struct {
	Case casedata.Case
}

// NewClient creates a new case API client.
func NewClient(cfg Config, logger *logrus.Entry) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "caseportal/1.0"
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = logrus.NewEntry(discard)
	}

	return &Client{
		baseURL:    base,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticate exchanges a case number and access code for the case record.
func (c *Client) Authenticate(ctx context.Context, caseNumber, accessCode string) (*AuthResult, error) {
	caseNumber = strings.TrimSpace(caseNumber)
	accessCode = strings.TrimSpace(accessCode)
	if caseNumber == "" || accessCode == "" {
		return nil, &AuthenticationError{Message: "Case number and access code are required"}
	}

	body := casedata.AuthRequest{CaseNumber: caseNumber, AccessCode: accessCode}
	resp, err := c.makeRequest(ctx, http.MethodPost, "/auth", body)
	if err != nil {
		return nil, &AuthenticationError{Message: DefaultAuthMessage, Err: transportError("authenticate", err)}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := readErrorMessage(resp)
		c.logger.WithFields(logrus.Fields{"case_number": caseNumber, "status": resp.StatusCode}).Warn("authentication rejected")
		return nil, &AuthenticationError{Message: messageOr(msg, DefaultAuthMessage), StatusCode: resp.StatusCode}
	}

	var out casedata.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &AuthenticationError{Message: DefaultAuthMessage, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode auth response: %w", err)}
	}
	if !out.Success || out.Case == nil {
		return nil, &AuthenticationError{Message: messageOr(strings.TrimSpace(out.Error), DefaultAuthMessage), StatusCode: resp.StatusCode}
	}

	c.logger.WithField("case_number", caseNumber).Debug("authenticated")
	return &AuthResult{Case: *out.Case}, nil
}

// GetCase fetches the full case record.
func (c *Client) GetCase(ctx context.Context, caseNumber string) (*casedata.Case, error) {
	var out casedata.Case
	if err := c.fetch(ctx, ResourceCase, casePath(caseNumber, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTimeline fetches the case's ordered progress steps.
func (c *Client) FetchTimeline(ctx context.Context, caseNumber string) ([]casedata.TimelineEvent, error) {
	var out []casedata.TimelineEvent
	if err := c.fetch(ctx, ResourceTimeline, casePath(caseNumber, "timeline"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchDocuments fetches the case's document metadata.
func (c *Client) FetchDocuments(ctx context.Context, caseNumber string) ([]casedata.Document, error) {
	var out []casedata.Document
	if err := c.fetch(ctx, ResourceDocuments, casePath(caseNumber, "documents"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus applies patch remotely and returns the updated case.
func (c *Client) UpdateStatus(ctx context.Context, caseNumber string, patch casedata.StatusPatch) (*casedata.Case, error) {
	resp, err := c.makeRequest(ctx, http.MethodPut, casePath(caseNumber, "status"), patch)
	if err != nil {
		return nil, &UpdateError{Message: DefaultUpdateMessage, Err: transportError("update status", err)}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := readErrorMessage(resp)
		return nil, &UpdateError{Message: messageOr(msg, DefaultUpdateMessage), StatusCode: resp.StatusCode}
	}

	var out casedata.Case
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UpdateError{Message: DefaultUpdateMessage, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode case: %w", err)}
	}

	c.logger.WithField("case_number", caseNumber).Info("case status updated")
	return &out, nil
}

func (c *Client) fetch(ctx context.Context, res Resource, endpoint string, out interface{}) error {
	resp, err := c.makeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Resource: res, Message: res.defaultMessage(), Err: transportError("fetch "+string(res), err)}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := readErrorMessage(resp)
		c.logger.WithFields(logrus.Fields{"resource": res, "status": resp.StatusCode}).Warn("fetch failed")
		return &FetchError{Resource: res, Message: messageOr(msg, res.defaultMessage()), StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Resource: res, Message: res.defaultMessage(), StatusCode: resp.StatusCode, Err: fmt.Errorf("decode %s: %w", res, err)}
	}
	return nil
}

// makeRequest issues one HTTP request with JSON headers.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	entry := c.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"duration": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		entry.WithError(err).Warn("request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	entry.WithField("status", resp.StatusCode).Debug("request completed")
	return resp, nil
}

// readErrorMessage extracts the "error" field of an error body, or "".
func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body casedata.ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Error)
}

func casePath(caseNumber, suffix string) string {
	p := "/case/" + url.PathEscape(strings.TrimSpace(caseNumber))
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
