package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/session"
	"github.com/hirepath/admin-console/pkg/config"
)

// Params is a query-string or JSON-body payload.
type Params map[string]interface{}

// MultipartFile is one file part of a multipart payload.
type MultipartFile struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartPayload streams as multipart/form-data. The wrapper leaves the
// Content-Type to the multipart writer so the boundary is included.
type MultipartPayload struct {
	Fields map[string]string
	Files  []MultipartFile
}

// Client is the single HTTP request wrapper every screen goes through. It
// normalizes request construction (query vs body placement, auth decoration,
// content type) and failure shapes (see APIError). It holds no request state
// of its own beyond the injected session.
type Client struct {
	baseURL string
	http    *http.Client
	session session.Store
	logger  *zap.Logger
	debug   bool
}

// New builds a Client from configuration.
func New(cfg *config.Config, store session.Store, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.API.Timeout},
		session: store,
		logger:  logger,
		debug:   cfg.Env != config.EnvProduction,
	}
}

// Do dispatches one request and returns the raw response body on success.
//
// GET payloads are encoded into the query string; other methods send a JSON
// body. Explicit headers win over the session-derived Authorization and
// user-id headers. Failures reject with an *APIError classified in priority
// order: server (non-2xx, body preserved and annotated with status), transport
// (no response), then anything else.
func (c *Client) Do(ctx context.Context, method, path string, payload interface{}, headers map[string]string) (json.RawMessage, error) {
	start := time.Now()
	reqID := uuid.NewString()

	req, err := c.buildRequest(ctx, method, path, payload)
	if err != nil {
		c.logCall(method, path, reqID, 0, start, err)
		return nil, requestError(err)
	}

	c.decorate(req, headers)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logCall(method, path, reqID, 0, start, err)
		return nil, transportError()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logCall(method, path, reqID, resp.StatusCode, start, err)
		return nil, transportError()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := serverError(resp.StatusCode, body)
		c.logCall(method, path, reqID, resp.StatusCode, start, apiErr)
		return nil, apiErr
	}

	c.logCall(method, path, reqID, resp.StatusCode, start, nil)
	return body, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, payload interface{}) (*http.Request, error) {
	target := c.baseURL + path

	if strings.EqualFold(method, http.MethodGet) {
		u, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			query := u.Query()
			for key, value := range toParams(payload) {
				query.Set(key, stringify(value))
			}
			u.RawQuery = query.Encode()
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	}

	if mp, ok := payload.(*MultipartPayload); ok {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)
		for key, value := range mp.Fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, err
			}
		}
		for _, file := range mp.Files {
			part, err := writer.CreateFormFile(file.Field, file.Filename)
			if err != nil {
				return nil, err
			}
			if _, err := part.Write(file.Content); err != nil {
				return nil, err
			}
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target, buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// decorate attaches session credentials, then lets caller headers override.
func (c *Client) decorate(req *http.Request, headers map[string]string) {
	req.Header.Set("Accept", "application/json")
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if userID := c.session.UserID(); userID != "" {
			req.Header.Set("user-id", userID)
		}
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

// logCall records the diagnostic trail in non-production runs. It never
// affects control flow.
func (c *Client) logCall(method, path, reqID string, status int, start time.Time, err error) {
	if !c.debug {
		return
	}
	fields := []zap.Field{
		zap.String("method", strings.ToUpper(method)),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Debug("api call failed", append(fields, zap.Error(err))...)
		return
	}
	c.logger.Debug("api call", fields...)
}

func toParams(payload interface{}) Params {
	switch p := payload.(type) {
	case Params:
		return p
	case map[string]interface{}:
		return p
	case map[string]string:
		out := make(Params, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out
	default:
		// Fall back to JSON field names for struct payloads.
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		out := Params{}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	}
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return strings.Trim(string(raw), `"`)
	}
}
