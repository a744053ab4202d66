package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the knowledge-assistant backend
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchHistory performs GET /get_chats.
func (c *Client) FetchHistory(ctx context.Context, credential string) (*HistoryResponse, error) {
	var out HistoryResponse
	if _, err := c.doJSON(ctx, "get_chats", http.MethodGet, "/get_chats", credential, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PersistConversation performs POST /save_chat. The body of the response is
// ignored; a non-2xx status is reported so callers can record the drop.
func (c *Client) PersistConversation(ctx context.Context, entries Conversation, credential string) error {
	if entries == nil {
		entries = Conversation{}
	}
	status, err := c.doJSON(ctx, "save_chat", http.MethodPost, "/save_chat", credential, map[string]interface{}{"messages": entries}, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &APIError{Op: "save_chat", Status: status}
	}
	return nil
}

// SubmitQuery performs POST /query. The status code is not inspected: any
// decodable body is a response.
func (c *Client) SubmitQuery(ctx context.Context, text, credential string) (*QueryResponse, error) {
	var out QueryResponse
	if _, err := c.doJSON(ctx, "query", http.MethodPost, "/query", credential, map[string]string{"query": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitNL2SQL performs POST /nl2sql.
func (c *Client) SubmitNL2SQL(ctx context.Context, text, credential string) (*NL2SQLResponse, error) {
	var out NL2SQLResponse
	if _, err := c.doJSON(ctx, "nl2sql", http.MethodPost, "/nl2sql", credential, map[string]string{"question": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var raw json.RawMessage
	status, err := c.doJSON(ctx, "login", http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Op: "login", Status: status, Detail: detailOf(raw, "Login failed")}
	}

	var out LoginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &DecodeError{Op: "login", Err: err}
	}
	if out.AccessToken == "" {
		return nil, &DecodeError{Op: "login", Err: fmt.Errorf("response has no access_token")}
	}
	return &out, nil
}

// Ingest uploads a document as multipart/form-data with fields file and
// doc_type.
func (c *Client) Ingest(ctx context.Context, filename string, body io.Reader, docType, credential string) (*IngestResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.WriteField("doc_type", docType); err != nil {
		return nil, fmt.Errorf("failed to write doc_type: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/ingest", credential, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	status, data, err := c.do("ingest", req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Op: "ingest", Status: status, Detail: detailOf(data, "")}
	}
	var out IngestResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &DecodeError{Op: "ingest", Err: err}
	}
	return &out, nil
}

// Health probes the backend root. Any HTTP response means reachable.
func (c *Client) Health(ctx context.Context) (int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/", "", nil)
	if err != nil {
		return 0, err
	}
	status, _, err := c.do("health", req)
	return status, err
}

func (c *Client) doJSON(ctx context.Context, op, method, path, credential string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, credential, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	status, data, err := c.do(op, req)
	if err != nil {
		return status, err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return status, &DecodeError{Op: op, Err: err}
		}
	}
	return status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, credential string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	return req, nil
}

func (c *Client) do(op string, req *http.Request) (int, []byte, error) {
	LogDebug("%s %s", req.Method, req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: op, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Op: op, URL: req.URL.String(), Err: err}
	}
	LogDebug("%s %s -> %d (%d bytes)", req.Method, req.URL.Path, resp.StatusCode, len(data))
	return resp.StatusCode, data, nil
}

// detailOf extracts FastAPI-style {"detail": "..."} messages.
func detailOf(data []byte, fallback string) string {
	var body struct {
		Detail interface{} `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Detail == nil {
		return fallback
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	b, _ := json.Marshal(body.Detail)
	return string(b)
}
