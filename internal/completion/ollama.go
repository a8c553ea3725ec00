package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a non-2xx body is kept on a ServiceError.
const maxErrorBody = 2048

// OllamaConfig configures an OllamaClient.
type OllamaConfig struct {
	// URL is the full generate endpoint, e.g. http://localhost:11434/api/generate.
	URL     string
	Model   string
	Timeout time.Duration
	// HTTPClient defaults to a client without its own timeout; the per-call
	// context deadline bounds each request.
	HTTPClient *http.Client
}

// OllamaClient calls Ollama's /api/generate endpoint.
type OllamaClient struct {
	http    *http.Client
	url     string
	model   string
	timeout time.Duration
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &OllamaClient{
		http:    hc,
		url:     cfg.URL,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (c *OllamaClient) Name() string { return "Ollama:" + c.model }

type generateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateChunk is one JSON object of the reply. A non-streaming reply is a
// single chunk; a streaming reply is a sequence of them ending with done.
type generateChunk struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
	Error    string  `json:"error"`
}

// Complete sends prompt and returns the model's reply text. When opts.Stream
// is set the streamed chunks are collected and returned as one string.
func (c *OllamaClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	b, err := json.Marshal(generateReq{Model: model, Prompt: prompt, Stream: opts.Stream})
	if err != nil {
		return "", &ServiceError{Op: "request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return "", &ServiceError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "request", Err: contextCause(ctx, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ServiceError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	text, err := readChunks(resp.Body)
	if err != nil {
		return "", &ServiceError{Op: "decode", Err: contextCause(ctx, err)}
	}
	return text, nil
}

// readChunks concatenates the response fields of every JSON object in r
// until a chunk reports done or the body ends.
func readChunks(r io.Reader) (string, error) {
	dec := json.NewDecoder(r)
	var sb strings.Builder
	seen := false
	for {
		var chunk generateChunk
		err := dec.Decode(&chunk)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding response: %w", err)
		}
		if chunk.Error != "" {
			return "", errors.New(chunk.Error)
		}
		if chunk.Response != nil {
			seen = true
			sb.WriteString(*chunk.Response)
		}
		if chunk.Done {
			break
		}
	}
	if !seen {
		return "", ErrMalformedEnvelope
	}
	return sb.String(), nil
}

// contextCause prefers the context's error so callers can detect timeouts
// with errors.Is(err, context.DeadlineExceeded).
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}
