package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openitup/storycode/internal/completion"
	"github.com/openitup/storycode/internal/config"
	"github.com/openitup/storycode/internal/extractors"
	"github.com/openitup/storycode/internal/facts"
	"github.com/openitup/storycode/internal/logger"
	"github.com/openitup/storycode/internal/normalize"
	"github.com/openitup/storycode/internal/prompts"
)

var (
	ErrUnknownFeature      = errors.New("unknown feature")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInputTooLarge       = errors.New("input too large")
)

// Engine orchestrates the pipeline: extract -> compose -> complete -> normalize.
// It keeps no per-request state and is safe for concurrent use once all
// extractors are registered.
type Engine struct {
	cfg        *config.Config
	extractors *extractors.Registry
	client     completion.Client
	normalizer *normalize.Normalizer
	log        *logger.Logger
}

// New creates a new Engine with the given config and completion client.
// Extractors must be registered after creation.
func New(cfg *config.Config, client completion.Client, log *logger.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine: nil config")
	}
	if client == nil {
		return nil, errors.New("engine: nil completion client")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		cfg:        cfg,
		extractors: extractors.NewRegistry(),
		client:     client,
		normalizer: normalize.New(),
		log:        log.With("component", "engine"),
	}, nil
}

// RegisterExtractor adds an extractor to the engine.
func (e *Engine) RegisterExtractor(ext extractors.Extractor) {
	e.extractors.Register(ext)
}

// Languages returns the primary names of the registered extractors.
func (e *Engine) Languages() []string {
	return e.extractors.Names()
}

// Config returns the engine config.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Request is one pipeline invocation.
type Request struct {
	Feature prompts.Feature
	Input   string
	// Language picks the extractor for structural features. Empty means
	// Params["language"], then the configured default.
	Language string
	Params   map[string]string
}

// Result is the outcome of a successful Run.
type Result struct {
	Feature prompts.Feature  `json:"feature"`
	Output  normalize.Output `json:"output"`
	Facts   *facts.Structure `json:"facts,omitempty"`
	Empty   bool             `json:"empty,omitempty"` // input was blank; Output holds the feature's prompt-for-input message
	Elapsed time.Duration    `json:"elapsed_ns"`
}

// Analyze extracts structural facts from code. language may be a name or an
// alias; empty selects the configured default.
func (e *Engine) Analyze(language, code string) (*facts.Structure, error) {
	if err := e.checkSize(len(code)); err != nil {
		return nil, err
	}
	if language == "" {
		language = e.cfg.Extractor.DefaultLanguage
	}
	ext := e.extractors.Get(language)
	if ext == nil {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnsupportedLanguage, language, strings.Join(e.extractors.Names(), ", "))
	}
	s, err := ext.Extract([]byte(code))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes one feature end to end. Blank input short-circuits to the
// feature's empty message without calling the model. Parse failures,
// completion failures and oversize input are returned as errors; malformed
// model output is not an error (see normalize.Output.Fallback).
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	f, ok := Lookup(req.Feature)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, req.Feature)
	}

	if isBlank(f, req) {
		return &Result{Feature: f.Name, Output: emptyOutput(f), Empty: true, Elapsed: time.Since(start)}, nil
	}
	if err := e.checkSize(inputSize(req)); err != nil {
		return nil, err
	}

	in := prompts.Input{Text: req.Input, Params: req.Params}
	if f.Structural {
		language := firstNonEmpty(req.Language, strings.TrimSpace(req.Params[prompts.ParamLanguage]))
		s, err := e.Analyze(language, req.Input)
		if err != nil {
			e.log.Debug("extraction failed", "feature", f.Name, "error", err)
			return nil, err
		}
		in.Facts = s
	}

	prompt := prompts.Compose(f.Name, in)
	raw, err := e.client.Complete(ctx, prompt.String(), completion.Options{
		Model:   e.cfg.Completion.Model,
		Timeout: e.cfg.Completion.Timeout,
	})
	if err != nil {
		return nil, err
	}

	out := e.normalizer.Normalize(raw, f.Output)
	if out.Fallback != normalize.DiagNone {
		e.log.Warn("model output needed a fallback", "feature", f.Name, "fallback", out.Fallback, "raw", raw)
	}

	res := &Result{
		Feature: f.Name,
		Output:  out,
		Facts:   in.Facts,
		Elapsed: time.Since(start),
	}
	e.log.Info("feature done", "feature", f.Name, "output", out.Kind, "elapsed", res.Elapsed)
	return res, nil
}

// DisplayError renders a pipeline error the way the web pages show it.
func DisplayError(err error) string {
	var pf *facts.ParseFailure
	var se *completion.ServiceError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pf):
		return "Error parsing code: " + pf.Error()
	case errors.As(err, &se):
		return "Error connecting to the completion service: " + se.Error()
	default:
		return "Error: " + err.Error()
	}
}

func (e *Engine) checkSize(n int) error {
	limit := e.cfg.Extractor.MaxSourceBytes
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrInputTooLarge, n, limit)
	}
	return nil
}

func isBlank(f Feature, req Request) bool {
	if f.Name == prompts.FeatureCommitMessage {
		return strings.TrimSpace(req.Params[prompts.ParamCodeBefore]) == "" &&
			strings.TrimSpace(req.Params[prompts.ParamCodeAfter]) == ""
	}
	return strings.TrimSpace(req.Input) == ""
}

func inputSize(req Request) int {
	n := len(req.Input)
	for _, v := range req.Params {
		n += len(v)
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
