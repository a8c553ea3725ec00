package completion

import (
	"context"
	"strings"
	"sync"
)

// FakeClient returns canned replies for offline use and tests. Replies are
// matched by the first registered substring found in the prompt; otherwise
// the default reply is returned.
type FakeClient struct {
	mu       sync.Mutex
	rules    []fakeRule
	fallback string
	err      error
	prompts  []string
}

type fakeRule struct {
	contains string
	reply    string
}

func NewFakeClient(defaultReply string) *FakeClient {
	return &FakeClient{fallback: defaultReply}
}

func (f *FakeClient) Name() string { return "Fake" }

// On registers reply for prompts that contain substr.
func (f *FakeClient) On(substr, reply string) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{contains: substr, reply: reply})
	return f
}

// FailWith makes every later call return err.
func (f *FakeClient) FailWith(err error) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Prompts returns a copy of the prompts received so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *FakeClient) Complete(ctx context.Context, prompt string, _ Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ServiceError{Op: "request", Err: err}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	for _, r := range f.rules {
		if strings.Contains(prompt, r.contains) {
			return r.reply, nil
		}
	}
	return f.fallback, nil
}
