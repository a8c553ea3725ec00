package extractors

import (
	"sort"
	"strings"

	"github.com/openitup/storycode/internal/facts"
)

// Extractor parses a source snippet in one language and emits structural facts.
type Extractor interface {
	// Name returns the extractor identifier (e.g. "python", "go").
	Name() string
	// Aliases returns additional names the extractor answers to (e.g. "py").
	Aliases() []string
	// Extract parses src and returns its structure, or a *facts.ParseFailure
	// when src is not valid source. It never returns partial facts.
	Extract(src []byte) (*facts.Structure, error)
}

// Registry holds registered extractors.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a new extractor registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor to the registry.
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Get returns the extractor answering to the given name or alias
// (case-insensitive), or nil if not found.
func (r *Registry) Get(name string) Extractor {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.extractors {
		if e.Name() == name {
			return e
		}
		for _, a := range e.Aliases() {
			if a == name {
				return e
			}
		}
	}
	return nil
}

// Names returns the sorted primary names of all registered extractors.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.extractors))
	for _, e := range r.extractors {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
