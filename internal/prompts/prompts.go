// Package prompts renders per-feature instructions for the completion service.
//
// Composition is pure and total: every feature has defaults for its
// parameters, placeholders are substituted with a strings.Replacer, and an
// unknown feature degrades to the caller's text.
package prompts

import (
	"sort"
	"strings"

	"github.com/openitup/storycode/internal/facts"
)

// Prompt is the instruction sent to the completion service. It is never
// mutated after Compose returns it.
type Prompt string

func (p Prompt) String() string { return string(p) }

// Feature identifies one prompt template.
type Feature string

// Features.
const (
	FeatureStory         Feature = "story"
	FeatureStorySketch   Feature = "story_sketch"
	FeatureMentalHealth  Feature = "mental_health"
	FeatureArt           Feature = "art"
	FeatureBugJoke       Feature = "bug_joke"
	FeatureCommitMessage Feature = "commit_message"
	FeatureRegexGenerate Feature = "regex_generate"
	FeatureRegexExplain  Feature = "regex_explain"
	FeatureErrorSleuth   Feature = "error_sleuth"
	FeatureAPIMockup     Feature = "api_mockup"
	FeatureDocWriter     Feature = "doc_writer"
	FeatureFlowchart     Feature = "flowchart"
)

// Parameter names understood by the templates.
const (
	ParamStyle      = "style"
	ParamLanguage   = "language"
	ParamCodeBefore = "code_before"
	ParamCodeAfter  = "code_after"
)

// Input carries everything a template may reference. Structural features read
// Facts; all others read Text and Params.
type Input struct {
	Facts  *facts.Structure
	Text   string
	Params map[string]string
}

// template is a feature's instruction text plus the defaults for the
// parameters it references.
type template struct {
	text     string
	defaults map[string]string
}

// Defaults returns the documented default parameters of a feature.
func Defaults(f Feature) map[string]string {
	t, ok := templates[f]
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(t.defaults))
	for k, v := range t.defaults {
		out[k] = v
	}
	return out
}

// Known reports whether a template exists for f.
func Known(f Feature) bool {
	_, ok := templates[f]
	return ok
}

// All returns every feature in name order.
func All() []Feature {
	out := make([]Feature, 0, len(templates))
	for f := range templates {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compose renders the prompt for f. Empty or missing parameters fall back to
// the feature's defaults.
func Compose(f Feature, in Input) Prompt {
	t, ok := templates[f]
	if !ok {
		return Prompt(strings.TrimSpace(in.Text))
	}

	pairs := []string{
		"{input}", in.Text,
		"{summary}", Summary(in.Facts),
	}
	for _, name := range sortedKeys(t.defaults) {
		pairs = append(pairs, "{"+name+"}", param(in.Params, name, t.defaults[name]))
	}
	return Prompt(strings.NewReplacer(pairs...).Replace(t.text))
}

func param(params map[string]string, name, def string) string {
	if v := strings.TrimSpace(params[name]); v != "" {
		return v
	}
	return def
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
