package engine

import (
	"github.com/openitup/storycode/internal/normalize"
	"github.com/openitup/storycode/internal/prompts"
)

// Feature describes one pipeline entry point.
type Feature struct {
	Name        prompts.Feature `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Output      normalize.Kind  `json:"output"`
	// Structural features run the extractor and prompt from its facts
	// instead of from the raw input.
	Structural bool     `json:"structural"`
	Params     []string `json:"params,omitempty"`
	// EmptyMessage is returned without calling the model when the input is
	// blank.
	EmptyMessage string `json:"-"`
}

var catalog = map[prompts.Feature]Feature{
	prompts.FeatureStory: {
		Name:         prompts.FeatureStory,
		Title:        "StoryCode",
		Description:  "Turns the structure of a code snippet into a short story.",
		Output:       normalize.KindText,
		Structural:   true,
		Params:       []string{prompts.ParamStyle, prompts.ParamLanguage},
		EmptyMessage: "Please paste some code to turn into a story.",
	},
	prompts.FeatureStorySketch: {
		Name:         prompts.FeatureStorySketch,
		Title:        "StoryCode sketch",
		Description:  "Tells a story from raw code without structural analysis.",
		Output:       normalize.KindText,
		Params:       []string{prompts.ParamStyle},
		EmptyMessage: "Please paste some code to turn into a story.",
	},
	prompts.FeatureMentalHealth: {
		Name:         prompts.FeatureMentalHealth,
		Title:        "Cody, the coder's companion",
		Description:  "A supportive reply for a stressed developer.",
		Output:       normalize.KindText,
		EmptyMessage: "Tell me what's on your mind and I'll listen.",
	},
	prompts.FeatureArt: {
		Name:         prompts.FeatureArt,
		Title:        "Generative art",
		Description:  "An SVG image inspired by a programming theme.",
		Output:       normalize.KindSVG,
		EmptyMessage: "Please describe a programming theme to draw.",
	},
	prompts.FeatureBugJoke: {
		Name:         prompts.FeatureBugJoke,
		Title:        "Bug joke generator",
		Description:  "A one-line joke about a bug plus an explanation, as JSON.",
		Output:       normalize.KindJSON,
		EmptyMessage: "Please describe a bug to joke about.",
	},
	prompts.FeatureCommitMessage: {
		Name:         prompts.FeatureCommitMessage,
		Title:        "Commit poet",
		Description:  "A commit message for a before/after code change.",
		Output:       normalize.KindText,
		Params:       []string{prompts.ParamCodeBefore, prompts.ParamCodeAfter, prompts.ParamStyle},
		EmptyMessage: "Please provide the code before and after your changes.",
	},
	prompts.FeatureRegexGenerate: {
		Name:         prompts.FeatureRegexGenerate,
		Title:        "Regex wizard: generate",
		Description:  "A regular expression for a plain-language description.",
		Output:       normalize.KindText,
		EmptyMessage: "Please describe the text you want to match.",
	},
	prompts.FeatureRegexExplain: {
		Name:         prompts.FeatureRegexExplain,
		Title:        "Regex wizard: explain",
		Description:  "A bulleted breakdown of a regular expression.",
		Output:       normalize.KindText,
		EmptyMessage: "Please paste a regex pattern to explain.",
	},
	prompts.FeatureErrorSleuth: {
		Name:         prompts.FeatureErrorSleuth,
		Title:        "Error sleuth",
		Description:  "Explains an error message or stack trace and suggests fixes.",
		Output:       normalize.KindText,
		EmptyMessage: "Please paste an error message or stack trace to analyze.",
	},
	prompts.FeatureAPIMockup: {
		Name:         prompts.FeatureAPIMockup,
		Title:        "API mockup",
		Description:  "Sample JSON records for a described data model.",
		Output:       normalize.KindText,
		EmptyMessage: "Please describe the data model you want to mock.",
	},
	prompts.FeatureDocWriter: {
		Name:         prompts.FeatureDocWriter,
		Title:        "Doc writer",
		Description:  "A docstring for a function in the requested style.",
		Output:       normalize.KindText,
		Params:       []string{prompts.ParamStyle, prompts.ParamLanguage},
		EmptyMessage: "Please paste a function to document.",
	},
	prompts.FeatureFlowchart: {
		Name:         prompts.FeatureFlowchart,
		Title:        "Code visualizer",
		Description:  "A Mermaid flowchart of a function's control flow.",
		Output:       normalize.KindDiagram,
		Params:       []string{prompts.ParamLanguage},
		EmptyMessage: "flowchart TD\nA[Start] --> B[Please paste a function to visualize.] --> C[End]",
	},
}

// Lookup returns the catalog entry for name.
func Lookup(name prompts.Feature) (Feature, bool) {
	f, ok := catalog[name]
	return f, ok
}

// Catalog returns every feature in name order.
func Catalog() []Feature {
	out := make([]Feature, 0, len(catalog))
	for _, name := range prompts.All() {
		if f, ok := catalog[name]; ok {
			out = append(out, f)
		}
	}
	return out
}

// emptyOutput shapes a feature's empty-input message like a model reply of
// the feature's kind would be shaped.
func emptyOutput(f Feature) normalize.Output {
	switch f.Output {
	case normalize.KindJSON:
		return normalize.Output{
			Kind:   normalize.KindJSON,
			Object: map[string]any{"joke": f.EmptyMessage, "explanation": ""},
		}
	case normalize.KindSVG:
		return normalize.Output{Kind: normalize.KindSVG, Text: normalize.MessageSVG(f.EmptyMessage)}
	case normalize.KindDiagram:
		lines, err := normalize.CleanDiagram(f.EmptyMessage, normalize.DefaultDiagramHeader)
		if err != nil {
			return normalize.Output{Kind: normalize.KindText, Text: f.EmptyMessage}
		}
		return normalize.Output{Kind: normalize.KindDiagram, Text: f.EmptyMessage, Lines: lines}
	default:
		return normalize.Output{Kind: normalize.KindText, Text: f.EmptyMessage}
	}
}
