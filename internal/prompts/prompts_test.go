package prompts

import (
	"strings"
	"testing"

	"github.com/openitup/storycode/internal/facts"
)

func TestSummary_AllClauses(t *testing.T) {
	s := &facts.Structure{
		Functions:    []string{"find_max", "helper"},
		Variables:    []string{"numbers", "max_val"},
		Loops:        []facts.LoopKind{facts.LoopFor, facts.LoopWhile, facts.LoopFor},
		Conditionals: []string{"if", "if"},
	}

	want := "a main character (a function) named 'find_max, helper', " +
		"with companions (variables) like 'numbers, max_val', " +
		"who goes on a repetitive journey or quest (a for loop and while loop), " +
		"and faces 2 forks in the road or moral dilemmas (if/else statements)."
	if got := Summary(s); got != want {
		t.Errorf("Summary =\n%s\nwant\n%s", got, want)
	}
}

func TestSummary_OmitsEmptyAccumulators(t *testing.T) {
	tests := []struct {
		name     string
		s        *facts.Structure
		want     string
		mustMiss []string
	}{
		{
			"only conditionals",
			&facts.Structure{Conditionals: []string{"if"}},
			"and faces 1 forks in the road or moral dilemmas (if/else statements).",
			[]string{"named", "companions", "journey"},
		},
		{
			"only variables",
			&facts.Structure{Variables: []string{"x"}},
			"with companions (variables) like 'x'.",
			[]string{"named", "journey", "forks"},
		},
		{
			"only while loops",
			&facts.Structure{Loops: []facts.LoopKind{facts.LoopWhile, facts.LoopWhile}},
			"who goes on a repetitive journey or quest (a while loop).",
			[]string{"named", "companions", "forks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.s)
			if got != tt.want {
				t.Errorf("Summary = %q, want %q", got, tt.want)
			}
			for _, frag := range tt.mustMiss {
				if strings.Contains(got, frag) {
					t.Errorf("summary %q should not contain %q", got, frag)
				}
			}
		})
	}
}

func TestSummary_EmptyStructure(t *testing.T) {
	if got := Summary(&facts.Structure{}); got != EmptySummary {
		t.Errorf("Summary(empty) = %q, want %q", got, EmptySummary)
	}
	if got := Summary(nil); got != EmptySummary {
		t.Errorf("Summary(nil) = %q, want %q", got, EmptySummary)
	}
	if strings.Contains(Summary(nil), "named ''") {
		t.Error("empty summary must not name an empty character")
	}
}

func TestCompose_StoryUsesSummaryAndStyle(t *testing.T) {
	in := Input{
		Facts:  &facts.Structure{Functions: []string{"greet"}},
		Params: map[string]string{ParamStyle: "a dramatic pirate adventure"},
	}
	p := Compose(FeatureStory, in)

	if !strings.Contains(p.String(), "into a dramatic pirate adventure.") {
		t.Errorf("expected style in prompt, got:\n%s", p)
	}
	if !strings.Contains(p.String(), "a main character (a function) named 'greet'.") {
		t.Errorf("expected summary in prompt, got:\n%s", p)
	}
	if strings.Contains(p.String(), "{style}") || strings.Contains(p.String(), "{summary}") {
		t.Error("placeholder left unreplaced")
	}
}

func TestCompose_DefaultsForEmptyStyle(t *testing.T) {
	tests := []struct {
		feature Feature
		params  map[string]string
		want    string
	}{
		{FeatureStory, nil, "a whimsical fairy tale"},
		{FeatureStory, map[string]string{ParamStyle: "   "}, "a whimsical fairy tale"},
		{FeatureCommitMessage, map[string]string{}, "'Conventional' style"},
		{FeatureDocWriter, nil, "complete Google-style docstring"},
		{FeatureDocWriter, map[string]string{ParamLanguage: "Go"}, "expert Go developer"},
		{FeatureFlowchart, nil, "following Python code"},
	}

	for _, tt := range tests {
		t.Run(string(tt.feature), func(t *testing.T) {
			p := Compose(tt.feature, Input{Text: "x", Params: tt.params})
			if !strings.Contains(p.String(), tt.want) {
				t.Errorf("prompt for %s missing %q:\n%s", tt.feature, tt.want, p)
			}
		})
	}
}

func TestCompose_OutputDirectives(t *testing.T) {
	joke := Compose(FeatureBugJoke, Input{Text: "off by one"})
	if !strings.Contains(joke.String(), `two keys: "joke" and "explanation"`) {
		t.Errorf("bug joke prompt missing JSON directive:\n%s", joke)
	}
	if !strings.Contains(joke.String(), "The bug is: 'off by one'.") {
		t.Errorf("bug joke prompt missing input:\n%s", joke)
	}

	flow := Compose(FeatureFlowchart, Input{Text: "def f(): pass"})
	if !strings.Contains(flow.String(), "starting with 'flowchart TD'") {
		t.Errorf("flowchart prompt missing header directive:\n%s", flow)
	}

	art := Compose(FeatureArt, Input{Text: "recursion"})
	if !strings.Contains(art.String(), "starting with `<svg`") {
		t.Errorf("art prompt missing svg directive:\n%s", art)
	}
}

func TestCompose_CommitMessageUsesBothSides(t *testing.T) {
	p := Compose(FeatureCommitMessage, Input{Params: map[string]string{
		ParamCodeBefore: "x = 1",
		ParamCodeAfter:  "x = 2",
		ParamStyle:      "Gitmoji",
	}})
	for _, want := range []string{"Code Before:\n```\nx = 1\n```", "Code After:\n```\nx = 2\n```", "'Gitmoji' style"} {
		if !strings.Contains(p.String(), want) {
			t.Errorf("commit prompt missing %q:\n%s", want, p)
		}
	}
}

func TestCompose_InputIsNotReexpanded(t *testing.T) {
	p := Compose(FeatureRegexGenerate, Input{Text: "match {style} literally"})
	if !strings.Contains(p.String(), "Description: 'match {style} literally'") {
		t.Errorf("user text must be inserted verbatim:\n%s", p)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	in := Input{
		Facts:  &facts.Structure{Functions: []string{"a"}, Variables: []string{"x", "y"}},
		Params: map[string]string{ParamStyle: "a noir detective story"},
	}
	for _, f := range All() {
		first := Compose(f, in)
		for i := 0; i < 5; i++ {
			if again := Compose(f, in); again != first {
				t.Fatalf("Compose(%s) not deterministic", f)
			}
		}
	}
}

func TestCompose_UnknownFeatureFallsBackToText(t *testing.T) {
	p := Compose(Feature("nope"), Input{Text: "  just this  "})
	if p != "just this" {
		t.Errorf("Compose(unknown) = %q, want %q", p, "just this")
	}
	if Known("nope") {
		t.Error("unknown feature reported as known")
	}
}

func TestDefaults_ReturnsCopy(t *testing.T) {
	d := Defaults(FeatureStory)
	d[ParamStyle] = "mutated"
	if Defaults(FeatureStory)[ParamStyle] != "a whimsical fairy tale" {
		t.Error("Defaults must not expose the template's map")
	}
	if len(Defaults("nope")) != 0 {
		t.Error("expected no defaults for unknown feature")
	}
}

func TestAll_ListsEveryFeature(t *testing.T) {
	if got := len(All()); got != 12 {
		t.Errorf("expected 12 features, got %d", got)
	}
}
