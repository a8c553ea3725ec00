package prompts

import (
	"fmt"
	"strings"

	"github.com/openitup/storycode/internal/facts"
)

// EmptySummary describes a snippet in which no construct was found.
const EmptySummary = "a quiet program with no notable structure."

// Summary renders structural facts as the story's cast sentence. Each
// non-empty accumulator contributes one clause; empty ones contribute nothing.
func Summary(s *facts.Structure) string {
	if s.IsEmpty() {
		return EmptySummary
	}

	var clauses []string
	if len(s.Functions) > 0 {
		clauses = append(clauses, fmt.Sprintf("a main character (a function) named '%s'", strings.Join(s.Functions, ", ")))
	}
	if len(s.Variables) > 0 {
		clauses = append(clauses, fmt.Sprintf("with companions (variables) like '%s'", strings.Join(s.Variables, ", ")))
	}
	if loops := s.DistinctLoops(); len(loops) > 0 {
		names := make([]string, len(loops))
		for i, l := range loops {
			names[i] = string(l) + " loop"
		}
		clauses = append(clauses, fmt.Sprintf("who goes on a repetitive journey or quest (a %s)", strings.Join(names, " and ")))
	}
	if n := len(s.Conditionals); n > 0 {
		clauses = append(clauses, fmt.Sprintf("and faces %d forks in the road or moral dilemmas (if/else statements)", n))
	}
	return strings.Join(clauses, ", ") + "."
}
