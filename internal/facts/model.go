package facts

// LoopKind tags a loop construct. Loops carry no identity beyond their kind.
type LoopKind string

// Loop kinds.
const (
	LoopFor   LoopKind = "for"
	LoopWhile LoopKind = "while"
)

// ConditionalIf is the tag recorded for every if / elif / else-if construct.
const ConditionalIf = "if"

// Structure is the syntactic summary of a code snippet.
type Structure struct {
	Language     string     `json:"language"`     // Extractor that produced the summary (e.g. "python")
	Functions    []string   `json:"functions"`    // Declaration order of a depth-first walk
	Loops        []LoopKind `json:"loops"`        // One tag per loop construct, walk order
	Conditionals []string   `json:"conditionals"` // One tag per if/elif construct, walk order
	Variables    []string   `json:"variables"`    // Bound identifiers, duplicates collapsed, first-binding order
}

// IsEmpty reports whether no construct at all was recorded.
func (s *Structure) IsEmpty() bool {
	return s == nil || (len(s.Functions) == 0 && len(s.Loops) == 0 &&
		len(s.Conditionals) == 0 && len(s.Variables) == 0)
}

// DistinctLoops returns each loop kind once, in first-seen order.
func (s *Structure) DistinctLoops() []LoopKind {
	if s == nil {
		return nil
	}
	seen := make(map[LoopKind]bool, 2)
	var out []LoopKind
	for _, l := range s.Loops {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// HasVariable reports whether name was recorded as a bound identifier.
func (s *Structure) HasVariable(name string) bool {
	if s == nil {
		return false
	}
	for _, v := range s.Variables {
		if v == name {
			return true
		}
	}
	return false
}
