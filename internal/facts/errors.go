package facts

import "fmt"

// ParseFailure reports that a snippet is not valid source in the extractor's
// language. Extractors return it instead of partial facts.
type ParseFailure struct {
	Language string
	Line     int // 1-based, 0 when unknown
	Column   int // 1-based, 0 when unknown
	Reason   string
}

func (e *ParseFailure) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid %s code: %s (line %d, column %d)", e.Language, e.Reason, e.Line, e.Column)
	}
	return fmt.Sprintf("invalid %s code: %s", e.Language, e.Reason)
}
