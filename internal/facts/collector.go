package facts

// Collector accumulates facts during a single traversal. It is not safe for
// concurrent use; extractors create one per call.
type Collector struct {
	language string
	s        Structure
	bound    map[string]bool
}

// NewCollector creates a collector for the given language.
func NewCollector(language string) *Collector {
	return &Collector{
		language: language,
		bound:    make(map[string]bool),
	}
}

// Function records a function declaration.
func (c *Collector) Function(name string) {
	if name == "" {
		return
	}
	c.s.Functions = append(c.s.Functions, name)
}

// Loop records a loop construct.
func (c *Collector) Loop(kind LoopKind) {
	c.s.Loops = append(c.s.Loops, kind)
}

// Conditional records an if/elif construct.
func (c *Collector) Conditional() {
	c.s.Conditionals = append(c.s.Conditionals, ConditionalIf)
}

// Bind records an identifier bound by assignment or parameter declaration.
// Repeated bindings of the same name are collapsed.
func (c *Collector) Bind(name string) {
	if name == "" || c.bound[name] {
		return
	}
	c.bound[name] = true
	c.s.Variables = append(c.s.Variables, name)
}

// Structure returns the accumulated facts. Accumulators are never nil so the
// JSON form always carries empty arrays rather than nulls.
func (c *Collector) Structure() *Structure {
	out := c.s
	out.Language = c.language
	if out.Functions == nil {
		out.Functions = []string{}
	}
	if out.Loops == nil {
		out.Loops = []LoopKind{}
	}
	if out.Conditionals == nil {
		out.Conditionals = []string{}
	}
	if out.Variables == nil {
		out.Variables = []string{}
	}
	return &out
}
