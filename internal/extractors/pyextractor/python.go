package pyextractor

import (
	"fmt"
	"strings"

	"github.com/openitup/storycode/internal/facts"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonExtractor extracts structural facts from Python snippets using tree-sitter.
type PythonExtractor struct{}

// New creates a new PythonExtractor.
func New() *PythonExtractor {
	return &PythonExtractor{}
}

func (e *PythonExtractor) Name() string {
	return "python"
}

func (e *PythonExtractor) Aliases() []string {
	return []string{"py", "python3"}
}

// Extract parses src as Python and walks the syntax tree once, depth-first.
// Any syntax error in the tree, or a construct the grammar tolerates but
// Python 3 rejects, yields a *facts.ParseFailure.
func (e *PythonExtractor) Extract(src []byte) (*facts.Structure, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(python.Language())); err != nil {
		return nil, &facts.ParseFailure{Language: e.Name(), Reason: fmt.Sprintf("loading grammar: %v", err)}
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, &facts.ParseFailure{Language: e.Name(), Reason: "parser produced no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxFailure(e.Name(), root, src)
	}
	if pf := checkConstructs(e.Name(), root, nil); pf != nil {
		return nil, pf
	}

	w := &walker{src: src, c: facts.NewCollector(e.Name())}
	w.visit(root, ctxLoad)
	return w.c.Structure(), nil
}

// bindCtx says whether identifiers under a node are read, assigned or declared
// as parameters.
type bindCtx int

const (
	ctxLoad bindCtx = iota
	ctxStore
	ctxParam
)

// nodeKind is the closed set of syntax variants the walker distinguishes.
// Everything else is kindOther and resets the binding context to load.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindFunctionDef
	kindForLoop
	kindWhileLoop
	kindIf
	kindName
	kindAssign
	kindNamedExpr
	kindAsPattern
	kindAsTarget
	kindExcept
	kindParameters
	kindDefaultParam
	kindTypedParam
	kindPattern
)

var nodeKinds = map[string]nodeKind{
	"function_definition":      kindFunctionDef,
	"for_statement":            kindForLoop,
	"while_statement":          kindWhileLoop,
	"if_statement":             kindIf,
	"elif_clause":              kindIf,
	"identifier":               kindName,
	"assignment":               kindAssign,
	"augmented_assignment":     kindAssign,
	"for_in_clause":            kindAssign,
	"named_expression":         kindNamedExpr,
	"as_pattern":               kindAsPattern,
	"as_pattern_target":        kindAsTarget,
	"except_clause":            kindExcept,
	"except_group_clause":      kindExcept,
	"parameters":               kindParameters,
	"lambda_parameters":        kindParameters,
	"default_parameter":        kindDefaultParam,
	"typed_default_parameter":  kindDefaultParam,
	"typed_parameter":          kindTypedParam,
	"pattern_list":             kindPattern,
	"tuple_pattern":            kindPattern,
	"list_pattern":             kindPattern,
	"list_splat_pattern":       kindPattern,
	"dictionary_splat_pattern": kindPattern,
	"parenthesized_expression": kindPattern,
	"tuple":                    kindPattern,
	"list":                     kindPattern,
	"expression_list":          kindPattern,
	"list_splat":               kindPattern,
	"parenthesized_list_splat": kindPattern,
}

func classify(n *sitter.Node) nodeKind {
	if !n.IsNamed() {
		return kindOther
	}
	return nodeKinds[n.Kind()]
}

type walker struct {
	src []byte
	c   *facts.Collector
}

// visit records the facts carried by n and always descends into its children,
// so nested constructs contribute to every matching accumulator.
func (w *walker) visit(n *sitter.Node, ctx bindCtx) {
	switch classify(n) {
	case kindFunctionDef:
		name := n.ChildByFieldName("name")
		if name != nil {
			w.c.Function(nodeText(name, w.src))
		}
		// The function's own name is a declaration, not a variable binding.
		w.visitChildren(n, ctxLoad, name)

	case kindForLoop:
		w.c.Loop(facts.LoopFor)
		w.visitTarget(n, "left", ctxStore)

	case kindWhileLoop:
		w.c.Loop(facts.LoopWhile)
		w.visitChildren(n, ctxLoad)

	case kindIf:
		w.c.Conditional()
		w.visitChildren(n, ctxLoad)

	case kindName:
		if ctx != ctxLoad {
			w.c.Bind(nodeText(n, w.src))
		}

	case kindAssign:
		w.visitTarget(n, "left", ctxStore)

	case kindNamedExpr:
		w.visitTarget(n, "name", ctxStore)

	case kindAsPattern:
		w.visitTarget(n, "alias", ctxStore)

	case kindAsTarget:
		w.visitAsTarget(n)

	case kindExcept:
		w.visitExcept(n)

	case kindParameters:
		w.visitChildren(n, ctxParam)

	case kindDefaultParam:
		w.visitTarget(n, "name", ctx)

	case kindTypedParam:
		// typed_parameter has no name field: everything but the annotation is
		// the declared name (identifier or splat pattern).
		w.visitChildren(n, ctx, n.ChildByFieldName("type"))
		if typ := n.ChildByFieldName("type"); typ != nil {
			w.visit(typ, ctxLoad)
		}

	case kindPattern:
		w.visitChildren(n, ctx)

	default:
		w.visitChildren(n, ctxLoad)
	}
}

// visitChildren visits every child of n with ctx, skipping the given nodes.
func (w *walker) visitChildren(n *sitter.Node, ctx bindCtx, skip ...*sitter.Node) {
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil || isAny(child, skip) {
			continue
		}
		w.visit(child, ctx)
	}
}

// visitTarget visits the named field with ctx and every other child as a load.
func (w *walker) visitTarget(n *sitter.Node, field string, ctx bindCtx) {
	target := n.ChildByFieldName(field)
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if target != nil && sameNode(child, target) {
			w.visit(child, ctx)
			continue
		}
		w.visit(child, ctxLoad)
	}
}

// visitAsTarget handles the alias of `with x as y` / `except E as e`. The
// grammar renames the aliased expression itself, so a bare name has no
// children of its own.
func (w *walker) visitAsTarget(n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		if name := nodeText(n, w.src); isIdentifier(name) {
			w.c.Bind(name)
		}
		return
	}
	// `as self.x` or `as d[k]` binds nothing.
	for i := range n.ChildCount() {
		if child := n.Child(i); child != nil && !child.IsNamed() && (child.Kind() == "." || child.Kind() == "[") {
			w.visitChildren(n, ctxLoad)
			return
		}
	}
	w.visitChildren(n, ctxStore)
}

// visitExcept binds the expression following an `as` keyword when the grammar
// does not wrap it in an as_pattern.
func (w *walker) visitExcept(n *sitter.Node) {
	afterAs := false
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if !child.IsNamed() && child.Kind() == "as" {
			afterAs = true
			continue
		}
		if afterAs && child.IsNamed() {
			w.visit(child, ctxStore)
			afterAs = false
			continue
		}
		w.visit(child, ctxLoad)
	}
}

// syntaxFailure locates the first ERROR or MISSING node in document order.
func syntaxFailure(language string, root *sitter.Node, src []byte) *facts.ParseFailure {
	bad := firstError(root)
	if bad == nil {
		return &facts.ParseFailure{Language: language, Reason: "syntax error"}
	}

	reason := "syntax error"
	if bad.IsMissing() {
		reason = fmt.Sprintf("missing %q", bad.Kind())
	} else if snippet := strings.TrimSpace(nodeText(bad, src)); snippet != "" {
		reason = fmt.Sprintf("unexpected %q", truncate(snippet, 40))
	}
	return failureAt(language, bad, reason)
}

// checkConstructs finds the first construct that tree-sitter-python accepts
// but the Python 3 compiler does not: empty or unindented bodies, Python 2
// print/exec statements, and clauses dedented to a column other than their
// statement's.
func checkConstructs(language string, n, parent *sitter.Node) *facts.ParseFailure {
	switch kind := n.Kind(); kind {
	case "block":
		if !hasStatement(n) {
			return failureAt(language, n, "expected an indented block")
		}
	case "print_statement", "exec_statement":
		return failureAt(language, n, fmt.Sprintf("Python 2 %s statement", strings.TrimSuffix(kind, "_statement")))
	case "elif_clause", "else_clause", "except_clause", "except_group_clause", "finally_clause":
		if parent != nil && n.StartPosition().Column != parent.StartPosition().Column {
			keyword := strings.TrimSuffix(strings.TrimSuffix(kind, "_clause"), "_group")
			return failureAt(language, n, fmt.Sprintf("unindent of %q does not match its statement", keyword))
		}
	}

	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if pf := checkConstructs(language, child, n); pf != nil {
			return pf
		}
	}
	return nil
}

func hasStatement(block *sitter.Node) bool {
	for i := range block.ChildCount() {
		child := block.Child(i)
		if child != nil && child.IsNamed() && child.Kind() != "comment" {
			return true
		}
	}
	return false
}

func failureAt(language string, n *sitter.Node, reason string) *facts.ParseFailure {
	pos := n.StartPosition()
	return &facts.ParseFailure{
		Language: language,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
		Reason:   reason,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}

// sameNode compares nodes by span and kind; the bindings hand out fresh
// values for the same underlying node.
func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

func isAny(n *sitter.Node, nodes []*sitter.Node) bool {
	for _, other := range nodes {
		if other != nil && sameNode(n, other) {
			return true
		}
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7f {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
