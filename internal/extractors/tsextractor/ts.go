package tsextractor

import (
	"fmt"
	"strings"

	"github.com/openitup/storycode/internal/facts"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// TSExtractor extracts structural facts from TypeScript/JavaScript snippets using tree-sitter.
type TSExtractor struct {
	tsx bool
}

// New creates a new TSExtractor for plain TypeScript (and JavaScript).
func New() *TSExtractor {
	return &TSExtractor{}
}

// NewTSX creates a TSExtractor that accepts JSX syntax.
func NewTSX() *TSExtractor {
	return &TSExtractor{tsx: true}
}

func (e *TSExtractor) Name() string {
	if e.tsx {
		return "tsx"
	}
	return "typescript"
}

func (e *TSExtractor) Aliases() []string {
	if e.tsx {
		return []string{"jsx"}
	}
	return []string{"ts", "javascript", "js"}
}

// Extract parses src and walks the syntax tree once, depth-first.
func (e *TSExtractor) Extract(src []byte) (*facts.Structure, error) {
	lang := typescript.LanguageTypescript()
	if e.tsx {
		lang = typescript.LanguageTSX()
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitter.NewLanguage(lang)); err != nil {
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

	w := &walker{src: src, c: facts.NewCollector(e.Name())}
	w.visit(root, ctxLoad)
	return w.c.Structure(), nil
}

type bindCtx int

const (
	ctxLoad bindCtx = iota
	ctxStore
	ctxParam
)

type nodeKind int

const (
	kindOther nodeKind = iota
	kindFunctionDecl
	kindForLoop
	kindForInLoop
	kindWhileLoop
	kindIf
	kindName
	kindDeclarator
	kindAssign
	kindParameters
	kindParameter
	kindArrow
	kindCatch
	kindPairPattern
	kindDefaultPattern
	kindPattern
)

var nodeKinds = map[string]nodeKind{
	"function_declaration":                  kindFunctionDecl,
	"generator_function_declaration":        kindFunctionDecl,
	"method_definition":                     kindFunctionDecl,
	"for_statement":                         kindForLoop,
	"for_in_statement":                      kindForInLoop,
	"while_statement":                       kindWhileLoop,
	"do_statement":                          kindWhileLoop,
	"if_statement":                          kindIf,
	"identifier":                            kindName,
	"shorthand_property_identifier_pattern": kindName,
	"variable_declarator":                   kindDeclarator,
	"assignment_expression":                 kindAssign,
	"augmented_assignment_expression":       kindAssign,
	"formal_parameters":                     kindParameters,
	"required_parameter":                    kindParameter,
	"optional_parameter":                    kindParameter,
	"arrow_function":                        kindArrow,
	"catch_clause":                          kindCatch,
	"pair_pattern":                          kindPairPattern,
	"assignment_pattern":                    kindDefaultPattern,
	"object_assignment_pattern":             kindDefaultPattern,
	"array_pattern":                         kindPattern,
	"object_pattern":                        kindPattern,
	"rest_pattern":                          kindPattern,
	"parenthesized_expression":              kindPattern,
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

func (w *walker) visit(n *sitter.Node, ctx bindCtx) {
	switch classify(n) {
	case kindFunctionDecl:
		name := n.ChildByFieldName("name")
		if name != nil {
			w.c.Function(nodeText(name, w.src))
		}
		w.visitChildren(n, ctxLoad, name)

	case kindForLoop:
		w.c.Loop(facts.LoopFor)
		w.visitChildren(n, ctxLoad)

	case kindForInLoop:
		// for…in and for…of share a node; the left side is bound.
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

	case kindDeclarator:
		// `const f = () => …` declares a function named after the binding.
		name := n.ChildByFieldName("name")
		if value := n.ChildByFieldName("value"); name != nil && value != nil && name.Kind() == "identifier" {
			switch value.Kind() {
			case "arrow_function", "function_expression", "function", "generator_function":
				w.c.Function(nodeText(name, w.src))
			}
		}
		w.visitTarget(n, "name", ctxStore)

	case kindAssign:
		w.visitTarget(n, "left", ctxStore)

	case kindParameters:
		w.visitChildren(n, ctxParam)

	case kindParameter:
		w.visitTarget(n, "pattern", ctx)

	case kindArrow:
		if n.ChildByFieldName("parameter") != nil {
			w.visitTarget(n, "parameter", ctxParam)
			return
		}
		w.visitChildren(n, ctxLoad)

	case kindCatch:
		w.visitTarget(n, "parameter", ctxStore)

	case kindPairPattern:
		w.visitTarget(n, "value", ctx)

	case kindDefaultPattern:
		w.visitTarget(n, "left", ctx)

	case kindPattern:
		w.visitChildren(n, ctx)

	default:
		w.visitChildren(n, ctxLoad)
	}
}

func (w *walker) visitChildren(n *sitter.Node, ctx bindCtx, skip ...*sitter.Node) {
	for i := range n.ChildCount() {
		child := n.Child(i)
		if child == nil || isAny(child, skip) {
			continue
		}
		w.visit(child, ctx)
	}
}

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

func syntaxFailure(language string, root *sitter.Node, src []byte) *facts.ParseFailure {
	bad := firstError(root)
	if bad == nil {
		return &facts.ParseFailure{Language: language, Reason: "syntax error"}
	}

	pos := bad.StartPosition()
	reason := "syntax error"
	if bad.IsMissing() {
		reason = fmt.Sprintf("missing %q", bad.Kind())
	} else if snippet := strings.TrimSpace(nodeText(bad, src)); snippet != "" {
		if len(snippet) > 40 {
			snippet = snippet[:40] + "..."
		}
		reason = fmt.Sprintf("unexpected %q", snippet)
	}
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
		if child := n.Child(i); child != nil {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}

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
