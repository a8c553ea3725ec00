package goextractor

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"

	"github.com/openitup/storycode/internal/facts"
)

// GoExtractor extracts structural facts from Go snippets using go/ast.
//
// Snippets do not need to be complete files: a snippet without a package
// clause is retried inside a synthetic package, then inside a synthetic
// function body. The wrappers never show up in the facts.
type GoExtractor struct{}

// New creates a new GoExtractor.
func New() *GoExtractor {
	return &GoExtractor{}
}

func (e *GoExtractor) Name() string {
	return "go"
}

func (e *GoExtractor) Aliases() []string {
	return []string{"golang"}
}

const (
	packageWrapper = "package snippet\n"
	bodyWrapper    = "package snippet\nfunc _() {\n"
)

// Extract parses src as Go and walks the resulting tree once.
func (e *GoExtractor) Extract(src []byte) (*facts.Structure, error) {
	fset := token.NewFileSet()

	if hasPackageClause(src) {
		f, err := parser.ParseFile(fset, "snippet.go", src, parser.SkipObjectResolution)
		if err != nil {
			return nil, parseFailure(err, 0)
		}
		return e.walk(f, nil), nil
	}

	declSrc := append([]byte(packageWrapper), src...)
	f, declErr := parser.ParseFile(fset, "snippet.go", declSrc, parser.SkipObjectResolution)
	if declErr == nil {
		return e.walk(f, nil), nil
	}

	bodySrc := append([]byte(bodyWrapper), src...)
	bodySrc = append(bodySrc, "\n}\n"...)
	f, err := parser.ParseFile(fset, "snippet.go", bodySrc, parser.SkipObjectResolution)
	if err == nil {
		var wrapper *ast.FuncDecl
		if len(f.Decls) > 0 {
			wrapper, _ = f.Decls[0].(*ast.FuncDecl)
		}
		return e.walk(f, wrapper), nil
	}

	// Report against the declaration-level attempt; it is the closer match
	// for anything that failed both ways.
	return nil, parseFailure(declErr, 1)
}

func (e *GoExtractor) walk(f *ast.File, wrapper *ast.FuncDecl) *facts.Structure {
	c := facts.NewCollector(e.Name())

	ast.Inspect(f, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.FuncDecl:
			if node != wrapper {
				c.Function(node.Name.Name)
				bindFields(c, node.Recv)
			}
			bindFields(c, node.Type.Params)
			bindFields(c, node.Type.Results)
		case *ast.FuncLit:
			bindFields(c, node.Type.Params)
			bindFields(c, node.Type.Results)
		case *ast.ForStmt:
			c.Loop(facts.LoopFor)
		case *ast.RangeStmt:
			c.Loop(facts.LoopFor)
			bindExpr(c, node.Key)
			bindExpr(c, node.Value)
		case *ast.IfStmt:
			c.Conditional()
		case *ast.AssignStmt:
			for _, lhs := range node.Lhs {
				bindExpr(c, lhs)
			}
		case *ast.GenDecl:
			if node.Tok != token.VAR {
				return true
			}
			for _, spec := range node.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, name := range vs.Names {
						bindExpr(c, name)
					}
				}
			}
		}
		return true
	})

	return c.Structure()
}

// bindExpr binds plain identifiers only; selector and index targets assign
// into existing values and bind nothing.
func bindExpr(c *facts.Collector, expr ast.Expr) {
	id, ok := expr.(*ast.Ident)
	if !ok || id.Name == "_" {
		return
	}
	c.Bind(id.Name)
}

func bindFields(c *facts.Collector, fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, field := range fields.List {
		for _, name := range field.Names {
			bindExpr(c, name)
		}
	}
}

func hasPackageClause(src []byte) bool {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", src, parser.PackageClauseOnly)
	return err == nil
}

// parseFailure converts a go/parser error, shifting line numbers back by the
// number of wrapper lines that were prepended.
func parseFailure(err error, wrapperLines int) *facts.ParseFailure {
	pf := &facts.ParseFailure{Language: "go", Reason: err.Error()}

	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		pf.Reason = first.Msg
		pf.Line = first.Pos.Line - wrapperLines
		pf.Column = first.Pos.Column
		if pf.Line < 1 {
			pf.Line = 1
		}
	}
	return pf
}
