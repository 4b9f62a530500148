// Package casebook reads compiler test cases written as Markdown. Each case
// starts at a "Test: <name>" heading and holds one cep fence with the source
// followed by one or more assertion fences.
package casebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language that carries cepheid source.
const InputFence = "cep"

// Kind names what an assertion fence checks.
type Kind string

const (
	KindAST          Kind = "ast"           // module S-expression, compared exactly
	KindIR           Kind = "ir"            // lowered program text, compared exactly
	KindAsm          Kind = "asm"           // must appear in the assembly
	KindAsmAbsent    Kind = "asm-absent"    // must not appear in the assembly
	KindCompileError Kind = "compile-error" // must appear in the error message
)

var kinds = map[string]Kind{
	string(KindAST):          KindAST,
	string(KindIR):           KindIR,
	string(KindAsm):          KindAsm,
	string(KindAsmAbsent):    KindAsmAbsent,
	string(KindCompileError): KindCompileError,
}

type Assertion struct {
	Kind    Kind
	Content string
	Line    int
}

type Case struct {
	Name       string
	Source     string
	Line       int // line of the heading
	Assertions []Assertion
}

// Expect returns the assertions of the given kind.
func (c *Case) Expect(kind Kind) []Assertion {
	var out []Assertion
	for _, a := range c.Assertions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var cur *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			name, ok := strings.CutPrefix(heading, "Test: ")
			if !ok {
				return ast.WalkSkipChildren, nil
			}
			if cur != nil {
				if err := validate(cur); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *cur)
			}
			cur = &Case{Name: strings.TrimSpace(name), Line: lineOf(n, markdown)}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)
			content := strings.TrimRight(blockContent(n, markdown), "\n")

			if cur == nil {
				if lang == InputFence || kinds[lang] != "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
				}
				return ast.WalkContinue, nil
			}

			if lang == InputFence {
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test %q", line, InputFence, cur.Name)
				}
				cur.Source = content
				return ast.WalkContinue, nil
			}

			kind, ok := kinds[lang]
			if !ok {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, cur.Name)
			}
			cur.Assertions = append(cur.Assertions, Assertion{Kind: kind, Content: content, Line: line})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if cur != nil {
		if err := validate(cur); err != nil {
			return nil, err
		}
		cases = append(cases, *cur)
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("line %d: test %q has no %s fence", c.Line, c.Name, InputFence)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("line %d: test %q has no assertions", c.Line, c.Name)
	}
	if len(c.Expect(KindCompileError)) > 0 && len(c.Assertions) > len(c.Expect(KindCompileError)) {
		return fmt.Errorf("line %d: test %q mixes compile-error with output assertions", c.Line, c.Name)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line of the node's first content line. Fenced
// blocks report the line after the opening fence.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
