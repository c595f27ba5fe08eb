package lineext

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles notices published as Markdown. The goldmark AST
// gives clean block boundaries; each heading, paragraph line, and list item
// becomes one extracted line.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var lines []string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			lines = append(lines, blockText(node, src))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			for _, ln := range strings.Split(blockText(node, src), "\n") {
				lines = append(lines, ln)
			}
			return ast.WalkSkipChildren, nil
		case *ast.TextBlock: // tight list items
			for _, ln := range strings.Split(blockText(node, src), "\n") {
				lines = append(lines, ln)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			for i := 0; i < n.Lines().Len(); i++ {
				seg := n.Lines().At(i)
				lines = append(lines, strings.TrimRight(string(seg.Value(src)), "\n"))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return buildResult([][]string{lines}), nil
}

// blockText collects the raw source text of a block node's lines.
func blockText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for i := 0; i < n.Lines().Len(); i++ {
		seg := n.Lines().At(i)
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimRight(string(seg.Value(src)), "\n"))
	}
	return sb.String()
}
