package render

import (
	"bytes"
	_ "embed"
	"strings"

	chromahtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extensionast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	alertcallouts "github.com/zmtcreative/gm-alert-callouts"
)

const codeStyle = "github"

// Renderer turns the inspector's markdown into HTML.
type Renderer struct {
	md  goldmark.Markdown
	css string
}

//go:embed page.html
var pageTemplate string

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			alertcallouts.AlertCallouts,
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithWrapperRenderer(renderCodeWrapper),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Renderer{md: md, css: highlightCSS()}
}

// highlightCSS returns the stylesheet matching the class names emitted for
// highlighted code blocks.
func highlightCSS() string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(codeStyle)); err != nil {
		return ""
	}
	return buf.String()
}

// ConvertFragment parses markdown source and returns the HTML fragment.
func (r *Renderer) ConvertFragment(source []byte) (string, error) {
	doc := r.md.Parser().Parse(text.NewReader(source))
	decorateAST(doc)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderShell is the page served before the first status push arrives over
// the websocket.
func (r *Renderer) RenderShell() string {
	return r.fill("")
}

func (r *Renderer) fill(content string) string {
	page := strings.Replace(pageTemplate, "{{STYLE}}", r.css, 1)
	return strings.Replace(page, "{{CONTENT}}", content, 1)
}

// decorateAST tags tables for the page stylesheet and makes links open
// outside the inspector tab.
func decorateAST(doc ast.Node) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case extensionast.KindTable:
			n.SetAttributeString("class", []byte("status-table"))
		case ast.KindLink, ast.KindAutoLink:
			n.SetAttributeString("target", []byte("_blank"))
			n.SetAttributeString("rel", []byte("noopener"))
		}
		return ast.WalkContinue, nil
	})
}

// renderCodeWrapper wraps highlighted code blocks in a div carrying the
// block language so the page can label it.
func renderCodeWrapper(w util.BufWriter, context highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</div>")
		return
	}
	_, _ = w.WriteString(`<div class="code-block"`)
	if lang, ok := codeLanguage(context); ok {
		_, _ = w.WriteString(` data-lang="`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(">")
}

func codeLanguage(context highlighting.CodeBlockContext) (string, bool) {
	if context == nil {
		return "", false
	}
	lang, ok := context.Language()
	if !ok || len(lang) == 0 {
		return "", false
	}
	return string(lang), true
}
