package ui

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"seqtrack/adapters/excel"
)

// HelpMarkdown describes the upload layout as markdown
func HelpMarkdown(layout excel.Layout, maxUploadBytes int64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Upload one run sheet workbook (%s) of at most %d MB.\n\n",
		strings.Join(excel.SupportedExtensions, ", "), maxUploadBytes/(1024*1024))
	fmt.Fprintf(&b, "The workbook needs at least **%d** sheets. Sheets are matched by position, not by name.\n\n", layout.MinSheets)

	b.WriteString("| Field | Sheet | Cell | Read as |\n")
	b.WriteString("|-------|-------|------|---------|\n")
	for _, f := range layout.Fields {
		read := "stored value"
		if f.Kind == excel.KindDate {
			read = fmt.Sprintf("displayed text, first %d characters", excel.DateWidth)
		}
		fmt.Fprintf(&b, "| `%s` | %d | %s | %s |\n", f.Name, f.Ref.Sheet+1, f.Ref.Cell, read)
	}

	b.WriteString("\nEmpty cells are stored as empty text. ")
	b.WriteString("Several customers go in one cell separated by commas, ")
	b.WriteString("with their iLab IDs in the same order.\n\n")
	b.WriteString("Each customer becomes one table row with project ID `{sequence}_{sequencingID}_{surname}`.\n")
	return b.String()
}

// RenderHelp renders HelpMarkdown to HTML
func RenderHelp(layout excel.Layout, maxUploadBytes int64) (template.HTML, error) {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := markdown.ToHTML([]byte(HelpMarkdown(layout, maxUploadBytes)), p, renderer)
	if len(out) == 0 {
		return "", fmt.Errorf("empty help page")
	}
	return template.HTML(out), nil
}
