package csvio

import "strings"

// WriteDocument renders rows as a delimited-text document. A byte-order
// mark is prepended for spreadsheet compatibility and rows are terminated
// with CRLF. Cells containing a comma, quote, or newline are quoted, with
// internal quotes doubled, so a re-import reproduces the cell content
// exactly.
func WriteDocument(rows [][]string) string {
	var b strings.Builder
	b.WriteRune(bom)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCell(&b, cell)
		}
		b.WriteString("\r\n")
	}
	return b.String()
}

func writeCell(b *strings.Builder, cell string) {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		b.WriteString(cell)
		return
	}
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
	b.WriteByte('"')
}
