// Package csvio implements the delimited-text format used by the bulk
// import/export surface: comma-separated cells, double-quote quoting with
// "" escapes, and cell content that may legitimately contain commas and
// newlines. The scanner is a two-state automaton over runes rather than a
// line splitter, because a newline inside an open quote is cell content,
// not a record separator.
package csvio

const bom = '\uFEFF'

// Scanner walks a text blob one row at a time.
type Scanner struct {
	runes []rune
	pos   int
}

// NewScanner returns a scanner over the given document. A leading UTF-8
// byte-order mark is skipped if present.
func NewScanner(text string) *Scanner {
	runes := []rune(text)
	if len(runes) > 0 && runes[0] == bom {
		runes = runes[1:]
	}
	return &Scanner{runes: runes}
}

// Next returns the next row of cells, or ok=false at end of input. A
// trailing row without a final newline is still returned.
func (s *Scanner) Next() (row []string, ok bool) {
	if s.pos >= len(s.runes) {
		return nil, false
	}

	var cell []rune
	inQuote := false
	started := false

	flushCell := func() {
		row = append(row, string(cell))
		cell = cell[:0]
	}

	for s.pos < len(s.runes) {
		r := s.runes[s.pos]
		s.pos++
		started = true

		if inQuote {
			if r == '"' {
				if s.pos < len(s.runes) && s.runes[s.pos] == '"' {
					cell = append(cell, '"')
					s.pos++
					continue
				}
				inQuote = false
				continue
			}
			cell = append(cell, r)
			continue
		}

		switch r {
		case '"':
			inQuote = true
		case ',':
			flushCell()
		case '\n':
			flushCell()
			return row, true
		case '\r':
			// \r\n is one terminator; a lone \r also ends the row.
			if s.pos < len(s.runes) && s.runes[s.pos] == '\n' {
				s.pos++
			}
			flushCell()
			return row, true
		default:
			cell = append(cell, r)
		}
	}

	if started {
		flushCell()
		return row, true
	}
	return nil, false
}

// Parse scans the whole document into rows.
func Parse(text string) [][]string {
	s := NewScanner(text)
	var rows [][]string
	for {
		row, ok := s.Next()
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}
