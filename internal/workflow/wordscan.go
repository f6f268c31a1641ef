package workflow

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// selectionOrWord extracts the implicit query for a key-bound operation:
// the visual selection when one is active, otherwise the word under the
// cursor. Empty means the operation should prompt instead.
func (o *Orchestrator) selectionOrWord() string {
	sel := o.hostctx.Selection
	if sel == nil {
		return ""
	}

	if text, ok := sel.Selection(); ok {
		return strings.TrimSpace(text)
	}

	line, col := sel.CursorLine()
	return wordAt(line, col)
}

// wordAt returns the word containing the byte offset col in line, or ""
// when the offset is out of range or rests on a non-word rune.
func wordAt(line string, col int) string {
	if col < 0 || col >= len(line) {
		return ""
	}

	// Snap to the start of the rune containing col.
	start := col
	for start > 0 && !utf8.RuneStart(line[start]) {
		start--
	}

	r, _ := utf8.DecodeRuneInString(line[start:])
	if !isWordRune(r) {
		return ""
	}

	begin := start
	for begin > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:begin])
		if !isWordRune(r) {
			break
		}
		begin -= size
	}

	end := start
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}

	return line[begin:end]
}

// isWordRune reports whether r belongs to a word (letter, digit, or
// underscore).
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
