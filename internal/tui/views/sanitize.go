package views

import "strings"

// droppedRunes are stripped from user-supplied text before it reaches tview.
// Emoji modifiers and joiners make tcell miscount cell widths; bidi controls
// let a contact name or message reorder the text around it.
var droppedRunes = [][2]rune{
	{0x1F3FB, 0x1F3FF}, // skin tone modifiers
	{0x200D, 0x200D},   // zero width joiner
	{0xFE00, 0xFE0F},   // variation selectors
	{0xE0100, 0xE01EF}, // variation selectors supplement
	{0x202A, 0x202E},   // bidi embeddings and overrides
	{0x2066, 0x2069},   // bidi isolates
}

// sanitizeForTerminal drops the runes above and any C0 control other than
// newline and tab, so e.g. a thumbs-up with a skin tone renders as a plain
// two-cell thumbs-up.
func sanitizeForTerminal(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		for _, rg := range droppedRunes {
			if r >= rg[0] && r <= rg[1] {
				return -1
			}
		}
		return r
	}, s)
}
