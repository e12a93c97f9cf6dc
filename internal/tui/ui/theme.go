package ui

import "github.com/gdamore/tcell/v2"

// Theme is the TUI palette.
type Theme struct {
	BgColor           tcell.Color
	FgColor           tcell.Color
	BorderColor       tcell.Color
	BorderFocusColor  tcell.Color
	TableHeaderFg     tcell.Color
	TableHeaderBg     tcell.Color
	TableCursorFg     tcell.Color
	TableCursorBg     tcell.Color
	CrumbActiveFg     tcell.Color
	CrumbActiveBg     tcell.Color
	CrumbInactiveFg   tcell.Color
	CrumbInactiveBg   tcell.Color
	MenuKeyColor      tcell.Color
	NumericKeyColor   tcell.Color
	TitleColor        tcell.Color
	CounterColor      tcell.Color
	FlashInfoColor    tcell.Color
	FlashWarnColor    tcell.Color
	FlashErrColor     tcell.Color
	PromptBorderColor tcell.Color
	TickColor         tcell.Color
	TickReadColor     tcell.Color
	TypingColor       tcell.Color
	MarkerColor       tcell.Color
	SelfColor         tcell.Color
	PeerColor         tcell.Color
}

var (
	teal      = tcell.NewHexColor(0x00a884)
	darkTeal  = tcell.NewHexColor(0x005c4b)
	panel     = tcell.NewHexColor(0x111b21)
	panelText = tcell.NewHexColor(0xd1d7db)
	mutedText = tcell.NewHexColor(0x8696a0)
	readBlue  = tcell.NewHexColor(0x53bdeb)
)

// DefaultTheme is a dark green palette in the style of mobile chat apps.
func DefaultTheme() *Theme {
	return &Theme{
		BgColor:          panel,
		FgColor:          panelText,
		BorderColor:      darkTeal,
		BorderFocusColor: teal,

		TableHeaderFg: mutedText,
		TableHeaderBg: panel,
		TableCursorFg: tcell.ColorWhite,
		TableCursorBg: darkTeal,

		CrumbActiveFg:   panel,
		CrumbActiveBg:   teal,
		CrumbInactiveFg: panelText,
		CrumbInactiveBg: darkTeal,

		MenuKeyColor:    teal,
		NumericKeyColor: tcell.ColorGold,
		TitleColor:      teal,
		CounterColor:    mutedText,

		FlashInfoColor:    panelText,
		FlashWarnColor:    tcell.ColorOrange,
		FlashErrColor:     tcell.ColorOrangeRed,
		PromptBorderColor: teal,

		TickColor:     mutedText,
		TickReadColor: readBlue,
		TypingColor:   teal,
		MarkerColor:   tcell.ColorGold,
		SelfColor:     tcell.NewHexColor(0x25d366),
		PeerColor:     readBlue,
	}
}

// Hex returns c in a form tview color tags accept.
func Hex(c tcell.Color) string {
	return colorName(c)
}
