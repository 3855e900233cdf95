package settings

import "github.com/stlalpha/pocketscene/internal/ui"

// Themes lists the built-in palettes, indexed by theme id.
var Themes = []ui.Theme{
	{
		ID:         0,
		Name:       "Classic",
		Background: ui.Black,
		Foreground: ui.White,
		Title:      ui.Cyan,
		Highlight:  ui.Navy,
		Cursor:     ui.Green,
		Modal:      ui.DarkGray,
		Error:      ui.Red,
		Accent:     ui.Yellow,
	},
	{
		ID:         1,
		Name:       "Paper",
		Background: ui.White,
		Foreground: ui.Black,
		Title:      ui.Blue,
		Highlight:  ui.Cyan,
		Cursor:     ui.Blue,
		Modal:      ui.LightGray,
		Error:      ui.Red,
		Accent:     ui.Magenta,
	},
	{
		ID:         2,
		Name:       "Amber",
		Background: ui.Black,
		Foreground: ui.Orange,
		Title:      ui.Yellow,
		Highlight:  ui.RGB(96, 48, 0),
		Cursor:     ui.Orange,
		Modal:      ui.RGB(40, 24, 0),
		Error:      ui.Red,
		Accent:     ui.Yellow,
	},
	{
		ID:         3,
		Name:       "Ocean",
		Background: ui.Navy,
		Foreground: ui.White,
		Title:      ui.Cyan,
		Highlight:  ui.Blue,
		Cursor:     ui.Yellow,
		Modal:      ui.DarkGray,
		Error:      ui.Red,
		Accent:     ui.Green,
	},
}

// Theme returns the palette with the given id, falling back to the first.
func Theme(id int) ui.Theme {
	if id < 0 || id >= len(Themes) {
		return Themes[0]
	}
	return Themes[id]
}
