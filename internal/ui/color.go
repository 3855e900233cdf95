package ui

import "fmt"

// Color is a 16-bit RGB565 color as understood by the panel, or NoColor.
type Color int32

// NoColor marks a transparent or unset background.
const NoColor Color = -1

// Common panel colors
const (
	Black     Color = 0x0000
	White     Color = 0xFFFF
	Red       Color = 0xF800
	Green     Color = 0x07E0
	Blue      Color = 0x001F
	Yellow    Color = 0xFFE0
	Cyan      Color = 0x07FF
	Magenta   Color = 0xF81F
	Gray      Color = 0x8410
	DarkGray  Color = 0x4208
	LightGray Color = 0xC618
	Navy      Color = 0x000F
	Orange    Color = 0xFD20
)

// RGB packs 8-bit channels into an RGB565 color.
func RGB(r, g, b uint8) Color {
	return Color(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// IsSet reports whether c is a real color rather than NoColor.
func (c Color) IsSet() bool {
	return c >= 0
}

// RGB unpacks the color into 8-bit channels. NoColor unpacks to black.
func (c Color) RGB() (r, g, b uint8) {
	if !c.IsSet() {
		return 0, 0, 0
	}
	v := uint16(c)
	r5 := uint8(v >> 11 & 0x1F)
	g6 := uint8(v >> 5 & 0x3F)
	b5 := uint8(v & 0x1F)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// Hex returns the color in #rrggbb form, or "" for NoColor.
func (c Color) Hex() string {
	if !c.IsSet() {
		return ""
	}
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
