package draw

import "strconv"

// Color is a terminal palette entry. The zero value is an unset pixel.
type Color uint8

const (
	ColorNone Color = iota
	ColorRed
	ColorGreen
	ColorBlue
	ColorCyan
	ColorMagenta
	ColorYellow
	ColorWhite
	ColorGrey
)

// SGR foreground codes, indexed by Color. Background is +10.
var fgCodes = [...]int{
	ColorNone:    39,
	ColorRed:     31,
	ColorGreen:   32,
	ColorBlue:    34,
	ColorCyan:    36,
	ColorMagenta: 35,
	ColorYellow:  33,
	ColorWhite:   37,
	ColorGrey:    90,
}

// ownerColors is the player palette, in player order.
var ownerColors = [...]Color{
	ColorRed, ColorGreen, ColorBlue, ColorCyan,
	ColorMagenta, ColorYellow, ColorWhite, ColorGrey,
}

// OwnerColor returns the palette colour for a player index.
func OwnerColor(owner int) Color {
	if owner < 0 {
		return ColorWhite
	}
	return ownerColors[owner%len(ownerColors)]
}

func (c Color) fg() int {
	if int(c) >= len(fgCodes) {
		return fgCodes[ColorNone]
	}
	return fgCodes[c]
}

func (c Color) bg() int {
	return c.fg() + 10
}

// SGR returns the escape sequence that sets c as the foreground colour.
func (c Color) SGR() string {
	return "\033[" + strconv.Itoa(c.fg()) + "m"
}

// ResetSGR restores default colours.
const ResetSGR = "\033[0m"
