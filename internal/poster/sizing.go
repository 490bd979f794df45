package poster

import (
	"math"
	"unicode/utf8"
)

// FitFontSize computes the font size that keeps text within maxWidth pixels,
// starting from base. Width is estimated as runes * base * glyphWidthFactor, a
// cheap proxy for a full shaping pass; the factor differs per field to account
// for the faces' different weights and casing. If the estimate already fits,
// base is returned unchanged, otherwise the size is scaled down proportionally
// and floored to an integer value.
//
// Empty text returns base unchanged; callers skip rendering empty fields.
func FitFontSize(text string, base, maxWidth, glyphWidthFactor float64) float64 {
	if text == "" || base <= 0 {
		return base
	}
	estimated := float64(utf8.RuneCountInString(text)) * base * glyphWidthFactor
	if estimated <= maxWidth {
		return base
	}
	return math.Floor(base * maxWidth / estimated)
}

// ClampMin raises size to floor when it fell below it. The floor keeps text
// legible; once it applies, the rendered width is allowed to exceed the
// requested bound.
func ClampMin(size, floor float64) float64 {
	if size < floor {
		return floor
	}
	return size
}
