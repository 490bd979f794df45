package poster

import "testing"

func TestFitFontSizeKeepsBaseWhenTextFits(t *testing.T) {
	// 4 runes * 80 * 0.6 = 192 <= 900
	got := FitFontSize("JOHN", 80, 900, 0.6)
	if got != 80 {
		t.Fatalf("FitFontSize = %v, want 80", got)
	}
}

func TestFitFontSizeScalesDownProportionally(t *testing.T) {
	// 19 runes * 80 * 0.6 = 912 > 900 -> floor(80*900/912) = 78
	text := "CAPTAIN THUNDERBOLT"
	got := FitFontSize(text, 80, 900, 0.6)
	if got != 78 {
		t.Fatalf("FitFontSize = %v, want 78", got)
	}
	if got >= 80 {
		t.Fatalf("scaled size %v not strictly below base", got)
	}
}

func TestFitFontSizeTable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		base     float64
		maxWidth float64
		factor   float64
		want     float64
	}{
		{"empty text is a no-op", "", 80, 10, 0.6, 80},
		{"exact fit keeps base", "ABCD", 50, 120, 0.6, 50}, // 4*50*0.6 = 120
		{"long designation shrinks", "Senior Staff Software Engineer", 42, 400, 0.52, 25},
		// 3 runes (not 6 bytes) * 80 * 0.6 = 144 <= 200
		{"multibyte runes counted once", "ÅÄÖ", 80, 200, 0.6, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FitFontSize(tt.text, tt.base, tt.maxWidth, tt.factor)
			if got != tt.want {
				t.Fatalf("FitFontSize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestClampMin(t *testing.T) {
	if got := ClampMin(12, 40); got != 40 {
		t.Fatalf("ClampMin(12, 40) = %v, want 40", got)
	}
	if got := ClampMin(78, 40); got != 78 {
		t.Fatalf("ClampMin(78, 40) = %v, want 78", got)
	}
}

func TestFitThenClampNeverBelowFloor(t *testing.T) {
	// extreme text forces the estimate far beyond the budget
	text := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	fitted := FitFontSize(text, 80, 300, 0.6)
	if fitted >= 80 {
		t.Fatalf("fitted size %v should be below base", fitted)
	}
	clamped := ClampMin(fitted, 40)
	if clamped < 40 {
		t.Fatalf("clamped size %v fell below floor", clamped)
	}
}
