package model

// Palette is the fixed set of display colors boards and cards are
// assigned from at creation.
var Palette = []string{
	"#4C5251", "#323232", "#034649", "#2B3C4A", "#494E13", "#544545",
	"#430405", "#250E2A", "#343B51", "#1F4239", "#403E1C", "#2C1618",
	"#142E32", "#1B1B23",
}

// PickColor maps a seed onto Palette. Pure, so creation stays
// deterministic under test; callers pass a clock- or rand-derived seed.
func PickColor(seed int64) string {
	n := int64(len(Palette))
	return Palette[((seed%n)+n)%n]
}
