package holon

// levelPalette cycles for levels beyond its length. Colors are stable across
// runs so merge products are reproducible byte for byte.
var levelPalette = []string{
	"#4fc3f7", // 0 quantum
	"#81c784", // 1 atomic
	"#ffb74d", // 2 molecular
	"#e57373", // 3 cellular
	"#ba68c8", // 4
	"#fff176", // 5
	"#a1887f", // 6
}

// LevelColor returns the display color for a holarchy level.
func LevelColor(level int) string {
	if level < 0 {
		level = 0
	}
	return levelPalette[level%len(levelPalette)]
}
