package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille patterns pack 2x4 dots per character cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid with one foreground color per
// character cell. The drawable area in sub-pixels is (Width*2) x
// (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	hues          [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		hues:   make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.hues[i] = make([]string, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set lights the sub-pixel at (x, y) and colors its cell. Dots share
// their cell's color, last write wins. Out-of-range coordinates are
// ignored.
func (c *Canvas) Set(x, y int, hue string) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if hue != "" {
		c.hues[row][col] = hue
	}
}

// Blot lights a filled square of radius r around (x, y). Composites
// render as blots sized by level.
func (c *Canvas) Blot(x, y, r int, hue string) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Set(x+dx, y+dy, hue)
		}
	}
}

// DrawLine draws with Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, hue string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0, hue)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Clear resets every cell to empty and uncolored.
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
			c.hues[i][j] = ""
		}
	}
}

func (c *Canvas) String() string {
	styles := make(map[string]lipgloss.Style)

	var b strings.Builder
	for row := range c.Grid {
		for col, r := range c.Grid[row] {
			hue := c.hues[row][col]
			if hue == "" || r == 0x2800 {
				b.WriteRune(r)
				continue
			}
			style, ok := styles[hue]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(hue))
				styles[hue] = style
			}
			b.WriteString(style.Render(string(r)))
		}
		b.WriteRune('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
