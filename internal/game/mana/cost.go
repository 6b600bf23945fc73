package mana

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cost represents a parsed mana cost.
type Cost struct {
	Generic   int
	White     int
	Blue      int
	Black     int
	Red       int
	Green     int
	Colorless int
}

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseCost parses a mana cost string such as "{1}{G}" or "{2}{R}{R}".
// Supports generic ({1}, {2}, ...) and single-color ({W} {U} {B} {R} {G} {C})
// symbols.
func ParseCost(costStr string) (*Cost, error) {
	cost := &Cost{}
	if costStr == "" {
		return cost, nil
	}

	matches := symbolPattern.FindAllStringSubmatch(costStr, -1)
	for _, match := range matches {
		symbol := strings.ToUpper(strings.TrimSpace(match[1]))
		switch symbol {
		case "W":
			cost.White++
		case "U":
			cost.Blue++
		case "B":
			cost.Black++
		case "R":
			cost.Red++
		case "G":
			cost.Green++
		case "C":
			cost.Colorless++
		default:
			num, err := strconv.Atoi(symbol)
			if err != nil {
				return nil, fmt.Errorf("unknown mana symbol {%s}", symbol)
			}
			cost.Generic += num
		}
	}
	return cost, nil
}

// MustParseCost is ParseCost for statically known cost strings.
func MustParseCost(costStr string) *Cost {
	cost, err := ParseCost(costStr)
	if err != nil {
		panic(err)
	}
	return cost
}

// ConvertedCost returns the total mana value of the cost.
func (c *Cost) ConvertedCost() int {
	return c.Generic + c.White + c.Blue + c.Black + c.Red + c.Green + c.Colorless
}

// Colors returns the color names appearing in the cost, in WUBRG order.
func (c *Cost) Colors() []string {
	var colors []string
	if c.White > 0 {
		colors = append(colors, "white")
	}
	if c.Blue > 0 {
		colors = append(colors, "blue")
	}
	if c.Black > 0 {
		colors = append(colors, "black")
	}
	if c.Red > 0 {
		colors = append(colors, "red")
	}
	if c.Green > 0 {
		colors = append(colors, "green")
	}
	return colors
}

// String renders the cost back into symbol notation.
func (c *Cost) String() string {
	var b strings.Builder
	if c.Generic > 0 {
		fmt.Fprintf(&b, "{%d}", c.Generic)
	}
	writeSymbols(&b, "W", c.White)
	writeSymbols(&b, "U", c.Blue)
	writeSymbols(&b, "B", c.Black)
	writeSymbols(&b, "R", c.Red)
	writeSymbols(&b, "G", c.Green)
	writeSymbols(&b, "C", c.Colorless)
	if b.Len() == 0 {
		return "{0}"
	}
	return b.String()
}

func writeSymbols(b *strings.Builder, symbol string, count int) {
	for i := 0; i < count; i++ {
		fmt.Fprintf(b, "{%s}", symbol)
	}
}

func (c *Cost) colored(manaType Type) int {
	switch manaType {
	case White:
		return c.White
	case Blue:
		return c.Blue
	case Black:
		return c.Black
	case Red:
		return c.Red
	case Green:
		return c.Green
	case Colorless:
		return c.Colorless
	default:
		return 0
	}
}
