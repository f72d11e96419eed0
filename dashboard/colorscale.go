package dashboard

import (
	"fmt"
	"math"

	"sanket/monitor/health"
)

type rgb struct {
	r, g, b uint8
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// rdYlGn is the 11-class diverging red-yellow-green palette, low to high.
var rdYlGn = []rgb{
	{165, 0, 38},
	{215, 48, 39},
	{244, 109, 67},
	{253, 174, 97},
	{254, 224, 139},
	{255, 255, 191},
	{217, 239, 139},
	{166, 217, 106},
	{102, 189, 99},
	{26, 152, 80},
	{0, 104, 55},
}

// ColorScale maps health scores in [Min, Max] onto the red-yellow-green palette.
type ColorScale struct {
	Min float64
	Max float64
}

// NewColorScale spans the scores present in res.
func NewColorScale(res health.Result) (ColorScale, error) {
	lowest, highest, err := res.ScoreRange()
	if err != nil {
		return ColorScale{}, err
	}
	return ColorScale{Min: lowest, Max: highest}, nil
}

// Position returns where score falls on the scale, in [0,1]. A scale whose
// domain is a single value puts everything in the middle.
func (s ColorScale) Position(score float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	return math.Max(0, math.Min(1, (score-s.Min)/(s.Max-s.Min)))
}

// Color returns the hex colour of score.
func (s ColorScale) Color(score float64) string {
	return colorAt(s.Position(score)).hex()
}

// Stops returns n evenly spaced colours from low to high, for the legend.
func (s ColorScale) Stops(n int) []string {
	if n < 2 {
		n = 2
	}
	out := make([]string, n)
	for i := range out {
		out[i] = colorAt(float64(i) / float64(n-1)).hex()
	}
	return out
}

func colorAt(pos float64) rgb {
	scaled := pos * float64(len(rdYlGn)-1)
	i := int(scaled)
	if i >= len(rdYlGn)-1 {
		return rdYlGn[len(rdYlGn)-1]
	}
	frac := scaled - float64(i)
	a, b := rdYlGn[i], rdYlGn[i+1]
	return rgb{
		r: lerp(a.r, b.r, frac),
		g: lerp(a.g, b.g, frac),
		b: lerp(a.b, b.b, frac),
	}
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + frac*(float64(b)-float64(a))))
}
