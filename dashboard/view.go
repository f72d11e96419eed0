package dashboard

import (
	"fmt"
	"math"
	"time"

	"sanket/monitor/datalake/model"
	"sanket/monitor/health"
)

// Chart geometry, in SVG pixels.
const (
	chartWidth   = 960
	chartHeight  = 500
	chartMargin  = 70
	markerSize   = 45
	legendStops  = 11
	scoreFormat  = "%.1f%%"
	tileCaption  = "Failures: %d | Latency: %d"
	defaultTitle = "SANKET | Systemic Analysis of Network-Knot Error Tracking"
)

// Node is one service node of the chart.
type Node struct {
	Category model.Category
	X        float64
	Y        float64
	Size     int
	Color    string
	Score    float64
}

// Line is an edge in SVG coordinates.
type Line struct {
	From model.Category
	To   model.Category
	X1   float64
	Y1   float64
	X2   float64
	Y2   float64
}

// Tile is the metric card of one category.
type Tile struct {
	Category model.Category
	Score    string
	Caption  string
	Status   health.Status
	Color    string
	Placed   bool
}

// View is everything the page needs, already laid out.
type View struct {
	Title       string
	Source      string
	GeneratedAt time.Time
	Width       int
	Height      int
	Nodes       []Node
	Lines       []Line
	Tiles       []Tile
	Unplaced    []model.Category
	Scale       ColorScale
	Legend      []string
}

// BuildView lays out res on topology.
func BuildView(res health.Result, topology Topology, source string, now time.Time) (View, error) {
	scale, err := NewColorScale(res)
	if err != nil {
		return View{}, err
	}

	view := View{
		Title:       defaultTitle,
		Source:      source,
		GeneratedAt: now,
		Width:       chartWidth,
		Height:      chartHeight,
		Scale:       scale,
		Legend:      scale.Stops(legendStops),
	}

	var placed []Point
	for _, summary := range res.Categories {
		if p := topology.Place(summary.Category); p.Placed {
			placed = append(placed, p.Point)
		}
	}
	project := newProjection(placed)

	for _, summary := range res.Categories {
		color := scale.Color(summary.HealthScore)
		p := topology.Place(summary.Category)

		view.Tiles = append(view.Tiles, Tile{
			Category: summary.Category,
			Score:    fmt.Sprintf(scoreFormat, summary.HealthScore),
			Caption:  fmt.Sprintf(tileCaption, summary.ErrorCount, summary.SlowCount),
			Status:   summary.Status,
			Color:    color,
			Placed:   p.Placed,
		})

		if !p.Placed {
			view.Unplaced = append(view.Unplaced, summary.Category)
			continue
		}
		x, y := project(p.Point)
		view.Nodes = append(view.Nodes, Node{
			Category: summary.Category,
			X:        x,
			Y:        y,
			Size:     markerSize,
			Color:    color,
			Score:    summary.HealthScore,
		})
	}

	for _, edge := range topology.Edges(res) {
		x1, y1 := project(edge.Start)
		x2, y2 := project(edge.End)
		view.Lines = append(view.Lines, Line{From: edge.From, To: edge.To, X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	return view, nil
}

// newProjection maps topology space onto the chart area, y axis pointing up.
func newProjection(points []Point) func(Point) (float64, float64) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	axis := func(v, lo, hi, size float64) float64 {
		span := size - 2*chartMargin
		if hi <= lo {
			return chartMargin + span/2
		}
		return chartMargin + (v-lo)/(hi-lo)*span
	}

	return func(p Point) (float64, float64) {
		x := axis(p.X, minX, maxX, chartWidth)
		y := chartHeight - axis(p.Y, minY, maxY, chartHeight)
		return math.Round(x*10) / 10, math.Round(y*10) / 10
	}
}
