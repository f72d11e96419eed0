// Package dashboard renders the health of each transaction category as a
// topology chart of service nodes plus a row of metric tiles, and serves it over
// HTTP.
package dashboard

import (
	"errors"
	"fmt"
	"sort"

	"sanket/monitor/config"
	"sanket/monitor/datalake/model"
	"sanket/monitor/health"
)

var errInvalidTopology = errors.New("invalid topology")

// InvalidTopologyError reports a malformed position or connection.
func InvalidTopologyError(reason string) error {
	return fmt.Errorf("%w: %s", errInvalidTopology, reason)
}

// Point is a coordinate in topology space.
type Point struct {
	X float64
	Y float64
}

// Placement is the position of a category. Placed is false for categories
// missing from the topology; Point is then meaningless.
type Placement struct {
	Point
	Placed bool
}

// Connection links two categories on the chart.
type Connection struct {
	From model.Category
	To   model.Category
}

// Edge is a connection whose endpoints are both present and placed.
type Edge struct {
	Connection
	Start Point
	End   Point
}

// Topology maps categories to chart coordinates.
type Topology struct {
	positions   map[model.Category]Point
	connections []Connection
}

// DefaultTopology is the standard layout of the four known categories.
func DefaultTopology() Topology {
	return Topology{
		positions: map[model.Category]Point{
			model.Credit:   {X: 1, Y: 4},
			model.Debit:    {X: 2, Y: 1},
			model.Payment:  {X: 4, Y: 3},
			model.Transfer: {X: 6, Y: 2},
		},
		connections: []Connection{
			{From: model.Credit, To: model.Payment},
			{From: model.Debit, To: model.Payment},
			{From: model.Payment, To: model.Transfer},
		},
	}
}

// NewTopology builds a topology from configuration. Category names are
// normalised like transaction categories. A configuration without positions
// selects DefaultTopology; configured positions replace it entirely.
func NewTopology(cfg config.TopologyConfig) (Topology, error) {
	if len(cfg.Positions) == 0 {
		if len(cfg.Connections) > 0 {
			return Topology{}, InvalidTopologyError("connections configured without positions")
		}
		return DefaultTopology(), nil
	}

	t := Topology{positions: make(map[model.Category]Point, len(cfg.Positions))}
	for name, coords := range cfg.Positions {
		if len(coords) != 2 {
			return Topology{}, InvalidTopologyError(fmt.Sprintf("position of %s needs 2 coordinates, got %d", name, len(coords)))
		}
		t.positions[model.NormalizeCategory(name)] = Point{X: coords[0], Y: coords[1]}
	}

	for _, pair := range cfg.Connections {
		if len(pair) != 2 {
			return Topology{}, InvalidTopologyError(fmt.Sprintf("connection %v needs 2 endpoints", pair))
		}
		t.connections = append(t.connections, Connection{
			From: model.NormalizeCategory(pair[0]),
			To:   model.NormalizeCategory(pair[1]),
		})
	}
	return t, nil
}

// Place returns the position of c.
func (t Topology) Place(c model.Category) Placement {
	p, ok := t.positions[c]
	return Placement{Point: p, Placed: ok}
}

// Edges returns the connections drawable for res, in configuration order.
func (t Topology) Edges(res health.Result) []Edge {
	var edges []Edge
	for _, conn := range t.connections {
		if _, ok := res.Lookup(conn.From); !ok {
			continue
		}
		if _, ok := res.Lookup(conn.To); !ok {
			continue
		}
		start, end := t.Place(conn.From), t.Place(conn.To)
		if !start.Placed || !end.Placed {
			continue
		}
		edges = append(edges, Edge{Connection: conn, Start: start.Point, End: end.Point})
	}
	return edges
}

// Categories lists the placed categories in name order.
func (t Topology) Categories() []model.Category {
	out := make([]model.Category, 0, len(t.positions))
	for c := range t.positions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
