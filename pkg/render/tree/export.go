package tree

import (
	"encoding/json"
	"fmt"
	"time"
)

// Export is the JSON form of a computed tree layout.
type Export struct {
	Width       float64     `json:"width" bson:"width"`
	Height      float64     `json:"height" bson:"height"`
	Name        string      `json:"name" bson:"name"`
	GeneratedAt time.Time   `json:"generated_at" bson:"generated_at"`
	Layers      []LayerInfo `json:"layers" bson:"layers"`
	Nodes       []Node      `json:"nodes" bson:"nodes"`
	Connectors  []Connector `json:"connectors,omitempty" bson:"connectors,omitempty"`
}

// Connector is one trunk segment.
type Connector struct {
	From  string  `json:"from" bson:"from"`
	X     float64 `json:"x" bson:"x"`
	Y1    float64 `json:"y1" bson:"y1"`
	Y2    float64 `json:"y2" bson:"y2"`
	Color string  `json:"color" bson:"color"`
}

// Export converts r into its serializable form.
func (r Result) Export(name string, at time.Time) Export {
	e := Export{
		Width: r.Width, Height: r.Height,
		Name: name, GeneratedAt: at,
		Layers: r.Layers, Nodes: r.Nodes,
	}
	for _, n := range r.Nodes {
		if x, y1, y2, ok := n.Trunk(); ok {
			e.Connectors = append(e.Connectors, Connector{From: n.ID, X: x, Y1: y1, Y2: y2, Color: n.Color})
		}
	}
	return e
}

// MarshalExport serializes e to indented JSON.
func MarshalExport(e Export) ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// UnmarshalExport parses and validates a serialized layout.
func UnmarshalExport(data []byte) (Export, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return Export{}, fmt.Errorf("unmarshal tree layout: %w", err)
	}
	if e.Width <= 0 || e.Height <= 0 {
		return Export{}, fmt.Errorf("tree layout must have positive dimensions")
	}
	ids := make(map[string]bool, len(e.Nodes))
	for _, n := range e.Nodes {
		if n.ID == "" {
			return Export{}, fmt.Errorf("tree layout node without id")
		}
		if ids[n.ID] {
			return Export{}, fmt.Errorf("duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	return e, nil
}
