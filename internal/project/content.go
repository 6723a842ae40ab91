// Package project persists canvas documents and merges generation results
// into individual nodes.
package project

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a project or node does not exist.
var ErrNotFound = errors.New("project: not found")

// Content is a project's node/edge document. Nodes, edges and the viewport
// are kept as raw JSON so a merge that touches one node leaves every other
// byte of the document exactly as it was stored, including canvas fields
// (position, size, selection state) this service does not model.
type Content struct {
	Nodes    []json.RawMessage `json:"nodes"`
	Edges    []json.RawMessage `json:"edges"`
	Viewport json.RawMessage   `json:"viewport,omitempty"`
}

// nodeProbe peeks at the only node field the merger needs.
type nodeProbe struct {
	ID string `json:"id"`
}

// findNode returns the index of the node with the given id, or -1.
func (c *Content) findNode(nodeID string) int {
	for i, raw := range c.Nodes {
		var probe nodeProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			continue
		}
		if probe.ID == nodeID {
			return i
		}
	}
	return -1
}
