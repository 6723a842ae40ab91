package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"canvas/internal/domain"
	"canvas/internal/infra"
)

// Merger applies a completed generation to one node of a project document.
// The read-modify-write cycle for a given project runs under a per-project
// mutex, so two jobs finishing against different nodes of the same project
// cannot overwrite each other's result.
type Merger struct {
	store  Store
	logger infra.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMerger(store Store, logger infra.Logger) *Merger {
	return &Merger{store: store, logger: logger, locks: make(map[string]*sync.Mutex)}
}

// Apply replaces the data of the node identified by nodeID with patch and
// writes the whole document back. Only that node's data changes; edges,
// viewport and every other node stay byte-for-byte as stored. A missing
// project or node yields a NOT_FOUND-coded error.
func (m *Merger) Apply(ctx context.Context, projectID, nodeID string, patch map[string]any) error {
	lock := m.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	content, err := m.store.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Errorf(domain.CodeNotFound, "project %s not found", projectID)
		}
		return err
	}

	idx := content.findNode(nodeID)
	if idx < 0 {
		return domain.Errorf(domain.CodeNotFound, "node %s not found", nodeID)
	}

	var node map[string]any
	if err := json.Unmarshal(content.Nodes[idx], &node); err != nil {
		return fmt.Errorf("project: decode node %s: %w", nodeID, err)
	}
	node["data"] = patch
	raw, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("project: encode node %s: %w", nodeID, err)
	}

	updated := make([]json.RawMessage, len(content.Nodes))
	copy(updated, content.Nodes)
	updated[idx] = raw

	next := &Content{Nodes: updated, Edges: content.Edges, Viewport: content.Viewport}
	if err := m.store.Put(ctx, projectID, next); err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Errorf(domain.CodeNotFound, "project %s not found", projectID)
		}
		return err
	}
	m.logger.Debug().
		Str("project_id", projectID).
		Str("node_id", nodeID).
		Msg("merged generation result into node")
	return nil
}

func (m *Merger) projectLock(projectID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[projectID] = lock
	}
	return lock
}
