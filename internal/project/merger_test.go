package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"canvas/internal/domain"
)

const testDoc = `{
  "nodes": [
    {"id": "n1", "type": "text", "position": {"x": 10, "y": 20}, "data": {}},
    {"id": "n2", "type": "image", "position": {"x": 300, "y": 20}, "data": {"foo": 1}}
  ],
  "edges": [
    {"id": "e1", "source": "n1", "target": "n2"}
  ],
  "viewport": {"x": 0, "y": 0, "zoom": 1.5}
}`

func newTestMerger() (*Merger, *MemStore) {
	store := NewMemStore()
	store.Seed("p1", []byte(testDoc))
	return NewMerger(store, zerolog.New(io.Discard)), store
}

func TestApplyReplacesOnlyTargetNodeData(t *testing.T) {
	merger, store := newTestMerger()
	ctx := context.Background()

	before, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get before: %v", err)
	}

	if err := merger.Apply(ctx, "p1", "n1", map[string]any{"bar": 2}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get after: %v", err)
	}

	var patched struct {
		ID   string         `json:"id"`
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(after.Nodes[0], &patched); err != nil {
		t.Fatalf("decode patched node: %v", err)
	}
	if patched.ID != "n1" || patched.Type != "text" {
		t.Fatalf("patched node lost identity: %+v", patched)
	}
	if len(patched.Data) != 1 || patched.Data["bar"] != float64(2) {
		t.Fatalf("patched data = %#v, want full replace with {bar: 2}", patched.Data)
	}

	if !bytes.Equal(after.Nodes[1], before.Nodes[1]) {
		t.Fatalf("untouched node changed:\nbefore %s\nafter  %s", before.Nodes[1], after.Nodes[1])
	}
	if len(after.Edges) != 1 || !bytes.Equal(after.Edges[0], before.Edges[0]) {
		t.Fatalf("edges changed: %s", after.Edges)
	}
	if !bytes.Equal(after.Viewport, before.Viewport) {
		t.Fatalf("viewport changed: %s", after.Viewport)
	}
}

func TestApplyKeepsNodeExtrasOutsideData(t *testing.T) {
	merger, store := newTestMerger()
	ctx := context.Background()

	if err := merger.Apply(ctx, "p1", "n2", map[string]any{"generated": map[string]any{"url": "https://cdn.example.com/x.png"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	after, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var node map[string]any
	if err := json.Unmarshal(after.Nodes[1], &node); err != nil {
		t.Fatalf("decode node: %v", err)
	}
	if node["position"] == nil {
		t.Fatal("merge dropped the node's position field")
	}
	data := node["data"].(map[string]any)
	if _, kept := data["foo"]; kept {
		t.Fatal("data was merged field-by-field, want wholesale replace")
	}
}

func TestApplyUnknownProject(t *testing.T) {
	merger, _ := newTestMerger()

	err := merger.Apply(context.Background(), "nope", "n1", map[string]any{})
	var coded *domain.Error
	if !errors.As(err, &coded) || coded.Code != domain.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestApplyUnknownNode(t *testing.T) {
	merger, _ := newTestMerger()

	err := merger.Apply(context.Background(), "p1", "n99", map[string]any{})
	var coded *domain.Error
	if !errors.As(err, &coded) || coded.Code != domain.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestConcurrentMergesToOneProjectBothSurvive(t *testing.T) {
	merger, store := newTestMerger()
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, target := range []struct {
		nodeID string
		patch  map[string]any
	}{
		{"n1", map[string]any{"winner": "first"}},
		{"n2", map[string]any{"winner": "second"}},
	} {
		wg.Add(1)
		go func(nodeID string, patch map[string]any) {
			defer wg.Done()
			if err := merger.Apply(ctx, "p1", nodeID, patch); err != nil {
				t.Errorf("Apply(%s): %v", nodeID, err)
			}
		}(target.nodeID, target.patch)
	}
	wg.Wait()

	after, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for i, want := range []string{"first", "second"} {
		var node struct {
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(after.Nodes[i], &node); err != nil {
			t.Fatalf("decode node %d: %v", i, err)
		}
		if node.Data["winner"] != want {
			t.Fatalf("node %d data = %#v, lost a concurrent write", i, node.Data)
		}
	}
}
