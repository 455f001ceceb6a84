package persist

import (
	"encoding/json"
	"fmt"

	"mindmap/diagram"
	"mindmap/geometry"
	"mindmap/logging"

	"github.com/go-viper/mapstructure/v2"
)

// Encode serializes the nodes and edges of doc. Viewport and selection are not persisted.
func Encode(doc diagram.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc.Clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// Decode reads a document written by Encode, or by anything close enough to
// it. The blob must be an object whose "nodes" and "edges" are arrays; all
// else is coerced field by field, falling back to defaults. Entries that are
// not objects are skipped. Nodes without a usable id get a fresh one.
// Duplicate nodes, self loops, repeated pairs and edges with unknown
// endpoints are dropped. ok is false when the blob is unusable.
func Decode(data []byte) (diagram.Document, bool) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return diagram.Document{}, false
	}
	rawNodes, ok1 := raw["nodes"].([]any)
	rawEdges, ok2 := raw["edges"].([]any)
	if !ok1 || !ok2 {
		return diagram.Document{}, false
	}

	doc := diagram.Document{Nodes: []diagram.Node{}, Edges: []diagram.Edge{}}
	seen := map[int]bool{}
	var pending []int // indexes of nodes still needing an id

	for _, item := range rawNodes {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		n := decodeNode(m)
		if n.ID > 0 {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
		} else {
			pending = append(pending, len(doc.Nodes))
		}
		doc.Nodes = append(doc.Nodes, n)
	}

	next := 1
	for id := range seen {
		next = max(next, id+1)
	}
	for _, i := range pending {
		doc.Nodes[i].ID = next
		seen[next] = true
		next++
	}

	seenEdges := map[int]bool{}
	var pendingEdges []int
	for _, item := range rawEdges {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		e := decodeEdge(m)
		if e.Source == e.Target || !seen[e.Source] || !seen[e.Target] {
			continue
		}
		if connected(doc.Edges, e.Source, e.Target) {
			continue
		}
		if e.ID <= 0 || seenEdges[e.ID] {
			pendingEdges = append(pendingEdges, len(doc.Edges))
		} else {
			seenEdges[e.ID] = true
		}
		doc.Edges = append(doc.Edges, e)
	}

	nextEdge := 1
	for id := range seenEdges {
		nextEdge = max(nextEdge, id+1)
	}
	for _, i := range pendingEdges {
		doc.Edges[i].ID = nextEdge
		nextEdge++
	}

	return doc, true
}

func decodeNode(m map[string]any) diagram.Node {
	n := diagram.Node{
		ID:       coerce(m["id"], 0),
		Label:    coerce(m["label"], ""),
		X:        coerce(m["x"], 0.0),
		Y:        coerce(m["y"], 0.0),
		W:        coerce(m["w"], geometry.BaseWidth),
		H:        coerce(m["h"], geometry.BaseHeight),
		MinW:     coerce(m["minW"], 0.0),
		MinH:     coerce(m["minH"], 0.0),
		FontSize: coerce(m["fontSize"], 0.0),
		Stroke:   diagram.NormalizeColor(coerce(m["strokeColor"], diagram.DefaultStroke)),
		Fill:     diagram.NormalizeColor(coerce(m["fillColor"], "")),
		Bold:     coerce(m["bold"], false),
	}
	if n.Stroke == "" {
		n.Stroke = diagram.DefaultStroke
	}
	return n
}

func decodeEdge(m map[string]any) diagram.Edge {
	return diagram.Edge{
		ID:     coerce(m["id"], 0),
		Source: coerce(m["source"], 0),
		Target: coerce(m["target"], 0),
		Label:  coerce(m["label"], ""),
		Dashed: coerce(m["dashed"], false),
	}
}

// coerce weakly decodes v into a T ("12" becomes 12, 1 becomes true), or
// returns def when v is missing or will not convert.
func coerce[T any](v any, def T) T {
	if v == nil {
		return def
	}
	out := def
	if err := mapstructure.WeakDecode(v, &out); err != nil {
		return def
	}
	return out
}

func connected(edges []diagram.Edge, a, b int) bool {
	for _, e := range edges {
		if e.Connects(a, b) {
			return true
		}
	}
	return false
}

// LoadDocument reads the starting document from bs. A missing, unreadable or
// malformed blob yields the default document; loaded reports which happened.
func LoadDocument(bs BlobStore) (doc diagram.Document, loaded bool) {
	data, ok, err := bs.Load()
	if err != nil {
		logging.Warn("failed to load document, starting fresh", "error", err)
		return diagram.NewDocument(), false
	}
	if !ok {
		return diagram.NewDocument(), false
	}
	doc, ok = Decode(data)
	if !ok {
		logging.Warn("stored document is malformed, starting fresh", "bytes", len(data))
		return diagram.NewDocument(), false
	}
	logging.Debug("document loaded", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return doc, true
}
