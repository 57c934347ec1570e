// Package visualization renders the concept graph in DOT and JSON formats:
// nodes are concepts, edges are relationship edges labeled by relation type.
package visualization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/engram/internal/workspace"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// edgeStyles maps relation types to DOT styles.
var edgeStyles = map[string]string{
	"IS_A":        "solid",
	"MERGED_FROM": "dashed",
	"PART_OF":     "bold",
}

// RenderDOT produces a Graphviz DOT representation of the workspace's
// concept graph. Dangling relationship targets render as a gray placeholder
// node labeled with the target id, never an error.
func RenderDOT(w *workspace.Workspace) string {
	var b strings.Builder
	b.WriteString("digraph engram {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=lightsteelblue, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	labels := w.Labels()

	for _, c := range w.Concepts() {
		tooltip := fmt.Sprintf("ensembles=%d", c.Len())
		b.WriteString(fmt.Sprintf("  %q [label=%q, tooltip=%q];\n",
			c.ID.String(), truncate(c.Name, 40), tooltip))
	}
	b.WriteString("\n")

	// Unresolvable targets get one placeholder node each.
	placeholders := make(map[string]bool)
	for _, c := range w.Concepts() {
		for _, r := range c.Relationships {
			target := r.TargetConceptID.String()
			if _, ok := labels[r.TargetConceptID]; !ok && !placeholders[target] {
				placeholders[target] = true
				b.WriteString(fmt.Sprintf("  %q [label=%q, fillcolor=lightgray];\n",
					target, truncate(target, 12)))
			}
		}
	}
	if len(placeholders) > 0 {
		b.WriteString("\n")
	}

	for _, c := range w.Concepts() {
		for _, r := range c.Relationships {
			style := edgeStyles[r.RelationType]
			if style == "" {
				style = "solid"
			}
			b.WriteString(fmt.Sprintf("  %q -> %q [label=%q, style=%s];\n",
				c.ID.String(), r.TargetConceptID.String(), r.RelationType, style))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// GraphNode is one concept in the JSON graph view.
type GraphNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Ensembles     int    `json:"ensembles"`
	Relationships int    `json:"relationships"`
}

// GraphEdge is one relationship edge in the JSON graph view.
type GraphEdge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Resolved    bool   `json:"resolved"`
}

// Graph is the JSON graph document.
type Graph struct {
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	NodeCount int         `json:"node_count"`
	EdgeCount int         `json:"edge_count"`
}

// RenderJSON produces the JSON graph representation: concepts in workspace
// order, every relationship edge flagged with whether its target currently
// resolves.
func RenderJSON(w *workspace.Workspace) Graph {
	labels := w.Labels()

	g := Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	for _, c := range w.Concepts() {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:            c.ID.String(),
			Name:          c.Name,
			Ensembles:     c.Len(),
			Relationships: len(c.Relationships),
		})
		for _, r := range c.Relationships {
			_, resolved := labels[r.TargetConceptID]
			g.Edges = append(g.Edges, GraphEdge{
				Source:      c.ID.String(),
				Target:      r.TargetConceptID.String(),
				Type:        r.RelationType,
				Description: r.Description,
				Resolved:    resolved,
			})
		}
	}

	sort.SliceStable(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Type < g.Edges[j].Type
	})

	g.NodeCount = len(g.Nodes)
	g.EdgeCount = len(g.Edges)
	return g
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
