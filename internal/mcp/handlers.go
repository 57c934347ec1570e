package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/engram/internal/algebra"
	"github.com/nvandessel/engram/internal/concept"
	"github.com/nvandessel/engram/internal/seed"
	"github.com/nvandessel/engram/internal/visualization"
)

// registerTools registers all engram MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_list",
		Description: "List all concepts in the workspace",
	}, s.handleList)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_show",
		Description: "Show a concept's ensembles, link weights, and relationships",
	}, s.handleShow)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_stimulate",
		Description: "Stimulate a concept with cue vectors and return the activation pattern, optionally applying Hebbian learning",
	}, s.handleStimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_decay",
		Description: "Decay all ensemble activations in a concept toward zero",
	}, s.handleDecay)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_compare",
		Description: "Compare two concepts: ensemble overlap, vector similarity, link density",
	}, s.handleCompare)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_merge",
		Description: "Merge two concepts into a new concept with MERGED_FROM provenance edges",
	}, s.handleMerge)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_intersect",
		Description: "Derive a concept from the ensembles and relations two concepts share",
	}, s.handleIntersect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_subtract",
		Description: "Derive a concept from the ensembles of A not present in B",
	}, s.handleSubtract)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_bind",
		Description: "Add a typed relationship edge from one concept to another",
	}, s.handleBind)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_graph",
		Description: "Render the concept relationship graph in DOT (Graphviz) or JSON format",
	}, s.handleGraph)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "engram_seed",
		Description: "Load the built-in seed catalog (Animal, Dog, Cat, Car) into the workspace",
	}, s.handleSeed)

	return nil
}

// conceptItem builds the list view of a concept.
func conceptItem(c *concept.Concept) ConceptListItem {
	return ConceptListItem{
		ID:            c.ID.String(),
		Name:          c.Name,
		Ensembles:     c.Len(),
		Relationships: len(c.Relationships),
	}
}

// relationViews converts diff tuples to the output form, resolving target
// names where the workspace knows them. Callers must hold s.mu.
func (s *Server) relationViews(tuples []concept.RelationTuple) []RelationView {
	if len(tuples) == 0 {
		return nil
	}
	labels := make(map[string]string)
	for id, name := range s.ws.Labels() {
		labels[id.String()] = name
	}
	out := make([]RelationView, len(tuples))
	for i, t := range tuples {
		out[i] = RelationView{
			Type:        t.Type,
			Target:      t.Target,
			TargetName:  labels[t.Target],
			Description: t.Description,
		}
	}
	return out
}

// getPair resolves two concepts by name. Callers must hold s.mu.
func (s *Server) getPair(a, b string) (*concept.Concept, *concept.Concept, error) {
	ca, ok := s.ws.Get(a)
	if !ok {
		return nil, nil, fmt.Errorf("concept not found: %s", a)
	}
	cb, ok := s.ws.Get(b)
	if !ok {
		return nil, nil, fmt.Errorf("concept not found: %s", b)
	}
	return ca, cb, nil
}

// handleList implements the engram_list tool.
func (s *Server) handleList(ctx context.Context, req *sdk.CallToolRequest, args ListInput) (*sdk.CallToolResult, ListOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]ConceptListItem, 0, s.ws.Len())
	for _, c := range s.ws.Concepts() {
		items = append(items, conceptItem(c))
	}
	return nil, ListOutput{Concepts: items, Count: len(items)}, nil
}

// handleShow implements the engram_show tool.
func (s *Server) handleShow(ctx context.Context, req *sdk.CallToolRequest, args ShowInput) (*sdk.CallToolResult, ShowOutput, error) {
	if args.Concept == "" {
		return nil, ShowOutput{}, fmt.Errorf("'concept' parameter is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.ws.Get(args.Concept)
	if !ok {
		return nil, ShowOutput{}, fmt.Errorf("concept not found: %s", args.Concept)
	}

	out := ShowOutput{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
	}
	for _, e := range c.Ensembles() {
		view := EnsembleView{
			ID:         e.ID.String(),
			Name:       e.Name,
			Modality:   e.Modality,
			Vector:     e.Vector,
			Activation: e.Activation,
		}
		if len(e.Links) > 0 {
			view.Links = make(map[string]float64, len(e.Links))
			for tid, w := range e.Links {
				// Label links by target ensemble name when resolvable.
				key := tid.String()
				if target := c.EnsembleByID(tid); target != nil {
					key = target.Name
				}
				view.Links[key] = w
			}
		}
		out.Ensembles = append(out.Ensembles, view)
	}
	out.Relationships = s.relationViews(concept.ListRelations(c))

	return nil, out, nil
}

// handleStimulate implements the engram_stimulate tool.
func (s *Server) handleStimulate(ctx context.Context, req *sdk.CallToolRequest, args StimulateInput) (*sdk.CallToolResult, StimulateOutput, error) {
	if args.Concept == "" {
		return nil, StimulateOutput{}, fmt.Errorf("'concept' parameter is required")
	}
	if len(args.Cues) == 0 {
		return nil, StimulateOutput{}, fmt.Errorf("'cues' parameter is required")
	}

	gain := args.Gain
	if gain <= 0 {
		gain = s.cfg.Dynamics.Gain
	}
	topK := args.TopK
	if topK <= 0 {
		topK = 5
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.ws.Get(args.Concept)
	if !ok {
		return nil, StimulateOutput{}, fmt.Errorf("concept not found: %s", args.Concept)
	}

	activations := c.Stimulate(args.Cues, gain)

	if args.Learn {
		c.LearnHebbianThreshold(s.cfg.Dynamics.LearningRate, c.ActivationThreshold)
		if err := s.persist(ctx); err != nil {
			return nil, StimulateOutput{}, err
		}
	}

	recall := make([]RecallEntry, 0, topK)
	for _, r := range c.RecallPartial(topK) {
		recall = append(recall, RecallEntry{Name: r.Name, Activation: r.Activation})
	}

	s.ops.Log(map[string]any{
		"op":      "stimulate",
		"concept": args.Concept,
		"cues":    len(args.Cues),
		"gain":    gain,
		"learned": args.Learn,
	})

	return nil, StimulateOutput{
		Concept:     args.Concept,
		Activations: activations,
		Recall:      recall,
		Learned:     args.Learn,
	}, nil
}

// handleDecay implements the engram_decay tool.
func (s *Server) handleDecay(ctx context.Context, req *sdk.CallToolRequest, args DecayInput) (*sdk.CallToolResult, DecayOutput, error) {
	if args.Concept == "" {
		return nil, DecayOutput{}, fmt.Errorf("'concept' parameter is required")
	}
	fraction := args.Fraction
	if fraction <= 0 {
		fraction = 0.1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.ws.Get(args.Concept)
	if !ok {
		return nil, DecayOutput{}, fmt.Errorf("concept not found: %s", args.Concept)
	}
	c.DecayAll(fraction)

	return nil, DecayOutput{
		Concept: args.Concept,
		Message: fmt.Sprintf("Decayed %d ensembles by %.2f", c.Len(), fraction),
	}, nil
}

// handleCompare implements the engram_compare tool.
func (s *Server) handleCompare(ctx context.Context, req *sdk.CallToolRequest, args CompareInput) (*sdk.CallToolResult, CompareOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ca, cb, err := s.getPair(args.A, args.B)
	if err != nil {
		return nil, CompareOutput{}, err
	}
	res := algebra.Compare(ca, cb)
	return nil, CompareOutput{Notes: res.Notes}, nil
}

// runDerivation applies an algebra operation, registers the derived concept,
// and persists the workspace.
func (s *Server) runDerivation(ctx context.Context, op string, args AlgebraInput, fn func(a, b *concept.Concept, name string) algebra.Result) (AlgebraOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ca, cb, err := s.getPair(args.A, args.B)
	if err != nil {
		return AlgebraOutput{}, err
	}

	name := args.Name
	if name == "" {
		name = fmt.Sprintf("%s_%s_%s", op, args.A, args.B)
	}
	if _, exists := s.ws.Get(name); exists {
		return AlgebraOutput{}, fmt.Errorf("concept already exists: %s", name)
	}

	res := fn(ca, cb, name)
	s.ws.Add(res.Concept)
	if err := s.persist(ctx); err != nil {
		return AlgebraOutput{}, err
	}

	s.ops.Log(map[string]any{
		"op": op, "a": args.A, "b": args.B, "result": name,
	})

	return AlgebraOutput{
		Concept: conceptItem(res.Concept),
		Delta: RelationDelta{
			Added:   s.relationViews(res.Delta.Added),
			Removed: s.relationViews(res.Delta.Removed),
		},
		Notes:     res.Notes,
		Persisted: true,
	}, nil
}

// handleMerge implements the engram_merge tool.
func (s *Server) handleMerge(ctx context.Context, req *sdk.CallToolRequest, args AlgebraInput) (*sdk.CallToolResult, AlgebraOutput, error) {
	out, err := s.runDerivation(ctx, "merge", args, algebra.Merge)
	return nil, out, err
}

// handleIntersect implements the engram_intersect tool.
func (s *Server) handleIntersect(ctx context.Context, req *sdk.CallToolRequest, args AlgebraInput) (*sdk.CallToolResult, AlgebraOutput, error) {
	out, err := s.runDerivation(ctx, "intersect", args, algebra.Intersect)
	return nil, out, err
}

// handleSubtract implements the engram_subtract tool.
func (s *Server) handleSubtract(ctx context.Context, req *sdk.CallToolRequest, args AlgebraInput) (*sdk.CallToolResult, AlgebraOutput, error) {
	out, err := s.runDerivation(ctx, "subtract", args, algebra.Subtract)
	return nil, out, err
}

// handleBind implements the engram_bind tool.
func (s *Server) handleBind(ctx context.Context, req *sdk.CallToolRequest, args BindInput) (*sdk.CallToolResult, BindOutput, error) {
	if args.Relation == "" {
		return nil, BindOutput{}, fmt.Errorf("'relation' parameter is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, target, err := s.getPair(args.Source, args.Target)
	if err != nil {
		return nil, BindOutput{}, err
	}

	res := algebra.BindRelation(src, target, args.Relation, args.Description)
	if err := s.persist(ctx); err != nil {
		return nil, BindOutput{}, err
	}

	s.ops.Log(map[string]any{
		"op": "bind", "source": args.Source, "target": args.Target, "relation": args.Relation,
	})

	return nil, BindOutput{
		Delta: RelationDelta{
			Added:   s.relationViews(res.Delta.Added),
			Removed: s.relationViews(res.Delta.Removed),
		},
		Notes: res.Notes,
	}, nil
}

// handleGraph implements the engram_graph tool.
func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (*sdk.CallToolResult, GraphOutput, error) {
	format := args.Format
	if format == "" {
		format = "json"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch visualization.Format(format) {
	case visualization.FormatDOT:
		dot := visualization.RenderDOT(s.ws)
		edges := 0
		for _, c := range s.ws.Concepts() {
			edges += len(c.Relationships)
		}
		return nil, GraphOutput{
			Format:    "dot",
			Graph:     dot,
			NodeCount: s.ws.Len(),
			EdgeCount: edges,
		}, nil

	case visualization.FormatJSON:
		g := visualization.RenderJSON(s.ws)
		return nil, GraphOutput{
			Format:    "json",
			Graph:     g,
			NodeCount: g.NodeCount,
			EdgeCount: g.EdgeCount,
		}, nil

	default:
		return nil, GraphOutput{}, fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
	}
}

// handleSeed implements the engram_seed tool.
func (s *Server) handleSeed(ctx context.Context, req *sdk.CallToolRequest, args SeedInput) (*sdk.CallToolResult, SeedOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := seed.Catalog()
	for _, name := range catalog.Names() {
		if _, exists := s.ws.Get(name); exists {
			return nil, SeedOutput{}, fmt.Errorf("concept already exists: %s (seed into an empty workspace or remove it first)", name)
		}
	}
	for _, c := range catalog.Concepts() {
		s.ws.Add(c)
	}
	if err := s.persist(ctx); err != nil {
		return nil, SeedOutput{}, err
	}

	names := catalog.Names()
	return nil, SeedOutput{
		Concepts: names,
		Message:  fmt.Sprintf("Seeded %d concepts", len(names)),
	}, nil
}
