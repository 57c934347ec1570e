package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/algebra"
	"github.com/nvandessel/engram/internal/concept"
	"github.com/nvandessel/engram/internal/workspace"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two concepts: ensemble overlap, vector similarity, link density",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ca, cb, err := resolvePair(ws, args[0], args[1])
			if err != nil {
				return err
			}
			res := algebra.Compare(ca, cb)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{
					"a": ca.Name, "b": cb.Name, "notes": res.Notes,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notes)
			return nil
		},
	}
}

func newMergeCmd() *cobra.Command {
	return newDerivationCmd("merge", "Merge two concepts into one with MERGED_FROM provenance edges", algebra.Merge)
}

func newIntersectCmd() *cobra.Command {
	return newDerivationCmd("intersect", "Derive a concept from the ensembles and relations two concepts share", algebra.Intersect)
}

func newSubtractCmd() *cobra.Command {
	return newDerivationCmd("subtract", "Derive a concept from the ensembles of A not present in B", algebra.Subtract)
}

// newDerivationCmd builds merge/intersect/subtract: all three derive a new
// concept from two inputs, register it in the workspace, and persist.
func newDerivationCmd(op, short string, fn func(a, b *concept.Concept, name string) algebra.Result) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <a> <b>", op),
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = fmt.Sprintf("%s_%s_%s", op, args[0], args[1])
			}

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ca, cb, err := resolvePair(ws, args[0], args[1])
			if err != nil {
				return err
			}
			if _, exists := ws.Get(name); exists {
				return fmt.Errorf("concept already exists: %s", name)
			}

			res := fn(ca, cb, name)
			ws.Add(res.Concept)
			if err := s.SaveWorkspace(cmd.Context(), ws); err != nil {
				return fmt.Errorf("save workspace: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept": res.Concept.Name,
					"id":      res.Concept.ID.String(),
					"delta":   res.Delta,
					"notes":   res.Notes,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Notes)
			fmt.Fprintf(out, "Created %s: %d ensembles, %d relationships\n",
				res.Concept.Name, res.Concept.Len(), len(res.Concept.Relationships))
			printDelta(cmd, res.Delta)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Name for the derived concept")

	return cmd
}

func newBindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bind <source> <target>",
		Short: "Add a typed relationship edge from one concept to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			relation, _ := cmd.Flags().GetString("relation")
			description, _ := cmd.Flags().GetString("description")
			if relation == "" {
				return fmt.Errorf("--relation is required")
			}

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			src, target, err := resolvePair(ws, args[0], args[1])
			if err != nil {
				return err
			}

			res := algebra.BindRelation(src, target, relation, description)
			if err := s.SaveWorkspace(cmd.Context(), ws); err != nil {
				return fmt.Errorf("save workspace: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"delta": res.Delta,
					"notes": res.Notes,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Notes)
			return nil
		},
	}

	cmd.Flags().String("relation", "", "Relation type (e.g. IS_A, PART_OF)")
	cmd.Flags().String("description", "", "Edge description")

	return cmd
}

// resolvePair looks up two concepts by name.
func resolvePair(ws *workspace.Workspace, a, b string) (*concept.Concept, *concept.Concept, error) {
	ca, ok := ws.Get(a)
	if !ok {
		return nil, nil, fmt.Errorf("concept not found: %s", a)
	}
	cb, ok := ws.Get(b)
	if !ok {
		return nil, nil, fmt.Errorf("concept not found: %s", b)
	}
	return ca, cb, nil
}

// printDelta prints relationship changes in human-readable form.
func printDelta(cmd *cobra.Command, d concept.Delta) {
	out := cmd.OutOrStdout()
	for _, t := range d.Added {
		fmt.Fprintf(out, "  + %s -> %s %s\n", t.Type, t.Target, t.Description)
	}
	for _, t := range d.Removed {
		fmt.Fprintf(out, "  - %s -> %s %s\n", t.Type, t.Target, t.Description)
	}
}
