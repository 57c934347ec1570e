package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/store"
	"github.com/nvandessel/engram/internal/workspace"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "engram",
		Short: "Engram - cell-assembly concept modeling engine",
		Long: `engram models concepts as assemblies of feature ensembles.

Ensembles carry vectors and mutable activation; stimulation spreads
activation through learned links under lateral inhibition, and Hebbian
learning strengthens links between co-active ensembles. Concepts compose
through set algebra (merge, intersect, subtract) and typed relationship
edges.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newSeedCmd(),
		newListCmd(),
		newShowCmd(),
		newStimulateCmd(),
		newLearnCmd(),
		newRecallCmd(),
		newDecayCmd(),
		newDecodeCmd(),
		// Algebra commands
		newCompareCmd(),
		newMergeCmd(),
		newIntersectCmd(),
		newSubtractCmd(),
		newBindCmd(),
		newGraphCmd(),
		// Runtime ensemble commands
		newOscillateCmd(),
		newStepCmd(),
		// Unit registry commands
		newUnitsCmd(),
		newSearchCmd(),
		newEmbedCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// openStore opens the project's SQLite store using the --root flag.
func openStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	root, _ := cmd.Flags().GetString("root")
	s, err := store.NewSQLiteStore(root)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// loadWorkspace opens the store and loads the persisted workspace.
// The caller owns closing the returned store.
func loadWorkspace(cmd *cobra.Command) (*store.SQLiteStore, *workspace.Workspace, error) {
	s, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}
	ws, err := s.LoadWorkspace(context.Background())
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("load workspace: %w", err)
	}
	return s, ws, nil
}

// parseVector parses a comma-separated float list: "1,0,0.5".
func parseVector(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty vector")
	}
	parts := strings.Split(s, ",")
	vec := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		vec[i] = v
	}
	return vec, nil
}

// parseCues parses repeated --cue flags of the form "ensemble=v1,v2,...".
func parseCues(raw []string) (map[string][]float64, error) {
	cues := make(map[string][]float64, len(raw))
	for _, c := range raw {
		name, vecStr, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("invalid cue %q (expected name=v1,v2,...)", c)
		}
		vec, err := parseVector(vecStr)
		if err != nil {
			return nil, fmt.Errorf("cue %q: %w", name, err)
		}
		cues[strings.TrimSpace(name)] = vec
	}
	return cues, nil
}
