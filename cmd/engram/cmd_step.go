package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/assembly"
	"github.com/nvandessel/engram/internal/config"
)

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Step a runtime cell ensemble through scheduled spikes",
		Long: `Run a time-driven cell ensemble: schedule spikes, advance the clock in
fixed steps, and report which units fired and the pairwise weights learned
from co-firing.

Spikes use the form key:time:strength. When the project's unit registry
holds vectors for the spiking keys, Hebbian increments are scaled by
vector similarity.

Example:
  engram step --spike dog.shape:0.05:1.0 --spike dog.color:0.05:0.8 --dt 0.1 --steps 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawSpikes, _ := cmd.Flags().GetStringArray("spike")
			dt, _ := cmd.Flags().GetFloat64("dt")
			steps, _ := cmd.Flags().GetInt("steps")
			name, _ := cmd.Flags().GetString("name")

			if len(rawSpikes) == 0 {
				return fmt.Errorf("at least one --spike is required")
			}
			spikes, err := parseSpikes(rawSpikes)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rtCfg := assembly.Config{
				EtaHebb:     cfg.Runtime.EtaHebb,
				Decay:       cfg.Runtime.Decay,
				MaxWeight:   cfg.Runtime.MaxWeight,
				DefaultStep: cfg.Runtime.DefaultStep,
			}
			if dt <= 0 {
				dt = rtCfg.DefaultStep
			}

			// Use stored unit vectors as the similarity oracle when present.
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			reg, err := s.LoadUnits(cmd.Context())
			if err != nil {
				return fmt.Errorf("load units: %w", err)
			}
			var oracle assembly.SimilarityOracle
			if reg.Len() > 0 {
				oracle = reg
			}

			rt := assembly.NewWithConfig(name, rtCfg, oracle)
			rt.SchedulePattern(spikes)

			if steps <= 0 {
				// Default: enough steps to cover the last scheduled spike.
				var tMax float64
				for _, sp := range spikes {
					if sp.Time > tMax {
						tMax = sp.Time
					}
				}
				steps = int(tMax/dt) + 1
			}

			type stepResult struct {
				Time  float64  `json:"time"`
				Fired []string `json:"fired"`
			}
			results := make([]stepResult, 0, steps)
			for i := 0; i < steps; i++ {
				fired := rt.Step(dt)
				keys := make([]string, 0, len(fired))
				for k := range fired {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				results = append(results, stepResult{Time: rt.Now(), Fired: keys})
			}

			weights := collectWeights(rt)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"name":    name,
					"dt":      dt,
					"steps":   results,
					"weights": weights,
				})
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				if len(r.Fired) == 0 {
					fmt.Fprintf(out, "t=%.3f  (no spikes)\n", r.Time)
				} else {
					fmt.Fprintf(out, "t=%.3f  fired: %s\n", r.Time, strings.Join(r.Fired, ", "))
				}
			}
			if len(weights) > 0 {
				fmt.Fprintln(out, "Weights:")
				printWeights(cmd, weights)
			}
			return nil
		},
	}

	cmd.Flags().StringArray("spike", nil, "Spike as key:time:strength (repeatable)")
	cmd.Flags().Float64("dt", 0, "Step size in seconds (default from config)")
	cmd.Flags().Int("steps", 0, "Number of steps (default: cover all spikes)")
	cmd.Flags().String("name", "rt", "Ensemble name")

	return cmd
}

// parseSpikes parses repeated --spike flags of the form "key:time:strength".
// Strength is optional and defaults to 1.0.
func parseSpikes(raw []string) ([]assembly.Spike, error) {
	spikes := make([]assembly.Spike, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid spike %q (expected key:time[:strength])", r)
		}
		t, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("spike %q: invalid time: %w", r, err)
		}
		strength := 1.0
		if len(parts) == 3 {
			strength, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("spike %q: invalid strength: %w", r, err)
			}
		}
		spikes = append(spikes, assembly.Spike{Time: t, Key: parts[0], Strength: strength})
	}
	return spikes, nil
}

type weightEntry struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Weight float64 `json:"weight"`
}

// collectWeights returns all nonzero pairwise weights in sorted key order.
func collectWeights(rt *assembly.CellEnsembleRT) []weightEntry {
	keys := make([]string, 0, len(rt.Units))
	for k := range rt.Units {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []weightEntry
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if w := rt.Weight(keys[i], keys[j]); w > 0 {
				out = append(out, weightEntry{A: keys[i], B: keys[j], Weight: w})
			}
		}
	}
	return out
}

func printWeights(cmd *cobra.Command, weights []weightEntry) {
	for _, w := range weights {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s <-> %s  %.6f\n", w.A, w.B, w.Weight)
	}
}
