package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/assembly"
	"github.com/nvandessel/engram/internal/config"
	"github.com/nvandessel/engram/internal/oscillation"
)

func newOscillateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oscillate",
		Short: "Drive a cell ensemble with theta/gamma phased spikes",
		Long: `Generate a theta/gamma phase sequence and fire the whole unit pattern at
every gamma packet, so the units co-fire within each packet and bind
through Hebbian learning. The ensemble is stepped through the whole run
and the learned pairwise weights reported.

Example:
  engram oscillate --units dog.shape,dog.color,dog.sound --theta 5 --gamma 4 --time 1.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			unitsFlag, _ := cmd.Flags().GetString("units")
			thetaHz, _ := cmd.Flags().GetFloat64("theta")
			gamma, _ := cmd.Flags().GetInt("gamma")
			totalTime, _ := cmd.Flags().GetFloat64("time")
			strength, _ := cmd.Flags().GetFloat64("strength")

			if strings.TrimSpace(unitsFlag) == "" {
				return fmt.Errorf("--units is required (comma-separated unit keys)")
			}
			keys := strings.Split(unitsFlag, ",")
			for i := range keys {
				keys[i] = strings.TrimSpace(keys[i])
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if thetaHz <= 0 {
				thetaHz = cfg.Oscillation.ThetaHz
			}
			if gamma <= 0 {
				gamma = cfg.Oscillation.GammaPerTheta
			}
			if totalTime <= 0 {
				totalTime = cfg.Oscillation.TotalTime
			}

			phases := oscillation.PhaseSequence(totalTime, thetaHz, gamma)
			if len(phases) == 0 {
				return fmt.Errorf("degenerate oscillation parameters (time=%.3f, theta=%.3f, gamma=%d)",
					totalTime, thetaHz, gamma)
			}

			rtCfg := assembly.Config{
				EtaHebb:     cfg.Runtime.EtaHebb,
				Decay:       cfg.Runtime.Decay,
				MaxWeight:   cfg.Runtime.MaxWeight,
				DefaultStep: cfg.Runtime.DefaultStep,
			}

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

			rt := assembly.NewWithConfig("oscillation", rtCfg, oracle)
			rt.AddUnits(keys...)

			// The full pattern spikes at every gamma packet.
			for _, t := range phases {
				for _, key := range keys {
					rt.ScheduleSpike(t, key, strength)
				}
			}

			// Step in gamma-packet intervals so each step fires one packet.
			// One extra step past totalTime picks up packets that land a
			// rounding error beyond the accumulated clock.
			dt := 1.0 / (thetaHz * float64(gamma))
			totalFired := 0
			for rt.Now() < totalTime+dt {
				totalFired += len(rt.Step(dt))
			}

			weights := collectWeights(rt)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"phases":  len(phases),
					"fired":   totalFired,
					"weights": weights,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Ran %d gamma packets over %.2fs (theta=%.1fHz, gamma=%d): %d spikes fired\n",
				len(phases), totalTime, thetaHz, gamma, totalFired)
			if len(weights) > 0 {
				fmt.Fprintln(out, "Weights:")
				printWeights(cmd, weights)
			}
			return nil
		},
	}

	cmd.Flags().String("units", "", "Comma-separated unit keys to cycle through")
	cmd.Flags().Float64("theta", 0, "Theta frequency in Hz (default from config)")
	cmd.Flags().Int("gamma", 0, "Gamma packets per theta cycle (default from config)")
	cmd.Flags().Float64("time", 0, "Total run time in seconds (default from config)")
	cmd.Flags().Float64("strength", 1.0, "Spike strength")

	return cmd
}
