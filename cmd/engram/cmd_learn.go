package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/config"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn <concept>",
		Short: "Stimulate a concept and strengthen links between co-active ensembles",
		Long: `Stimulate a concept with cue vectors, then apply Hebbian learning.

Ensembles whose post-inhibition activation reaches the threshold form the
co-active set; each member's links toward the rest of the set are
strengthened by rate * activation. The updated links are persisted.

Example:
  engram learn Dog --cue shape_canine=1,0,0,0 --cue color_brown=0,1,0,0 --gain 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawCues, _ := cmd.Flags().GetStringArray("cue")
			gain, _ := cmd.Flags().GetFloat64("gain")
			rate, _ := cmd.Flags().GetFloat64("rate")
			threshold, _ := cmd.Flags().GetFloat64("threshold")

			if len(rawCues) == 0 {
				return fmt.Errorf("at least one --cue is required")
			}
			cues, err := parseCues(rawCues)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if gain <= 0 {
				gain = cfg.Dynamics.Gain
			}
			if rate <= 0 {
				rate = cfg.Dynamics.LearningRate
			}

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			c, ok := ws.Get(args[0])
			if !ok {
				return fmt.Errorf("concept not found: %s", args[0])
			}

			activations := c.Stimulate(cues, gain)

			if threshold > 0 {
				c.LearnHebbianThreshold(rate, threshold)
			} else {
				c.LearnHebbian(rate)
			}

			if err := s.SaveWorkspace(cmd.Context(), ws); err != nil {
				return fmt.Errorf("save workspace: %w", err)
			}

			// Count co-active ensembles for reporting.
			thr := threshold
			if thr <= 0 {
				thr = c.ActivationThreshold
			}
			coactive := 0
			for _, a := range c.Activations() {
				if a >= thr {
					coactive++
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept":     c.Name,
					"activations": activations,
					"coactive":    coactive,
					"rate":        rate,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Learned on %s: %d co-active ensembles (rate=%.3f)\n",
				c.Name, coactive, rate)
			return nil
		},
	}

	cmd.Flags().StringArray("cue", nil, "Cue as name=v1,v2,... (repeatable)")
	cmd.Flags().Float64("gain", 0, "Input gain (default from config)")
	cmd.Flags().Float64("rate", 0, "Hebbian learning rate (default from config)")
	cmd.Flags().Float64("threshold", 0, "Co-activation threshold (default: concept's own)")

	return cmd
}

func newDecayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decay <concept>",
		Short: "Decay all ensemble activations in a concept toward zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fraction, _ := cmd.Flags().GetFloat64("fraction")

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			c, ok := ws.Get(args[0])
			if !ok {
				return fmt.Errorf("concept not found: %s", args[0])
			}
			c.DecayAll(fraction)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept":  c.Name,
					"fraction": fraction,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Decayed %d ensembles of %s by %.2f\n",
				c.Len(), c.Name, fraction)
			return nil
		},
	}

	cmd.Flags().Float64("fraction", 0.1, "Decay fraction in [0,1]")

	return cmd
}
