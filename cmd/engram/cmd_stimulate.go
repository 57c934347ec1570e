package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/config"
)

func newStimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stimulate <concept>",
		Short: "Stimulate a concept with cue vectors and print the activation pattern",
		Long: `Stimulate a concept with one or more cue vectors.

Each --cue names an ensemble and supplies a vector. Activation spreads one
hop through learned links, then lateral inhibition normalizes the pattern.

Example:
  engram stimulate Dog --cue shape_canine=1,0,0,0 --cue color_brown=0,1,0,0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawCues, _ := cmd.Flags().GetStringArray("cue")
			gain, _ := cmd.Flags().GetFloat64("gain")
			topK, _ := cmd.Flags().GetInt("top")

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
			recall := c.RecallPartial(topK)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept":     c.Name,
					"activations": activations,
					"recall":      recall,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stimulated %s (gain=%.2f)\n", c.Name, gain)
			for _, r := range recall {
				fmt.Fprintf(out, "  %-16s %.4f\n", r.Name, r.Activation)
			}
			return nil
		},
	}

	cmd.Flags().StringArray("cue", nil, "Cue as name=v1,v2,... (repeatable)")
	cmd.Flags().Float64("gain", 0, "Input gain (default from config)")
	cmd.Flags().Int("top", 5, "Number of recall entries to print")

	return cmd
}

func newRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <concept>",
		Short: "Recall a concept's activation ranking, optionally from partial cues",
		Long: `Rank a concept's ensembles by activation.

With --cue flags the concept is stimulated first, so a partial cue recalls
the full pattern through learned links. Without cues the current in-memory
activations are ranked (zero for a freshly loaded concept).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top")
			rawCues, _ := cmd.Flags().GetStringArray("cue")
			gain, _ := cmd.Flags().GetFloat64("gain")

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			c, ok := ws.Get(args[0])
			if !ok {
				return fmt.Errorf("concept not found: %s", args[0])
			}

			if len(rawCues) > 0 {
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
				c.Stimulate(cues, gain)
			}

			recall := c.RecallPartial(topK)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept": c.Name,
					"recall":  recall,
				})
			}

			out := cmd.OutOrStdout()
			for _, r := range recall {
				fmt.Fprintf(out, "  %-16s %.4f\n", r.Name, r.Activation)
			}
			return nil
		},
	}

	cmd.Flags().Int("top", 5, "Number of recall entries to print")
	cmd.Flags().StringArray("cue", nil, "Partial cue as name=v1,v2,... (repeatable)")
	cmd.Flags().Float64("gain", 0, "Input gain (default from config)")

	return cmd
}
