package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/config"
	"github.com/nvandessel/engram/internal/decoder"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <concept>",
		Short: "Decode a concept's activation pattern into symbolic labels",
		Long: `Map ensemble activity to labels with a population-threshold decoder.

Each --label names a label and the ensembles that vote for it; the label's
score is the mean activation over those ensembles, and labels below the
threshold are dropped. With --cue flags the concept is stimulated first.

Example:
  engram decode Dog --cue shape_canine=1,0,0,0 --gain 2 --label canine=shape_canine,color_brown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawLabels, _ := cmd.Flags().GetStringArray("label")
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			rawCues, _ := cmd.Flags().GetStringArray("cue")
			gain, _ := cmd.Flags().GetFloat64("gain")

			if len(rawLabels) == 0 {
				return fmt.Errorf("at least one --label is required")
			}
			labels, err := parseLabels(rawLabels)
			if err != nil {
				return err
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

			d := decoder.NewPopulationThresholdDecoder(labels)
			if threshold > 0 {
				d.Threshold = threshold
			}
			decoded := d.Decode(c)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concept":   c.Name,
					"threshold": d.Threshold,
					"labels":    decoded,
				})
			}

			out := cmd.OutOrStdout()
			if len(decoded) == 0 {
				fmt.Fprintln(out, "No labels above threshold.")
				return nil
			}
			for _, l := range decoded {
				fmt.Fprintf(out, "  %-16s %.4f\n", l.Name, l.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringArray("label", nil, "Label as name=ensemble1,ensemble2,... (repeatable)")
	cmd.Flags().Float64("threshold", 0, "Minimum mean activation to emit a label (default 0.25)")
	cmd.Flags().StringArray("cue", nil, "Cue as name=v1,v2,... (repeatable)")
	cmd.Flags().Float64("gain", 0, "Input gain for cues (default from config)")

	return cmd
}

// parseLabels parses repeated --label flags of the form
// "label=ensemble1,ensemble2,...".
func parseLabels(raw []string) (map[string][]string, error) {
	labels := make(map[string][]string, len(raw))
	for _, l := range raw {
		name, list, ok := strings.Cut(l, "=")
		if !ok || strings.TrimSpace(list) == "" {
			return nil, fmt.Errorf("invalid label %q (expected name=ensemble1,ensemble2,...)", l)
		}
		parts := strings.Split(list, ",")
		ensembles := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				ensembles = append(ensembles, p)
			}
		}
		labels[strings.TrimSpace(name)] = ensembles
	}
	return labels, nil
}
