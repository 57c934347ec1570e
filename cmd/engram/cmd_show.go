package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/concept"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <concept>",
		Short: "Show a concept's ensembles, links, and relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			c, ok := ws.Get(args[0])
			if !ok {
				return fmt.Errorf("concept not found: %s", args[0])
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(concept.ToEngram(c))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID.String())
			if c.Description != "" {
				fmt.Fprintf(out, "  %s\n", c.Description)
			}
			fmt.Fprintf(out, "  inhibition_gain=%.2f activation_threshold=%.2f\n\n",
				c.InhibitionGain, c.ActivationThreshold)

			fmt.Fprintln(out, "Ensembles:")
			for _, e := range c.Ensembles() {
				fmt.Fprintf(out, "  %-16s modality=%-10s activation=%.4f vector=%v\n",
					e.Name, e.Modality, e.Activation, e.Vector)
				for tid, w := range e.Links {
					label := tid.String()
					if target := c.EnsembleByID(tid); target != nil {
						label = target.Name
					}
					fmt.Fprintf(out, "    -> %-16s %.4f\n", label, w)
				}
			}

			if len(c.Relationships) > 0 {
				fmt.Fprintln(out, "\nRelationships:")
				labels := ws.Labels()
				for _, r := range c.Relationships {
					target := r.TargetConceptID.String()
					if name, ok := labels[r.TargetConceptID]; ok {
						target = name
					}
					fmt.Fprintf(out, "  %-12s -> %-12s %s\n", r.RelationType, target, r.Description)
				}
			}
			return nil
		},
	}
}
