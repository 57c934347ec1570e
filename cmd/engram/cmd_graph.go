package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize the concept relationship graph",
		Long:  `Output the inter-concept graph in DOT (Graphviz) or JSON format.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var rendered []byte
			switch visualization.Format(format) {
			case visualization.FormatDOT:
				rendered = []byte(visualization.RenderDOT(ws))

			case visualization.FormatJSON:
				g := visualization.RenderJSON(ws)
				data, err := json.MarshalIndent(g, "", "  ")
				if err != nil {
					return fmt.Errorf("encode JSON: %w", err)
				}
				rendered = append(data, '\n')

			default:
				return fmt.Errorf("unsupported format %q (use 'dot' or 'json')", format)
			}

			if output != "" {
				if err := os.WriteFile(output, rendered, 0644); err != nil {
					return fmt.Errorf("write output file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", output)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot or json")
	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")

	return cmd
}
