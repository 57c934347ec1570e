package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/config"
	"github.com/nvandessel/engram/internal/embed"
)

func newEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: "Embed text with the local GGUF model (requires -tags llamacpp build)",
		Long: `Compute an L2-normalized embedding vector for text using the local GGUF
model configured under 'embedding' in ~/.engram/config.yaml.

With --unit the vector is assigned to that feature unit in the registry,
creating it if needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitKey, _ := cmd.Flags().GetString("unit")
			modality, _ := cmd.Flags().GetString("modality")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			embedder := embed.New(embed.Config{
				ModelPath:   cfg.Embedding.ModelPath,
				GPULayers:   cfg.Embedding.GPULayers,
				ContextSize: cfg.Embedding.ContextSize,
			})
			defer embedder.Close()

			if !embedder.Available() {
				return fmt.Errorf("local embedding model not available (check embedding.model_path and build with -tags llamacpp)")
			}

			vec, err := embedder.Embed(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("embed: %w", err)
			}

			if unitKey != "" {
				s, err := openStore(cmd)
				if err != nil {
					return err
				}
				defer s.Close()

				reg, err := s.LoadUnits(cmd.Context())
				if err != nil {
					return fmt.Errorf("load units: %w", err)
				}
				unit, ok := reg.Get(unitKey)
				if !ok {
					unit.Key = unitKey
				}
				if modality != "" {
					unit.Modality = modality
				}
				unit.Vector = vec
				reg.Add(unit)
				if err := s.SaveUnits(cmd.Context(), reg); err != nil {
					return fmt.Errorf("save units: %w", err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"dimensions": len(vec),
					"vector":     vec,
					"unit":       unitKey,
				})
			}

			if unitKey != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d dimensions into unit %s\n", len(vec), unitKey)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", vec)
			}
			return nil
		},
	}

	cmd.Flags().String("unit", "", "Assign the vector to this feature unit")
	cmd.Flags().String("modality", "", "Modality to set on the unit")

	return cmd
}
