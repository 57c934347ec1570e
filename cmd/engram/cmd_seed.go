package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/seed"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter concept catalog (Animal, Dog, Cat, Car)",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			catalog := seed.Catalog()
			if !force {
				for _, name := range catalog.Names() {
					if _, exists := ws.Get(name); exists {
						return fmt.Errorf("concept %q already exists (use --force to overwrite)", name)
					}
				}
			}
			for _, c := range catalog.Concepts() {
				ws.Add(c)
			}

			if err := s.SaveWorkspace(cmd.Context(), ws); err != nil {
				return fmt.Errorf("save workspace: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]any{
					"seeded": catalog.Names(),
					"count":  catalog.Len(),
				})
			} else {
				fmt.Printf("Seeded %d concepts:\n", catalog.Len())
				for _, name := range catalog.Names() {
					c, _ := catalog.Get(name)
					fmt.Printf("  %-8s %d ensembles, %d relationships\n", name, c.Len(), len(c.Relationships))
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite existing concepts with the same names")

	return cmd
}
