package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/store"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize concept storage in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			engramDir := filepath.Join(root, ".engram")
			if err := os.MkdirAll(engramDir, 0755); err != nil {
				return fmt.Errorf("failed to create .engram directory: %w", err)
			}

			// Opening the store creates the database and schema.
			s, err := store.NewSQLiteStore(root)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ValidateIntegrity(cmd.Context()); err != nil {
				return fmt.Errorf("store integrity check: %w", err)
			}

			manifestPath := filepath.Join(engramDir, "manifest.yaml")
			if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
				manifest := `# Engram Manifest
version: "1.0"
created: %s

# Concepts live in engram.db in this directory
# Run 'engram seed' to load the starter catalog
# Run 'engram list' to see all concepts
`
				content := fmt.Sprintf(manifest, time.Now().Format(time.RFC3339))
				if err := os.WriteFile(manifestPath, []byte(content), 0644); err != nil {
					return fmt.Errorf("failed to create manifest.yaml: %w", err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{
					"status": "initialized",
					"path":   engramDir,
				})
			} else {
				fmt.Printf("Initialized .engram/ in %s\n", root)
			}
			return nil
		},
	}
}
