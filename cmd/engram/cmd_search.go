package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/vectorsearch"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search registered units by vector similarity",
		Long: `Brute-force cosine search over every unit vector in the registry.
Units without vectors or with a different dimensionality are skipped.

Example:
  engram search --query 1,0,0,0 --k 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			queryStr, _ := cmd.Flags().GetString("query")
			k, _ := cmd.Flags().GetInt("k")

			if queryStr == "" {
				return fmt.Errorf("--query is required")
			}
			query, err := parseVector(queryStr)
			if err != nil {
				return err
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

			backend := vectorsearch.NewInMemory()
			for _, key := range reg.Keys() {
				u, _ := reg.Get(key)
				if u.Vector != nil {
					backend.Add(u.Key, u.Vector)
				}
			}

			matches := backend.Search(query, k)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"matches": matches,
					"count":   len(matches),
				})
			}

			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %.6f\n", m.Key, m.Score)
			}
			return nil
		},
	}

	cmd.Flags().String("query", "", "Query vector as v1,v2,...")
	cmd.Flags().Int("k", 5, "Maximum number of matches")

	return cmd
}
