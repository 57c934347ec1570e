package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all concepts in the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ws, err := loadWorkspace(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				type item struct {
					ID            string `json:"id"`
					Name          string `json:"name"`
					Ensembles     int    `json:"ensembles"`
					Relationships int    `json:"relationships"`
				}
				items := make([]item, 0, ws.Len())
				for _, c := range ws.Concepts() {
					items = append(items, item{
						ID:            c.ID.String(),
						Name:          c.Name,
						Ensembles:     c.Len(),
						Relationships: len(c.Relationships),
					})
				}
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"concepts": items,
					"count":    len(items),
				})
			}

			if ws.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No concepts. Run 'engram seed' or 'engram init' first.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %-10s %s\n", "NAME", "ENSEMBLES", "RELATIONS", "ID")
			for _, c := range ws.Concepts() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10d %-10d %s\n",
					c.Name, c.Len(), len(c.Relationships), c.ID.String())
			}
			return nil
		},
	}
}
