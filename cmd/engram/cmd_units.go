package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/engram/internal/units"
)

func newUnitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Manage the feature unit registry",
	}

	cmd.AddCommand(
		newUnitsListCmd(),
		newUnitsAddCmd(),
		newUnitsCosineCmd(),
	)

	return cmd
}

func newUnitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered feature units",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			reg, err := s.LoadUnits(cmd.Context())
			if err != nil {
				return fmt.Errorf("load units: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				items := make([]units.FeatureUnit, 0, reg.Len())
				for _, key := range reg.Keys() {
					u, _ := reg.Get(key)
					items = append(items, u)
				}
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"units": items,
					"count": len(items),
				})
			}

			if reg.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No units registered.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %s\n", "KEY", "MODALITY", "VECTOR")
			for _, key := range reg.Keys() {
				u, _ := reg.Get(key)
				vec := "-"
				if u.Vector != nil {
					vec = fmt.Sprintf("%v", u.Vector)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %s\n", u.Key, u.Modality, vec)
			}
			return nil
		},
	}
}

func newUnitsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <key>",
		Short: "Add or replace a feature unit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modality, _ := cmd.Flags().GetString("modality")
			vecStr, _ := cmd.Flags().GetString("vector")
			attrs, _ := cmd.Flags().GetStringArray("attr")

			unit := units.FeatureUnit{Key: args[0], Modality: modality}
			if vecStr != "" {
				vec, err := parseVector(vecStr)
				if err != nil {
					return err
				}
				unit.Vector = vec
			}
			if len(attrs) > 0 {
				unit.Attributes = make(map[string]string, len(attrs))
				for _, a := range attrs {
					k, v, ok := strings.Cut(a, "=")
					if !ok {
						return fmt.Errorf("invalid attribute %q (expected key=value)", a)
					}
					unit.Attributes[k] = v
				}
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
			reg.Add(unit)
			if err := s.SaveUnits(cmd.Context(), reg); err != nil {
				return fmt.Errorf("save units: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(unit)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added unit %s\n", unit.Key)
			return nil
		},
	}

	cmd.Flags().String("modality", "", "Unit modality (e.g. vision, audition, language)")
	cmd.Flags().String("vector", "", "Vector as v1,v2,...")
	cmd.Flags().StringArray("attr", nil, "Attribute as key=value (repeatable)")

	return cmd
}

func newUnitsCosineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cosine <a> <b>",
		Short: "Print the cosine similarity between two units' vectors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			reg, err := s.LoadUnits(cmd.Context())
			if err != nil {
				return fmt.Errorf("load units: %w", err)
			}

			cos := reg.Cosine(args[0], args[1])

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"a": args[0], "b": args[1], "cosine": cos,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", cos)
			return nil
		},
	}
}
