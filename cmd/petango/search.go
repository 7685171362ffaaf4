package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigwing/petango"
)

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var (
		species  string
		args     []string
		today    bool
		featured bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List adoptable animals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := parseArgs(args)
			if err != nil {
				return err
			}

			client, err := loadClient(flags, nil)
			if err != nil {
				return err
			}

			pets, err := client.SearchPets(cmd.Context(), species, overrides)
			if err != nil {
				return err
			}

			out := make([]map[string]string, 0, len(pets))
			for _, pet := range pets {
				if today && !pet.IsAdoptableToday() {
					continue
				}
				if featured && !pet.IsFeatured() {
					continue
				}
				out = append(out, pet.AsMap(caseStyle(flags)))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&species, "species", "s", petango.SpeciesAll.String(), "all, dog or cat")
	cmd.Flags().StringArrayVarP(&args, "arg", "a", nil, "search parameter override as key=value (repeatable)")
	cmd.Flags().BoolVar(&today, "today", false, "only pets at the adoption center or an event today")
	cmd.Flags().BoolVar(&featured, "featured", false, "only featured pets")

	return cmd
}

func parseArgs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q, want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}
