package main

import (
	"github.com/spf13/cobra"
)

func newPetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pet <animal-id>",
		Short: "Show the details of one animal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := loadClient(flags, nil)
			if err != nil {
				return err
			}

			pet, err := client.GetPet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), pet.AsMap(caseStyle(flags)))
		},
	}
}
