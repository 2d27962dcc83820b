package main

import (
	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// dictionaryDetails is the output of "dict show".
type dictionaryDetails struct {
	*domain.Dictionary
	EntryCount int `json:"entryCount"`
}

func newDictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Inspect and remove imported dictionaries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List imported dictionaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			dicts, err := a.Dictionaries.QueryAllDictionaries(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dicts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one dictionary with its entry count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.Dictionaries.QueryDictionary(cmd.Context(), id)
			if err != nil {
				return err
			}
			if d == nil {
				return notFound("dictionary", id)
			}
			n, err := a.Dictionaries.CountEntries(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dictionaryDetails{Dictionary: d, EntryCount: n})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dictionary with all of its entries and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			d, err := a.Dictionaries.DeleteDictionary(cmd.Context(), id)
			if err != nil {
				return err
			}
			if d == nil {
				return notFound("dictionary", id)
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	})

	return cmd
}
