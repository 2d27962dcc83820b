package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youyoumu/hanayomi/internal/domain"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

// entryView is a stored entry with its definitions decoded.
type entryView struct {
	ID             int64                `json:"id"`
	DictionaryID   int64                `json:"dictionaryId"`
	Expression     string               `json:"expression"`
	Reading        string               `json:"reading"`
	DefinitionTags string               `json:"definitionTags"`
	Rules          string               `json:"rules"`
	Score          float64              `json:"score"`
	Definitions    []yomitan.Definition `json:"definitions"`
	Sequence       int64                `json:"sequence"`
	ExpressionTags string               `json:"expressionTags"`
}

func newEntryView(e domain.DictionaryEntry) (entryView, error) {
	defs, err := yomitan.DecodeDefinitions(e.DefinitionsJSON)
	if err != nil {
		return entryView{}, fmt.Errorf("entry %d: %w", e.ID, err)
	}
	return entryView{
		ID:             e.ID,
		DictionaryID:   e.DictionaryID,
		Expression:     e.Expression,
		Reading:        e.Reading,
		DefinitionTags: e.DefinitionTags,
		Rules:          e.Rules,
		Score:          e.Score,
		Definitions:    defs,
		Sequence:       e.Sequence,
		ExpressionTags: e.ExpressionTags,
	}, nil
}

func newEntriesCommand() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "entries <expression>",
		Short: "Look up entries by exact expression across all dictionaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Dictionaries.QueryEntriesByExpression(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if raw {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			views := make([]entryView, len(entries))
			for i, e := range entries {
				if views[i], err = newEntryView(e); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print stored rows without decoding definitions")
	return cmd
}

func newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags <name>",
		Short: "Look up definition tags by name across all dictionaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.Dictionaries.QueryTagsByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tags)
		},
	}
}
