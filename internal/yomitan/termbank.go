package yomitan

import (
	"encoding/json"
	"fmt"
)

const termBankRowFields = 8

// TermBankRow is one entry of a term bank. On the wire it is a positional
// array: [expression, reading, definitionTags, rules, score, definitions,
// sequence, expressionTags].
type TermBankRow struct {
	Expression     string
	Reading        string
	DefinitionTags string
	Rules          string
	Score          float64
	Definitions    []Definition
	Sequence       int64
	ExpressionTags string
}

func (r TermBankRow) MarshalJSON() ([]byte, error) {
	defs := r.Definitions
	if defs == nil {
		defs = []Definition{}
	}
	return json.Marshal([termBankRowFields]any{
		r.Expression,
		r.Reading,
		r.DefinitionTags,
		r.Rules,
		r.Score,
		defs,
		r.Sequence,
		r.ExpressionTags,
	})
}

func (r *TermBankRow) UnmarshalJSON(data []byte) error {
	f, err := decodeRow(data, termBankRowFields)
	if err != nil {
		return err
	}

	var out TermBankRow
	if err := decodeField(f[0], "expression", &out.Expression); err != nil {
		return err
	}
	if err := decodeField(f[1], "reading", &out.Reading); err != nil {
		return err
	}
	// null definition tags mean no tags
	var tags *string
	if err := decodeField(f[2], "definitionTags", &tags); err != nil {
		return err
	}
	if tags != nil {
		out.DefinitionTags = *tags
	}
	if err := decodeField(f[3], "rules", &out.Rules); err != nil {
		return err
	}
	if err := decodeField(f[4], "score", &out.Score); err != nil {
		return err
	}
	if err := decodeDefinitions(f[5], &out.Definitions); err != nil {
		return err
	}
	if err := decodeField(f[6], "sequence", &out.Sequence); err != nil {
		return err
	}
	if err := decodeField(f[7], "expressionTags", &out.ExpressionTags); err != nil {
		return err
	}

	*r = out
	return nil
}

func decodeDefinitions(raw json.RawMessage, dst *[]Definition) error {
	var items []json.RawMessage
	if err := decodeField(raw, "definitions", &items); err != nil {
		return err
	}
	defs := make([]Definition, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &defs[i]); err != nil {
			return withPath(err, fmt.Sprintf("definitions[%d]", i))
		}
	}
	*dst = defs
	return nil
}

// ParseTermBank decodes a term bank document. Errors are *domain.SchemaError
// values carrying the 1-based row number and the offending field.
func ParseTermBank(data []byte) ([]TermBankRow, error) {
	return decodeRows(data, func(raw json.RawMessage, row *TermBankRow) error {
		return row.UnmarshalJSON(raw)
	})
}
