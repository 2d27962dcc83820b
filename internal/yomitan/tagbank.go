package yomitan

import "encoding/json"

const tagBankRowFields = 5

// TagBankRow describes one tag: [name, category, order, notes, score].
type TagBankRow struct {
	Name     string
	Category string
	Order    float64
	Notes    string
	Score    float64
}

func (r TagBankRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([tagBankRowFields]any{r.Name, r.Category, r.Order, r.Notes, r.Score})
}

func (r *TagBankRow) UnmarshalJSON(data []byte) error {
	f, err := decodeRow(data, tagBankRowFields)
	if err != nil {
		return err
	}

	var out TagBankRow
	fields := []struct {
		name string
		dst  any
	}{
		{"name", &out.Name},
		{"category", &out.Category},
		{"order", &out.Order},
		{"notes", &out.Notes},
		{"score", &out.Score},
	}
	for i, fd := range fields {
		if err := decodeField(f[i], fd.name, fd.dst); err != nil {
			return err
		}
	}

	*r = out
	return nil
}

// ParseTagBank decodes a tag bank document.
func ParseTagBank(data []byte) ([]TagBankRow, error) {
	return decodeRows(data, func(raw json.RawMessage, row *TagBankRow) error {
		return row.UnmarshalJSON(raw)
	})
}
