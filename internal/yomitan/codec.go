package yomitan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// withPath attributes err to the field path seg. Schema errors get seg
// prepended to their field; anything else is wrapped into a new SchemaError.
func withPath(err error, seg string) error {
	if err == nil {
		return nil
	}

	var se *domain.SchemaError
	if errors.As(err, &se) {
		cp := *se
		cp.Field = joinPath(seg, se.Field)
		return &cp
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		msg := fmt.Sprintf("expected %s, got JSON %s", ute.Type, ute.Value)
		return &domain.SchemaError{Field: joinPath(seg, ute.Field), Message: msg, Err: err}
	}

	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return &domain.SchemaError{Field: seg, Message: fmt.Sprintf("malformed JSON at offset %d", syn.Offset), Err: err}
	}

	return &domain.SchemaError{Field: seg, Err: err}
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}

// withDiscriminant encodes v as a JSON object and splices key:value in as
// its first member.
func withDiscriminant(key, value string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s %q: not an object", key, value)
	}

	k, _ := json.Marshal(key)
	val, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(k) + len(val) + 2)
	buf.WriteByte('{')
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	if rest := body[1:]; len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// jsonKind names the JSON value type that data starts with.
func jsonKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// checkDepth rejects documents whose array/object nesting exceeds limit.
// It only tracks brackets outside string literals and leaves syntax
// checking to the decoder.
func checkDepth(data []byte, limit int) error {
	depth := 0
	inString := false
	escaped := false

	for _, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > limit {
				return domain.NewSchemaError("", fmt.Sprintf("structured content nested deeper than %d levels", limit))
			}
		case ']', '}':
			depth--
		}
	}
	return nil
}

// decodeRow splits a positional JSON array into exactly n raw fields.
func decodeRow(data []byte, n int) ([]json.RawMessage, error) {
	if jsonKind(data) != "array" {
		return nil, domain.NewSchemaError("", fmt.Sprintf("row must be an array, got %s", jsonKind(data)))
	}
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, withPath(err, "")
	}
	if len(fields) != n {
		return nil, domain.NewSchemaError("", fmt.Sprintf("expected %d fields, got %d", n, len(fields)))
	}
	return fields, nil
}

// decodeField decodes one positional field into dst, attributing failures
// to name.
func decodeField(raw json.RawMessage, name string, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return withPath(err, name)
	}
	return nil
}

// decodeRows decodes a bank document (a JSON array of rows) with each row
// handled by decode. Errors carry the 1-based row number.
func decodeRows[T any](data []byte, decode func(json.RawMessage, *T) error) ([]T, error) {
	if jsonKind(data) != "array" {
		return nil, domain.NewSchemaError("", fmt.Sprintf("bank must be an array of rows, got %s", jsonKind(data)))
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, withPath(err, "")
	}

	rows := make([]T, len(raws))
	for i, raw := range raws {
		if err := decode(raw, &rows[i]); err != nil {
			return nil, domain.InFile(err, "", i+1)
		}
	}
	return rows, nil
}
