package yomitan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// Style is the CSS-like style block of td, th and styled container elements.
// Absent properties stay nil so documents re-encode as they were imported.
type Style struct {
	FontStyle           *string             `json:"fontStyle,omitempty"           validate:"omitnil,oneof=normal italic"`
	FontWeight          *string             `json:"fontWeight,omitempty"          validate:"omitnil,oneof=normal bold"`
	FontSize            *string             `json:"fontSize,omitempty"`
	Color               *string             `json:"color,omitempty"`
	Background          *string             `json:"background,omitempty"`
	BackgroundColor     *string             `json:"backgroundColor,omitempty"`
	TextDecorationLine  *TextDecorationLine `json:"textDecorationLine,omitempty"`
	TextDecorationStyle *string             `json:"textDecorationStyle,omitempty" validate:"omitnil,oneof=solid double dotted dashed wavy"`
	TextDecorationColor *string             `json:"textDecorationColor,omitempty"`
	BorderColor         *string             `json:"borderColor,omitempty"`
	BorderStyle         *string             `json:"borderStyle,omitempty"`
	BorderRadius        *string             `json:"borderRadius,omitempty"`
	BorderWidth         *string             `json:"borderWidth,omitempty"`
	ClipPath            *string             `json:"clipPath,omitempty"`
	VerticalAlign       *string             `json:"verticalAlign,omitempty"       validate:"omitnil,oneof=baseline sub super text-top text-bottom middle top bottom"`
	TextAlign           *string             `json:"textAlign,omitempty"           validate:"omitnil,oneof=start end left right center justify justify-all match-parent"`
	TextEmphasis        *string             `json:"textEmphasis,omitempty"`
	TextShadow          *string             `json:"textShadow,omitempty"`
	Margin              *string             `json:"margin,omitempty"`
	MarginTop           *NumberOrString     `json:"marginTop,omitempty"`
	MarginLeft          *NumberOrString     `json:"marginLeft,omitempty"`
	MarginRight         *NumberOrString     `json:"marginRight,omitempty"`
	MarginBottom        *NumberOrString     `json:"marginBottom,omitempty"`
	Padding             *string             `json:"padding,omitempty"`
	PaddingTop          *string             `json:"paddingTop,omitempty"`
	PaddingLeft         *string             `json:"paddingLeft,omitempty"`
	PaddingRight        *string             `json:"paddingRight,omitempty"`
	PaddingBottom       *string             `json:"paddingBottom,omitempty"`
	WordBreak           *string             `json:"wordBreak,omitempty"           validate:"omitnil,oneof=normal break-all keep-all"`
	WhiteSpace          *string             `json:"whiteSpace,omitempty"`
	Cursor              *string             `json:"cursor,omitempty"`
	ListStyleType       *string             `json:"listStyleType,omitempty"`
}

// TextDecorationLine is either a single keyword or a list of keywords.
type TextDecorationLine struct {
	Values []string
	List   bool
}

func (t TextDecorationLine) MarshalJSON() ([]byte, error) {
	if t.List {
		if t.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.Values)
	}
	if len(t.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(t.Values[0])
}

func (t *TextDecorationLine) UnmarshalJSON(data []byte) error {
	switch jsonKind(data) {
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return withPath(err, "")
		}
		*t = TextDecorationLine{Values: []string{s}}
	case "array":
		var vals []string
		if err := json.Unmarshal(data, &vals); err != nil {
			return withPath(err, "")
		}
		*t = TextDecorationLine{Values: vals, List: true}
	default:
		return domain.NewSchemaError("", "textDecorationLine must be a string or an array of strings")
	}
	return nil
}

// NumberOrString holds a margin given either as a bare number or a CSS length.
type NumberOrString struct {
	Number   float64
	String   string
	IsString bool
}

func (v NumberOrString) MarshalJSON() ([]byte, error) {
	if v.IsString {
		return json.Marshal(v.String)
	}
	return []byte(strconv.FormatFloat(v.Number, 'g', -1, 64)), nil
}

func (v *NumberOrString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch jsonKind(data) {
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return withPath(err, "")
		}
		*v = NumberOrString{String: s, IsString: true}
	case "number":
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return withPath(err, "")
		}
		*v = NumberOrString{Number: f}
	default:
		return domain.NewSchemaError("", fmt.Sprintf("expected number or string, got %s", jsonKind(data)))
	}
	return nil
}
