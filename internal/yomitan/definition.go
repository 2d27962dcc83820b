package yomitan

import (
	"encoding/json"
	"fmt"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// DefinitionKind selects the populated variant of Definition.
type DefinitionKind int

const (
	DefinitionPlain DefinitionKind = iota
	DefinitionDetailed
	DefinitionDeinflection
)

func (k DefinitionKind) String() string {
	switch k {
	case DefinitionPlain:
		return "plain"
	case DefinitionDetailed:
		return "detailed"
	case DefinitionDeinflection:
		return "deinflection"
	default:
		return fmt.Sprintf("DefinitionKind(%d)", int(k))
	}
}

// Definition is one meaning of a term: a plain string, a detailed
// definition object, or a deinflection pointing at the uninflected term.
type Definition struct {
	Kind         DefinitionKind
	Text         string
	Detailed     *DetailedDefinition
	Deinflection *Deinflection
}

// DetailedType is the "type" discriminant of a detailed definition.
type DetailedType string

const (
	DetailedText              DetailedType = "text"
	DetailedImage             DetailedType = "image"
	DetailedStructuredContent DetailedType = "structured-content"
)

// DetailedDefinition carries exactly one of Text, Image or Content,
// selected by Type.
type DetailedDefinition struct {
	Type    DetailedType
	Text    string
	Image   *ImageDefinition
	Content *Content
}

// ImageDefinition is a definition rendered as an image from the archive.
type ImageDefinition struct {
	Path           string  `json:"path"`
	Width          *int    `json:"width,omitempty"  validate:"omitnil,min=1"`
	Height         *int    `json:"height,omitempty" validate:"omitnil,min=1"`
	Title          *string `json:"title,omitempty"`
	Alt            *string `json:"alt,omitempty"`
	Description    *string `json:"description,omitempty"`
	Pixelated      bool    `json:"pixelated"`
	ImageRendering string  `json:"imageRendering" validate:"oneof=auto pixelated crisp-edges"`
	Appearance     string  `json:"appearance"     validate:"oneof=auto monochrome"`
	Background     bool    `json:"background"`
	Collapsed      bool    `json:"collapsed"`
	Collapsible    bool    `json:"collapsible"`
}

// NewImageDefinition returns an image definition with the format defaults
// applied.
func NewImageDefinition(path string) *ImageDefinition {
	return &ImageDefinition{
		Path:           path,
		ImageRendering: "auto",
		Appearance:     "auto",
		Background:     true,
		Collapsible:    true,
	}
}

// Deinflection marks a term as an inflected form of Uninflected, reached by
// applying Rules in order.
type Deinflection struct {
	Uninflected string
	Rules       []string
}

// PlainDefinition returns a plain string definition.
func PlainDefinition(s string) Definition {
	return Definition{Kind: DefinitionPlain, Text: s}
}

// TextDefinition returns a detailed definition of type "text".
func TextDefinition(s string) Definition {
	return Definition{Kind: DefinitionDetailed, Detailed: &DetailedDefinition{Type: DetailedText, Text: s}}
}

// ImageDefinitionOf returns a detailed definition of type "image".
func ImageDefinitionOf(img *ImageDefinition) Definition {
	return Definition{Kind: DefinitionDetailed, Detailed: &DetailedDefinition{Type: DetailedImage, Image: img}}
}

// StructuredDefinition returns a detailed definition of type
// "structured-content".
func StructuredDefinition(c Content) Definition {
	return Definition{Kind: DefinitionDetailed, Detailed: &DetailedDefinition{Type: DetailedStructuredContent, Content: &c}}
}

// DeinflectionDefinition returns a deinflection definition.
func DeinflectionDefinition(uninflected string, rules ...string) Definition {
	if rules == nil {
		rules = []string{}
	}
	return Definition{Kind: DefinitionDeinflection, Deinflection: &Deinflection{Uninflected: uninflected, Rules: rules}}
}

func (d Definition) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DefinitionPlain:
		return json.Marshal(d.Text)
	case DefinitionDetailed:
		if d.Detailed == nil {
			return nil, fmt.Errorf("definition: detailed variant without body")
		}
		return d.Detailed.MarshalJSON()
	case DefinitionDeinflection:
		if d.Deinflection == nil {
			return nil, fmt.Errorf("definition: deinflection variant without body")
		}
		rules := d.Deinflection.Rules
		if rules == nil {
			rules = []string{}
		}
		return json.Marshal([]any{d.Deinflection.Uninflected, rules})
	default:
		return nil, fmt.Errorf("definition: unknown kind %d", d.Kind)
	}
}

func (d *Definition) UnmarshalJSON(data []byte) error {
	switch jsonKind(data) {
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return withPath(err, "")
		}
		*d = PlainDefinition(s)
		return nil
	case "object":
		var dd DetailedDefinition
		if err := dd.UnmarshalJSON(data); err != nil {
			return err
		}
		*d = Definition{Kind: DefinitionDetailed, Detailed: &dd}
		return nil
	case "array":
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return withPath(err, "")
		}
		if len(parts) != 2 || jsonKind(parts[0]) != "string" || jsonKind(parts[1]) != "array" {
			return domain.NewSchemaError("", "deinflection must be [uninflected, [rules...]]")
		}
		var di Deinflection
		if err := decodeField(parts[0], "[0]", &di.Uninflected); err != nil {
			return err
		}
		if err := decodeField(parts[1], "[1]", &di.Rules); err != nil {
			return err
		}
		*d = Definition{Kind: DefinitionDeinflection, Deinflection: &di}
		return nil
	default:
		return domain.NewSchemaError("", fmt.Sprintf("definition must be a string, object or array, got %s", jsonKind(data)))
	}
}

func (d DetailedDefinition) MarshalJSON() ([]byte, error) {
	switch d.Type {
	case DetailedText:
		return withDiscriminant("type", string(d.Type), struct {
			Text string `json:"text"`
		}{d.Text})
	case DetailedImage:
		if d.Image == nil {
			return nil, fmt.Errorf("definition: image variant without image")
		}
		return withDiscriminant("type", string(d.Type), d.Image)
	case DetailedStructuredContent:
		if d.Content == nil {
			return nil, fmt.Errorf("definition: structured-content variant without content")
		}
		return withDiscriminant("type", string(d.Type), struct {
			Content *Content `json:"content"`
		}{d.Content})
	default:
		return nil, fmt.Errorf("definition: unknown detailed type %q", d.Type)
	}
}

func (d *DetailedDefinition) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type    *string         `json:"type"`
		Text    *string         `json:"text"`
		Path    *string         `json:"path"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return withPath(err, "")
	}
	if probe.Type == nil {
		return domain.NewSchemaError("type", "detailed definition requires a type")
	}

	switch DetailedType(*probe.Type) {
	case DetailedText:
		if probe.Text == nil {
			return domain.NewSchemaError("text", "text definition requires text")
		}
		*d = DetailedDefinition{Type: DetailedText, Text: *probe.Text}
	case DetailedImage:
		if probe.Path == nil {
			return domain.NewSchemaError("path", "image definition requires a path")
		}
		img := NewImageDefinition("")
		if err := json.Unmarshal(data, img); err != nil {
			return withPath(err, "")
		}
		*d = DetailedDefinition{Type: DetailedImage, Image: img}
	case DetailedStructuredContent:
		if probe.Content == nil {
			return domain.NewSchemaError("content", "structured-content definition requires content")
		}
		c, err := ParseContent(probe.Content)
		if err != nil {
			return withPath(err, "content")
		}
		*d = DetailedDefinition{Type: DetailedStructuredContent, Content: &c}
	default:
		return domain.NewSchemaError("type", fmt.Sprintf("unknown detailed definition type %q", *probe.Type))
	}
	return nil
}

// DecodeDefinitions decodes a stored definitions document back into
// definitions.
func DecodeDefinitions(doc string) ([]Definition, error) {
	var defs []Definition
	if err := json.Unmarshal([]byte(doc), &defs); err != nil {
		return nil, withPath(err, "definitions")
	}
	return defs, nil
}

// EncodeDefinitions encodes definitions into the compact document stored
// alongside an entry.
func EncodeDefinitions(defs []Definition) (string, error) {
	if defs == nil {
		defs = []Definition{}
	}
	b, err := json.Marshal(defs)
	if err != nil {
		return "", fmt.Errorf("encode definitions: %w", err)
	}
	return string(b), nil
}
