package yomitan

import (
	"encoding/json"

	"github.com/youyoumu/hanayomi/internal/domain"
)

// DefaultFormat is assumed when an index names neither format nor version.
const DefaultFormat = 3

// DictionaryIndex is the parsed index.json of a dictionary archive.
type DictionaryIndex struct {
	Title                 string  `json:"title"`
	Revision              string  `json:"revision"`
	MinimumYomitanVersion *string `json:"minimumYomitanVersion,omitempty"`
	Sequenced             bool    `json:"sequenced"`
	FormatField           *int    `json:"format,omitempty"  validate:"omitnil,oneof=1 2 3"`
	Version               *int    `json:"version,omitempty" validate:"omitnil,oneof=1 2 3"`
	Author                *string `json:"author,omitempty"`
	IsUpdatable           *bool   `json:"isUpdatable,omitempty"`
	IndexURL              *string `json:"indexUrl,omitempty"`
	DownloadURL           *string `json:"downloadUrl,omitempty"`
	URL                   *string `json:"url,omitempty"`
	Description           *string `json:"description,omitempty"`
	Attribution           *string `json:"attribution,omitempty"`
	SourceLanguage        *string `json:"sourceLanguage,omitempty" validate:"omitnil,langcode"`
	TargetLanguage        *string `json:"targetLanguage,omitempty" validate:"omitnil,langcode"`
	FrequencyMode         *string `json:"frequencyMode,omitempty"  validate:"omitnil,oneof=occurrence-based rank-based"`
	TagMeta               TagMeta `json:"tagMeta,omitempty"`
}

// TagMeta is the obsolete index-level tag metadata keyed by tag name.
type TagMeta map[string]TagMetaValue

type TagMetaValue struct {
	Category *string  `json:"category,omitempty"`
	Order    *float64 `json:"order,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
	Score    *float64 `json:"score,omitempty"`
}

// Format resolves the archive format: version if present, else format,
// else DefaultFormat.
func (idx *DictionaryIndex) Format() int {
	if idx.Version != nil {
		return *idx.Version
	}
	if idx.FormatField != nil {
		return *idx.FormatField
	}
	return DefaultFormat
}

// ParseIndex decodes index.json. Only structure and required-field presence
// are checked here; constraints on optional fields are left to Validate.
func ParseIndex(data []byte) (*DictionaryIndex, error) {
	if jsonKind(data) != "object" {
		return nil, domain.NewSchemaError("", "index must be a JSON object, got "+jsonKind(data))
	}

	var required struct {
		Title    *string `json:"title"`
		Revision *string `json:"revision"`
	}
	if err := json.Unmarshal(data, &required); err != nil {
		return nil, withPath(err, "")
	}
	if required.Title == nil {
		return nil, domain.NewSchemaError("title", "missing required field")
	}
	if required.Revision == nil {
		return nil, domain.NewSchemaError("revision", "missing required field")
	}

	var idx DictionaryIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, withPath(err, "")
	}
	return &idx, nil
}

// Validate checks the constrained optional fields of the index.
func (idx *DictionaryIndex) Validate() error {
	return validateStruct("", idx)
}

// TagMetaJSON returns the tag metadata as a JSON document, or nil when the
// index has none.
func (idx *DictionaryIndex) TagMetaJSON() (*string, error) {
	if len(idx.TagMeta) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(idx.TagMeta)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
