package domain

import "time"

// Dictionary is one imported dictionary release.
type Dictionary struct {
	ID        int64     `db:"id"         json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Title       string  `db:"title"       json:"title"`
	Revision    string  `db:"revision"    json:"revision"`
	Author      *string `db:"author"      json:"author,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
	Attribution *string `db:"attribution" json:"attribution,omitempty"`
	URL         *string `db:"url"         json:"url,omitempty"`

	SourceLanguage *string `db:"source_language" json:"sourceLanguage,omitempty"`
	TargetLanguage *string `db:"target_language" json:"targetLanguage,omitempty"`
	FrequencyMode  *string `db:"frequency_mode"  json:"frequencyMode,omitempty"`

	// Format is resolved from either "version" or "format" at import time.
	Format         int     `db:"format"          json:"format"`
	Sequenced      bool    `db:"sequenced"       json:"sequenced"`
	MinimumVersion *string `db:"minimum_version" json:"minimumVersion,omitempty"`

	IsUpdatable bool    `db:"is_updatable" json:"isUpdatable"`
	IndexURL    *string `db:"index_url"    json:"indexUrl,omitempty"`
	DownloadURL *string `db:"download_url" json:"downloadUrl,omitempty"`

	// TagMetaJSON is the obsolete index-level tag metadata, stored verbatim.
	TagMetaJSON *string `db:"tag_meta_json" json:"tagMetaJson,omitempty"`
}

// DictionaryEntry is a single headword/reading row of a dictionary.
type DictionaryEntry struct {
	ID           int64     `db:"id"            json:"id"`
	DictionaryID int64     `db:"dictionary_id" json:"dictionaryId"`
	CreatedAt    time.Time `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updatedAt"`

	Expression string `db:"expression" json:"expression"`
	Reading    string `db:"reading"    json:"reading"`
	// DefinitionsJSON is the compact JSON array of definitions as imported.
	DefinitionsJSON string  `db:"definitions_json" json:"definitionsJson"`
	Rules           string  `db:"rules"            json:"rules"`
	Score           float64 `db:"score"            json:"score"`
	Sequence        int64   `db:"sequence"         json:"sequence"`
	DefinitionTags  string  `db:"definition_tags"  json:"definitionTags"`
	ExpressionTags  string  `db:"expression_tags"  json:"expressionTags"`
}

// DefinitionTag describes a tag referenced by entries of one dictionary.
type DefinitionTag struct {
	ID           int64     `db:"id"            json:"id"`
	DictionaryID int64     `db:"dictionary_id" json:"dictionaryId"`
	CreatedAt    time.Time `db:"created_at"    json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updatedAt"`

	Name     string  `db:"name"     json:"name"`
	Category string  `db:"category" json:"category"`
	Order    float64 `db:"order"    json:"order"`
	Notes    string  `db:"notes"    json:"notes"`
	Score    float64 `db:"score"    json:"score"`
}
