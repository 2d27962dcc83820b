// Package dictionary implements the dictionary store using PostgreSQL.
// Imports are written in a single transaction; reads only ever see
// committed dictionaries.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/youyoumu/hanayomi/internal/adapter/postgres"
	"github.com/youyoumu/hanayomi/internal/domain"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

// DefaultBatchSize is the number of rows per multi-row INSERT.
const DefaultBatchSize = 100

const (
	tableDictionary = "dictionary"
	tableEntry      = "dictionary_entry"
	tableTag        = "definition_tag"
)

var (
	dictionaryInsertColumns = []string{
		"title", "revision", "author", "description", "attribution", "url",
		"source_language", "target_language", "frequency_mode", "format",
		"sequenced", "minimum_version", "is_updatable", "index_url",
		"download_url", "tag_meta_json",
	}
	entryInsertColumns = []string{
		"dictionary_id", "expression", "reading", "definitions_json", "rules",
		"score", "sequence", "definition_tags", "expression_tags",
	}
	tagInsertColumns = []string{
		"dictionary_id", "name", "category", `"order"`, "notes", "score",
	}

	dictionaryColumns = withMeta(dictionaryInsertColumns)
	entryColumns      = withMeta(entryInsertColumns)
	tagColumns        = withMeta(tagInsertColumns)
)

func withMeta(cols []string) []string {
	return append([]string{"id", "created_at", "updated_at"}, cols...)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo provides dictionary persistence backed by PostgreSQL.
type Repo struct {
	pool      postgres.Querier
	tx        txManager
	batchSize int
}

// New creates a new dictionary repository. A non-positive batchSize falls
// back to DefaultBatchSize.
func New(pool postgres.Querier, tx txManager, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Repo{pool: pool, tx: tx, batchSize: batchSize}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// InsertDictionaryData stores a dictionary with all of its entries and tags
// in one transaction and returns the generated dictionary id. Writers are
// serialized with a transaction-scoped advisory lock. On any failure the
// transaction is rolled back and nothing is visible to readers.
func (r *Repo) InsertDictionaryData(
	ctx context.Context,
	index *yomitan.DictionaryIndex,
	entries []yomitan.TermBankRow,
	tags []yomitan.TagBankRow,
) (int64, error) {
	if index == nil {
		return 0, fmt.Errorf("%w: insert dictionary: index is required", domain.ErrStore)
	}

	tagMeta, err := index.TagMetaJSON()
	if err != nil {
		return 0, fmt.Errorf("%w: encode tag meta: %w", domain.ErrStore, err)
	}
	definitions := make([]string, len(entries))
	for i, e := range entries {
		doc, err := yomitan.EncodeDefinitions(e.Definitions)
		if err != nil {
			return 0, fmt.Errorf("%w: entry %d: %w", domain.ErrStore, i+1, err)
		}
		definitions[i] = doc
	}

	var dictID int64
	err = r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)

		if err := postgres.LockXact(ctx, q, postgres.ImportLockKey); err != nil {
			return postgres.MapError(err, tableDictionary, 0)
		}

		id, err := r.insertDictionary(ctx, q, index, tagMeta)
		if err != nil {
			return err
		}
		dictID = id

		if err := r.insertEntries(ctx, q, id, entries, definitions); err != nil {
			return err
		}
		return r.insertTags(ctx, q, id, tags)
	})
	if err != nil {
		return 0, storeError(err)
	}

	return dictID, nil
}

func (r *Repo) insertDictionary(ctx context.Context, q postgres.Querier, idx *yomitan.DictionaryIndex, tagMeta *string) (int64, error) {
	isUpdatable := idx.IsUpdatable != nil && *idx.IsUpdatable

	query, args, err := postgres.Builder().
		Insert(tableDictionary).
		Columns(dictionaryInsertColumns...).
		Values(
			idx.Title, idx.Revision, idx.Author, idx.Description, idx.Attribution, idx.URL,
			idx.SourceLanguage, idx.TargetLanguage, idx.FrequencyMode, idx.Format(),
			idx.Sequenced, idx.MinimumYomitanVersion, isUpdatable, idx.IndexURL,
			idx.DownloadURL, tagMeta,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: build dictionary insert: %w", domain.ErrStore, err)
	}

	var id int64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, postgres.MapError(err, tableDictionary, 0)
	}
	return id, nil
}

func (r *Repo) insertEntries(ctx context.Context, q postgres.Querier, dictID int64, entries []yomitan.TermBankRow, definitions []string) error {
	for start := 0; start < len(entries); start += r.batchSize {
		end := min(start+r.batchSize, len(entries))

		ib := postgres.Builder().Insert(tableEntry).Columns(entryInsertColumns...)
		for i := start; i < end; i++ {
			e := entries[i]
			ib = ib.Values(
				dictID, e.Expression, e.Reading, definitions[i], e.Rules,
				e.Score, e.Sequence, e.DefinitionTags, e.ExpressionTags,
			)
		}

		if err := execInsert(ctx, q, ib, tableEntry, dictID); err != nil {
			return fmt.Errorf("insert entries %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}

func (r *Repo) insertTags(ctx context.Context, q postgres.Querier, dictID int64, tags []yomitan.TagBankRow) error {
	for start := 0; start < len(tags); start += r.batchSize {
		end := min(start+r.batchSize, len(tags))

		ib := postgres.Builder().Insert(tableTag).Columns(tagInsertColumns...)
		for _, t := range tags[start:end] {
			ib = ib.Values(dictID, t.Name, t.Category, t.Order, t.Notes, t.Score)
		}

		if err := execInsert(ctx, q, ib, tableTag, dictID); err != nil {
			return fmt.Errorf("insert tags %d-%d: %w", start+1, end, err)
		}
	}
	return nil
}

func execInsert(ctx context.Context, q postgres.Querier, ib squirrel.InsertBuilder, table string, dictID int64) error {
	query, args, err := ib.ToSql()
	if err != nil {
		return fmt.Errorf("%w: build %s insert: %w", domain.ErrStore, table, err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, table, dictID)
	}
	return nil
}

// DeleteDictionary removes a dictionary and, through ON DELETE CASCADE, its
// entries and tags. It returns the deleted row, or nil when id does not exist.
func (r *Repo) DeleteDictionary(ctx context.Context, id int64) (*domain.Dictionary, error) {
	query, args, err := postgres.Builder().
		Delete(tableDictionary).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(dictionaryColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build dictionary delete: %w", domain.ErrStore, err)
	}

	return r.getDictionary(ctx, id, query, args)
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// QueryDictionary returns the dictionary with the given id, or nil when it
// does not exist.
func (r *Repo) QueryDictionary(ctx context.Context, id int64) (*domain.Dictionary, error) {
	query, args, err := postgres.Builder().
		Select(dictionaryColumns...).
		From(tableDictionary).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build dictionary select: %w", domain.ErrStore, err)
	}

	return r.getDictionary(ctx, id, query, args)
}

func (r *Repo) getDictionary(ctx context.Context, id int64, query string, args []any) (*domain.Dictionary, error) {
	var d domain.Dictionary
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.pool), &d, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, postgres.MapError(err, tableDictionary, id)
	}
	return &d, nil
}

// QueryAllDictionaries returns every dictionary ordered by id.
func (r *Repo) QueryAllDictionaries(ctx context.Context) ([]domain.Dictionary, error) {
	qb := postgres.Builder().
		Select(dictionaryColumns...).
		From(tableDictionary).
		OrderBy("id")

	var out []domain.Dictionary
	if err := r.selectAll(ctx, qb, tableDictionary, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Dictionary{}
	}
	return out, nil
}

// QueryEntriesByExpression returns the entries of all dictionaries whose
// expression equals expr exactly, ordered by id.
func (r *Repo) QueryEntriesByExpression(ctx context.Context, expr string) ([]domain.DictionaryEntry, error) {
	qb := postgres.Builder().
		Select(entryColumns...).
		From(tableEntry).
		Where(squirrel.Eq{"expression": expr}).
		OrderBy("id")

	var out []domain.DictionaryEntry
	if err := r.selectAll(ctx, qb, tableEntry, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.DictionaryEntry{}
	}
	return out, nil
}

// QueryTagsByName returns the tags named name across all dictionaries,
// ordered by id.
func (r *Repo) QueryTagsByName(ctx context.Context, name string) ([]domain.DefinitionTag, error) {
	qb := postgres.Builder().
		Select(tagColumns...).
		From(tableTag).
		Where(squirrel.Eq{"name": name}).
		OrderBy("id")

	var out []domain.DefinitionTag
	if err := r.selectAll(ctx, qb, tableTag, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.DefinitionTag{}
	}
	return out, nil
}

// CountEntries returns the number of entries stored for a dictionary.
func (r *Repo) CountEntries(ctx context.Context, dictionaryID int64) (int, error) {
	query, args, err := postgres.Builder().
		Select("count(*)").
		From(tableEntry).
		Where(squirrel.Eq{"dictionary_id": dictionaryID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: build entry count: %w", domain.ErrStore, err)
	}

	var n int64
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, tableEntry, dictionaryID)
	}
	return int(n), nil
}

func (r *Repo) selectAll(ctx context.Context, qb squirrel.SelectBuilder, table string, dst any) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("%w: build %s select: %w", domain.ErrStore, table, err)
	}
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), dst, query, args...); err != nil {
		return postgres.MapError(err, table, 0)
	}
	return nil
}

// storeError makes sure a failed import is reported as a store failure.
func storeError(err error) error {
	if err == nil || errors.Is(err, domain.ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
