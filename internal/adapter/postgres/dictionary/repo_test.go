package dictionary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	postgres "github.com/youyoumu/hanayomi/internal/adapter/postgres"
	"github.com/youyoumu/hanayomi/internal/domain"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

func newMockRepo(t *testing.T, batchSize int) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock, postgres.NewTxManager(mock), batchSize), mock
}

func makeEntries(n int) []yomitan.TermBankRow {
	entries := make([]yomitan.TermBankRow, n)
	for i := range entries {
		entries[i] = yomitan.TermBankRow{
			Expression:  fmt.Sprintf("語%d", i),
			Reading:     fmt.Sprintf("ご%d", i),
			Score:       float64(i) / 2,
			Definitions: []yomitan.Definition{yomitan.PlainDefinition(fmt.Sprintf("word %d", i))},
			Sequence:    int64(i),
		}
	}
	return entries
}

func entryArgs(dictID int64, entries []yomitan.TermBankRow) []any {
	args := make([]any, 0, len(entries)*len(entryInsertColumns))
	for _, e := range entries {
		doc, _ := yomitan.EncodeDefinitions(e.Definitions)
		args = append(args, dictID, e.Expression, e.Reading, doc, e.Rules,
			e.Score, e.Sequence, e.DefinitionTags, e.ExpressionTags)
	}
	return args
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func expectImportStart(mock pgxmock.PgxPoolIface, dictID int64) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(postgres.ImportLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO dictionary \(title`).
		WithArgs(anyArgs(len(dictionaryInsertColumns))...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(dictID))
}

func TestRepo_InsertDictionaryData_Batches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		entries   int
		batchSize int
		wantSizes []int
	}{
		{"250 entries in batches of 100", 250, 100, []int{100, 100, 50}},
		{"exact multiple", 200, 100, []int{100, 100}},
		{"single partial batch", 3, 100, []int{3}},
		{"batch of one", 3, 1, []int{1, 1, 1}},
		{"no entries", 0, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo, mock := newMockRepo(t, tt.batchSize)
			entries := makeEntries(tt.entries)
			tags := []yomitan.TagBankRow{{Name: "n", Category: "partOfSpeech", Order: -1, Notes: "noun"}}
			const dictID = int64(7)

			expectImportStart(mock, dictID)
			start := 0
			for _, size := range tt.wantSizes {
				mock.ExpectExec(`INSERT INTO dictionary_entry`).
					WithArgs(entryArgs(dictID, entries[start:start+size])...).
					WillReturnResult(pgxmock.NewResult("INSERT", int64(size)))
				start += size
			}
			mock.ExpectExec(`INSERT INTO definition_tag`).
				WithArgs(dictID, "n", "partOfSpeech", -1.0, "noun", 0.0).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
			mock.ExpectCommit()

			idx := &yomitan.DictionaryIndex{Title: "T", Revision: "1"}
			id, err := repo.InsertDictionaryData(context.Background(), idx, entries, tags)
			require.NoError(t, err)
			assert.Equal(t, dictID, id)
			assert.Equal(t, tt.entries, start, "every entry must be written exactly once")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepo_InsertDictionaryData_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	entries := makeEntries(150)

	expectImportStart(mock, 1)
	mock.ExpectExec(`INSERT INTO dictionary_entry`).
		WithArgs(entryArgs(1, entries[:100])...).
		WillReturnResult(pgxmock.NewResult("INSERT", 100))
	mock.ExpectExec(`INSERT INTO dictionary_entry`).
		WithArgs(entryArgs(1, entries[100:])...).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	idx := &yomitan.DictionaryIndex{Title: "T", Revision: "1"}
	_, err := repo.InsertDictionaryData(context.Background(), idx, entries, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStore))
	assert.Contains(t, err.Error(), "insert entries 101-150")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_InsertDictionaryData_BeginFails(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	idx := &yomitan.DictionaryIndex{Title: "T", Revision: "1"}
	_, err := repo.InsertDictionaryData(context.Background(), idx, makeEntries(1), nil)
	assert.True(t, errors.Is(err, domain.ErrStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_InsertDictionaryData_NilIndex(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	_, err := repo.InsertDictionaryData(context.Background(), nil, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_InsertDictionaryData_IndexColumns(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	lang := "ja"
	idx := &yomitan.DictionaryIndex{
		Title:          "JMdict",
		Revision:       "r1",
		Version:        ptr(1),
		Sequenced:      true,
		SourceLanguage: &lang,
		IsUpdatable:    ptr(true),
		TagMeta:        yomitan.TagMeta{"n": {Category: ptr("partOfSpeech")}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(postgres.ImportLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`INSERT INTO dictionary \(title`).
		WithArgs(
			"JMdict", "r1", idx.Author, idx.Description, idx.Attribution, idx.URL,
			&lang, idx.TargetLanguage, idx.FrequencyMode, 1,
			true, idx.MinimumYomitanVersion, true, idx.IndexURL,
			idx.DownloadURL, ptr(`{"n":{"category":"partOfSpeech"}}`),
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectCommit()

	id, err := repo.InsertDictionaryData(context.Background(), idx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_QueryDictionary_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`SELECT .* FROM dictionary WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows(dictionaryColumns))

	d, err := repo.QueryDictionary(context.Background(), 42)
	require.NoError(t, err, "a missing dictionary is not an error")
	assert.Nil(t, d)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_QueryDictionary_QueryError(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`SELECT .* FROM dictionary`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("broken pipe"))

	_, err := repo.QueryDictionary(context.Background(), 1)
	assert.True(t, errors.Is(err, domain.ErrStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_DeleteDictionary_NotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`DELETE FROM dictionary WHERE id = \$1 RETURNING id`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows(dictionaryColumns))

	d, err := repo.DeleteDictionary(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, d)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_QueryEntriesByExpression(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	now := time.Now()

	rows := pgxmock.NewRows(entryColumns).
		AddRow(int64(1), now, now, int64(5), "犬", "いぬ", `["dog"]`, "", 0.0, int64(1), "", "").
		AddRow(int64(2), now, now, int64(6), "犬", "けん", `["dog (formal)"]`, "", 1.0, int64(2), "n", "")
	mock.ExpectQuery(`SELECT .* FROM dictionary_entry WHERE expression = \$1 ORDER BY id`).
		WithArgs("犬").
		WillReturnRows(rows)

	got, err := repo.QueryEntriesByExpression(context.Background(), "犬")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].DictionaryID)
	assert.Equal(t, "いぬ", got[0].Reading)
	assert.Equal(t, `["dog"]`, got[0].DefinitionsJSON)
	assert.Equal(t, "n", got[1].DefinitionTags)

	defs, err := yomitan.DecodeDefinitions(got[0].DefinitionsJSON)
	require.NoError(t, err)
	assert.Equal(t, []yomitan.Definition{yomitan.PlainDefinition("dog")}, defs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_QueryEntriesByExpression_Empty(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`FROM dictionary_entry`).
		WithArgs("猫").
		WillReturnRows(pgxmock.NewRows(entryColumns))

	got, err := repo.QueryEntriesByExpression(context.Background(), "猫")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_QueryTagsByName(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	now := time.Now()
	mock.ExpectQuery(`SELECT .*"order".* FROM definition_tag WHERE name = \$1 ORDER BY id`).
		WithArgs("n").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "dictionary_id", "name", "category", "order", "notes", "score"}).
			AddRow(int64(1), now, now, int64(2), "n", "partOfSpeech", -1.0, "noun", 0.0))

	got, err := repo.QueryTagsByName(context.Background(), "n")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, -1.0, got[0].Order)
	assert.Equal(t, "partOfSpeech", got[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CountEntries(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`SELECT count\(\*\) FROM dictionary_entry WHERE dictionary_id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(250)))

	n, err := repo.CountEntries(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CountEntries_Error(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t, 100)
	mock.ExpectQuery(`SELECT count`).
		WithArgs(int64(4)).
		WillReturnError(pgx.ErrTxClosed)

	_, err := repo.CountEntries(context.Background(), 4)
	assert.True(t, errors.Is(err, domain.ErrStore))
	require.NoError(t, mock.ExpectationsWereMet())
}

func ptr[T any](v T) *T { return &v }
