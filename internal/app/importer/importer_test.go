package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youyoumu/hanayomi/internal/config"
	"github.com/youyoumu/hanayomi/internal/domain"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

//go:generate moq -out store_mock_test.go -pkg importer . Store

const (
	testIndex   = `{"title":"T","revision":"1"}`
	inuTermBank = `[["犬","いぬ","n","",0,["dog"],1,""]]`
	testTagBank = `[["n","partOfSpeech",-1,"noun",0]]`
)

// recordingProgress collects every update it receives.
type recordingProgress struct {
	mu      sync.Mutex
	stages  []State
	reports []string
}

func (p *recordingProgress) Stage(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stages = append(p.stages, s)
}

func (p *recordingProgress) Report(_, _ int, label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, label)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(id int64) *StoreMock {
	return &StoreMock{
		InsertDictionaryDataFunc: func(context.Context, *yomitan.DictionaryIndex, []yomitan.TermBankRow, []yomitan.TagBankRow) (int64, error) {
			return id, nil
		},
		CountEntriesFunc: func(context.Context, int64) (int, error) { return 0, nil },
	}
}

func newImporter(t *testing.T, store Store, opts ...Option) *Importer {
	t.Helper()
	cfg := config.ImportConfig{TempDir: t.TempDir(), BatchSize: 100, Validate: true}
	return New(cfg, store, discardLogger(), opts...)
}

func requireImportError(t *testing.T, err error, stage State, cause error) *ImportError {
	t.Helper()
	require.Error(t, err)

	var ie *ImportError
	require.True(t, errors.As(err, &ie), "expected ImportError, got %T: %v", err, err)
	assert.Equal(t, stage, ie.Stage, "stage")
	assert.True(t, errors.Is(err, cause), "expected %v in %v", cause, err)
	return ie
}

func TestImport_Success(t *testing.T) {
	t.Parallel()

	store := newStore(42)
	progress := &recordingProgress{}
	im := newImporter(t, store, WithProgress(progress))

	archive := writeArchive(t, "inu.zip",
		file("index.json", testIndex),
		file("term_bank_1.json", inuTermBank),
		file("tag_bank_1.json", testTagBank),
	)

	res, err := im.Import(context.Background(), archive)
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.DictionaryID)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "1", res.Revision)
	assert.Equal(t, yomitan.DefaultFormat, res.Format)
	assert.Equal(t, 1, res.Entries)
	assert.Equal(t, 1, res.Tags)
	assert.Equal(t, "inu.zip", filepath.Base(filepath.Dir(res.Dir)))
	assert.Equal(t, res.RunID.String(), filepath.Base(res.Dir))

	calls := store.InsertDictionaryDataCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "T", calls[0].Index.Title)
	assert.Equal(t, []yomitan.TermBankRow{{
		Expression:     "犬",
		Reading:        "いぬ",
		DefinitionTags: "n",
		Definitions:    []yomitan.Definition{yomitan.PlainDefinition("dog")},
		Sequence:       1,
	}}, calls[0].Entries)
	assert.Equal(t, []yomitan.TagBankRow{{Name: "n", Category: "partOfSpeech", Order: -1, Notes: "noun"}}, calls[0].Tags)

	require.Len(t, store.CountEntriesCalls(), 1)
	assert.Equal(t, int64(42), store.CountEntriesCalls()[0].DictionaryID)

	assert.Equal(t, []State{StateExtracting, StateParsingIndex, StateParsingBanks, StateInserting, StateCommitted}, progress.stages)
	assert.Equal(t, []string{"term_bank_1.json", "tag_bank_1.json"}, progress.reports)
}

func TestImport_BankOrderAndConcatenation(t *testing.T) {
	t.Parallel()

	store := newStore(1)
	im := newImporter(t, store)

	archive := writeArchive(t, "multi.zip",
		file("term_bank_10.json", `[["c","","","",0,[],3,""]]`),
		file("index.json", testIndex),
		file("term_bank_2.json", `[["b","","","",0,[],2,""]]`),
		file("term_bank_1.json", `[["a","","","",0,[],1,""],["a","","","",0,[],1,""]]`),
	)

	res, err := im.Import(context.Background(), archive)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TermFiles)
	assert.Equal(t, 0, res.TagFiles)

	entries := store.InsertDictionaryDataCalls()[0].Entries
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Expression
	}
	assert.Equal(t, []string{"a", "a", "b", "c"}, got, "duplicates are kept and files are read in numeric order")
	assert.Empty(t, store.InsertDictionaryDataCalls()[0].Tags)
}

func TestImport_EmptyDictionary(t *testing.T) {
	t.Parallel()

	store := newStore(5)
	im := newImporter(t, store)

	res, err := im.Import(context.Background(), writeArchive(t, "empty.zip", file("index.json", testIndex)))
	require.NoError(t, err)
	assert.Zero(t, res.Entries)
	assert.Len(t, store.InsertDictionaryDataCalls(), 1)
}

func TestImport_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		entries   [][2]string
		wantStage State
		wantErr   error
		wantFile  string
		wantRow   int
	}{
		{
			name:      "missing index",
			entries:   [][2]string{file("term_bank_1.json", inuTermBank)},
			wantStage: StateParsingIndex,
			wantErr:   domain.ErrIO,
		},
		{
			name:      "index without title",
			entries:   [][2]string{file("index.json", `{"revision":"1"}`)},
			wantStage: StateParsingIndex,
			wantErr:   domain.ErrSchema,
			wantFile:  "index.json",
		},
		{
			name:      "index with invalid language",
			entries:   [][2]string{file("index.json", `{"title":"T","revision":"1","sourceLanguage":"Japanese"}`)},
			wantStage: StateParsingIndex,
			wantErr:   domain.ErrValidation,
			wantFile:  "index.json",
		},
		{
			name: "malformed term bank",
			entries: [][2]string{
				file("index.json", testIndex),
				file("term_bank_1.json", `[["犬","いぬ","","",0,["dog"],1,""],["猫","ねこ","","","high",["cat"],2,""]]`),
			},
			wantStage: StateParsingBanks,
			wantErr:   domain.ErrSchema,
			wantFile:  "term_bank_1.json",
			wantRow:   2,
		},
		{
			name: "definition fails validation",
			entries: [][2]string{
				file("index.json", testIndex),
				file("term_bank_1.json", inuTermBank),
				file("term_bank_2.json", `[["絵","え","","",0,[{"type":"image","path":"e.png","width":0}],1,""]]`),
			},
			wantStage: StateParsingBanks,
			wantErr:   domain.ErrValidation,
			wantFile:  "term_bank_2.json",
			wantRow:   1,
		},
		{
			name: "tag bank fails after term banks",
			entries: [][2]string{
				file("index.json", testIndex),
				file("term_bank_1.json", inuTermBank),
				file("tag_bank_1.json", `[["n","partOfSpeech"]]`),
			},
			wantStage: StateParsingBanks,
			wantErr:   domain.ErrSchema,
			wantFile:  "tag_bank_1.json",
			wantRow:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newStore(1)
			progress := &recordingProgress{}
			im := newImporter(t, store, WithProgress(progress))

			res, err := im.Import(context.Background(), writeArchive(t, "d.zip", tt.entries...))
			assert.Nil(t, res)
			requireImportError(t, err, tt.wantStage, tt.wantErr)

			if tt.wantFile != "" {
				var se *domain.SchemaError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantFile, se.File)
				assert.Equal(t, tt.wantRow, se.Row)
			}

			assert.Empty(t, store.InsertDictionaryDataCalls(), "nothing may be written after a parse failure")
			assert.Equal(t, StateFailed, progress.stages[len(progress.stages)-1])
		})
	}
}

func TestImport_ValidationCanBeDisabled(t *testing.T) {
	t.Parallel()

	store := newStore(1)
	cfg := config.ImportConfig{TempDir: t.TempDir(), Validate: false}
	im := New(cfg, store, discardLogger())

	archive := writeArchive(t, "d.zip",
		file("index.json", testIndex),
		file("term_bank_1.json", `[["絵","え","","",0,[{"type":"image","path":"e.png","width":0}],1,""]]`),
	)

	_, err := im.Import(context.Background(), archive)
	require.NoError(t, err)
	assert.Len(t, store.InsertDictionaryDataCalls(), 1)
}

func TestImport_ArchiveErrors(t *testing.T) {
	t.Parallel()

	store := newStore(1)
	im := newImporter(t, store)

	_, err := im.Import(context.Background(), filepath.Join(t.TempDir(), "missing.zip"))
	requireImportError(t, err, StateExtracting, domain.ErrArchive)

	_, err = im.Import(context.Background(), writeArchive(t, "slip.zip", file("../index.json", testIndex)))
	requireImportError(t, err, StateExtracting, domain.ErrArchive)

	assert.Empty(t, store.InsertDictionaryDataCalls())
}

func TestImport_StoreFailure(t *testing.T) {
	t.Parallel()

	store := newStore(0)
	store.InsertDictionaryDataFunc = func(context.Context, *yomitan.DictionaryIndex, []yomitan.TermBankRow, []yomitan.TagBankRow) (int64, error) {
		return 0, domain.ErrStore
	}
	im := newImporter(t, store)

	archive := writeArchive(t, "d.zip", file("index.json", testIndex), file("term_bank_1.json", inuTermBank))
	_, err := im.Import(context.Background(), archive)
	ie := requireImportError(t, err, StateInserting, domain.ErrStore)
	assert.Contains(t, ie.Error(), "while inserting")
	assert.Empty(t, store.CountEntriesCalls())
}

func TestImport_CountFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := newStore(3)
	store.CountEntriesFunc = func(context.Context, int64) (int, error) { return 0, domain.ErrStore }
	im := newImporter(t, store)

	res, err := im.Import(context.Background(), writeArchive(t, "d.zip", file("index.json", testIndex)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.DictionaryID)
}

func TestImport_ConcurrentRunsAreIndependent(t *testing.T) {
	t.Parallel()

	store := newStore(1)
	im := newImporter(t, store)

	archives := []string{
		writeArchive(t, "a.zip", file("index.json", `{"title":"A","revision":"1"}`), file("term_bank_1.json", inuTermBank)),
		writeArchive(t, "b.zip", file("index.json", `{"title":"B","revision":"1"}`), file("term_bank_1.json", inuTermBank)),
		writeArchive(t, "c.zip", file("index.json", `{"revision":"1"}`)),
	}

	errs := make([]error, len(archives))
	var wg sync.WaitGroup
	for i, a := range archives {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = im.Import(context.Background(), a)
		}()
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.True(t, errors.Is(errs[2], domain.ErrSchema))
	assert.Len(t, store.InsertDictionaryDataCalls(), 2)
}

func TestImport_ConcurrentRunsOfSameArchiveName(t *testing.T) {
	t.Parallel()

	store := newStore(1)
	im := newImporter(t, store)

	titles := []string{"A", "B", "C", "D"}
	archives := make([]string, len(titles))
	for i, title := range titles {
		archives[i] = writeArchive(t, "jmdict.zip",
			file("index.json", `{"title":"`+title+`","revision":"1"}`),
			file("term_bank_1.json", inuTermBank),
		)
	}

	results := make([]*Result, len(archives))
	errs := make([]error, len(archives))
	var wg sync.WaitGroup
	for i, a := range archives {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = im.Import(context.Background(), a)
		}()
	}
	wg.Wait()

	dirs := map[string]bool{}
	for i := range archives {
		require.NoError(t, errs[i])
		assert.Equal(t, titles[i], results[i].Title)
		dirs[results[i].Dir] = true
	}
	assert.Len(t, dirs, len(archives))

	var inserted []string
	for _, c := range store.InsertDictionaryDataCalls() {
		inserted = append(inserted, c.Index.Title)
	}
	assert.ElementsMatch(t, titles, inserted)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "parsing banks", StateParsingBanks.String())
	assert.Equal(t, "state(99)", State(99).String())
	assert.True(t, StateCommitted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateInserting.Terminal())
}
