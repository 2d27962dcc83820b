// Package importer turns a Yomitan dictionary archive into stored rows.
//
// An import runs through Extracting, ParsingIndex, ParsingBanks and
// Inserting before it is Committed. Any failure moves it to Failed and is
// reported as an *ImportError naming the stage. Nothing is written to the
// store until every document has been parsed, and the store write itself is
// a single transaction, so a failed import leaves no trace besides the
// extracted files.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/youyoumu/hanayomi/internal/config"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

// State is a step of the import pipeline.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateParsingIndex
	StateParsingBanks
	StateInserting
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateParsingIndex:
		return "parsing index"
	case StateParsingBanks:
		return "parsing banks"
	case StateInserting:
		return "inserting"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}

// ImportError is returned by Import. Stage is the state the pipeline was in
// when it failed; Err carries the typed cause (domain.ErrIO, ErrArchive,
// ErrSchema or ErrStore).
type ImportError struct {
	Stage State
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed while %s: %v", e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Store is the persistence the pipeline writes to.
type Store interface {
	InsertDictionaryData(ctx context.Context, index *yomitan.DictionaryIndex, entries []yomitan.TermBankRow, tags []yomitan.TagBankRow) (int64, error)
	CountEntries(ctx context.Context, dictionaryID int64) (int, error)
}

// Result summarizes a committed import.
type Result struct {
	RunID        uuid.UUID     `json:"runId"`
	DictionaryID int64         `json:"dictionaryId"`
	Title        string        `json:"title"`
	Revision     string        `json:"revision"`
	Format       int           `json:"format"`
	Dir          string        `json:"dir"`
	TermFiles    int           `json:"termFiles"`
	TagFiles     int           `json:"tagFiles"`
	Entries      int           `json:"entries"`
	Tags         int           `json:"tags"`
	Duration     time.Duration `json:"duration"`
}

// Option configures an Importer.
type Option func(*Importer)

// WithProgress sets the sink for pipeline updates.
func WithProgress(p Progress) Option {
	return func(im *Importer) {
		if p != nil {
			im.progress = p
		}
	}
}

// Importer runs dictionary imports. It holds no per-import state and is
// safe for concurrent use; the store serializes the writes.
type Importer struct {
	cfg       config.ImportConfig
	store     Store
	extractor *Extractor
	progress  Progress
	log       *slog.Logger
}

// New creates an Importer.
func New(cfg config.ImportConfig, store Store, log *slog.Logger, opts ...Option) *Importer {
	im := &Importer{
		cfg:       cfg,
		store:     store,
		extractor: NewExtractor(cfg.ScratchRoot()),
		progress:  NopProgress{},
		log:       log,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// run tracks one invocation of Import.
type run struct {
	im    *Importer
	log   *slog.Logger
	state State
}

func (r *run) enter(s State) {
	r.log.Debug("import stage", slog.String("from", r.state.String()), slog.String("to", s.String()))
	r.state = s
	r.im.progress.Stage(s)
}

func (r *run) fail(err error) error {
	stage := r.state
	r.enter(StateFailed)
	r.log.Error("import failed",
		slog.String("stage", stage.String()),
		slog.String("error", err.Error()),
	)
	return &ImportError{Stage: stage, Err: err}
}

// Import extracts, parses and stores the dictionary archive at archivePath.
func (im *Importer) Import(ctx context.Context, archivePath string) (*Result, error) {
	start := time.Now()
	runID := uuid.New()
	r := &run{
		im:    im,
		log:   im.log.With(slog.String("run_id", runID.String()), slog.String("archive", archivePath)),
		state: StateIdle,
	}
	r.log.Info("import started")

	r.enter(StateExtracting)
	dir, err := im.extractor.Extract(archivePath, runID.String())
	if err != nil {
		return nil, r.fail(err)
	}
	names, err := listFiles(dir)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateParsingIndex)
	index, err := parseIndex(dir)
	if err != nil {
		return nil, r.fail(err)
	}
	r.log.Info("index parsed",
		slog.String("title", index.Title),
		slog.String("revision", index.Revision),
		slog.Int("format", index.Format()),
	)

	r.enter(StateParsingBanks)
	termFiles := SelectBankFiles(names, TermBank)
	tagFiles := SelectBankFiles(names, TagBank)

	entries, err := parseTermBanks(dir, termFiles, im.cfg.Validate, im.progress)
	if err != nil {
		return nil, r.fail(err)
	}
	tags, err := parseTagBanks(dir, tagFiles, im.progress)
	if err != nil {
		return nil, r.fail(err)
	}
	r.log.Info("banks parsed",
		slog.Int("term_files", len(termFiles)),
		slog.Int("tag_files", len(tagFiles)),
		slog.Int("entries", len(entries)),
		slog.Int("tags", len(tags)),
	)

	r.enter(StateInserting)
	id, err := im.store.InsertDictionaryData(ctx, index, entries, tags)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(StateCommitted)

	result := &Result{
		RunID:        runID,
		DictionaryID: id,
		Title:        index.Title,
		Revision:     index.Revision,
		Format:       index.Format(),
		Dir:          dir,
		TermFiles:    len(termFiles),
		TagFiles:     len(tagFiles),
		Entries:      len(entries),
		Tags:         len(tags),
		Duration:     time.Since(start),
	}

	stored, err := im.store.CountEntries(ctx, id)
	if err != nil {
		r.log.Warn("count stored entries", slog.String("error", err.Error()))
		stored = -1
	}
	r.log.Info("import complete",
		slog.Int64("dictionary_id", id),
		slog.Int("entries", result.Entries),
		slog.Int("stored_entries", stored),
		slog.Int("tags", result.Tags),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}
