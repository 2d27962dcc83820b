package importer

import (
	"context"
	"sync"

	"github.com/youyoumu/hanayomi/internal/yomitan"
)

var _ Store = &StoreMock{}

type StoreMock struct {
	CountEntriesFunc         func(ctx context.Context, dictionaryID int64) (int, error)
	InsertDictionaryDataFunc func(ctx context.Context, index *yomitan.DictionaryIndex, entries []yomitan.TermBankRow, tags []yomitan.TagBankRow) (int64, error)

	calls struct {
		CountEntries []struct {
			Ctx          context.Context
			DictionaryID int64
		}
		InsertDictionaryData []struct {
			Ctx     context.Context
			Index   *yomitan.DictionaryIndex
			Entries []yomitan.TermBankRow
			Tags    []yomitan.TagBankRow
		}
	}
	lockCountEntries         sync.RWMutex
	lockInsertDictionaryData sync.RWMutex
}

func (mock *StoreMock) CountEntries(ctx context.Context, dictionaryID int64) (int, error) {
	if mock.CountEntriesFunc == nil {
		panic("StoreMock.CountEntriesFunc: method is nil but Store.CountEntries was just called")
	}
	callInfo := struct {
		Ctx          context.Context
		DictionaryID int64
	}{Ctx: ctx, DictionaryID: dictionaryID}
	mock.lockCountEntries.Lock()
	mock.calls.CountEntries = append(mock.calls.CountEntries, callInfo)
	mock.lockCountEntries.Unlock()
	return mock.CountEntriesFunc(ctx, dictionaryID)
}

func (mock *StoreMock) CountEntriesCalls() []struct {
	Ctx          context.Context
	DictionaryID int64
} {
	mock.lockCountEntries.RLock()
	calls := mock.calls.CountEntries
	mock.lockCountEntries.RUnlock()
	return calls
}

func (mock *StoreMock) InsertDictionaryData(ctx context.Context, index *yomitan.DictionaryIndex, entries []yomitan.TermBankRow, tags []yomitan.TagBankRow) (int64, error) {
	if mock.InsertDictionaryDataFunc == nil {
		panic("StoreMock.InsertDictionaryDataFunc: method is nil but Store.InsertDictionaryData was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Index   *yomitan.DictionaryIndex
		Entries []yomitan.TermBankRow
		Tags    []yomitan.TagBankRow
	}{Ctx: ctx, Index: index, Entries: entries, Tags: tags}
	mock.lockInsertDictionaryData.Lock()
	mock.calls.InsertDictionaryData = append(mock.calls.InsertDictionaryData, callInfo)
	mock.lockInsertDictionaryData.Unlock()
	return mock.InsertDictionaryDataFunc(ctx, index, entries, tags)
}

func (mock *StoreMock) InsertDictionaryDataCalls() []struct {
	Ctx     context.Context
	Index   *yomitan.DictionaryIndex
	Entries []yomitan.TermBankRow
	Tags    []yomitan.TagBankRow
} {
	mock.lockInsertDictionaryData.RLock()
	calls := mock.calls.InsertDictionaryData
	mock.lockInsertDictionaryData.RUnlock()
	return calls
}
