package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/youyoumu/hanayomi/internal/domain"
	"github.com/youyoumu/hanayomi/internal/yomitan"
)

const indexFile = "index.json"

func readArchiveFile(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIO, name, err)
	}
	return data, nil
}

// parseIndex reads index.json, decodes it and validates its constraints.
func parseIndex(dir string) (*yomitan.DictionaryIndex, error) {
	data, err := readArchiveFile(dir, indexFile)
	if err != nil {
		return nil, err
	}

	idx, err := yomitan.ParseIndex(data)
	if err != nil {
		return nil, domain.InFile(err, indexFile, 0)
	}
	if err := idx.Validate(); err != nil {
		return nil, domain.InFile(err, indexFile, 0)
	}
	return idx, nil
}

// parseTermBanks decodes the term bank files in order and concatenates their
// rows. The first malformed file aborts the whole import.
func parseTermBanks(dir string, files []string, validate bool, progress Progress) ([]yomitan.TermBankRow, error) {
	var entries []yomitan.TermBankRow
	for i, name := range files {
		data, err := readArchiveFile(dir, name)
		if err != nil {
			return nil, err
		}

		rows, err := yomitan.ParseTermBank(data)
		if err != nil {
			return nil, domain.InFile(err, name, 0)
		}
		if validate {
			for j := range rows {
				if err := rows[j].Validate(); err != nil {
					return nil, domain.InFile(err, name, j+1)
				}
			}
		}

		entries = append(entries, rows...)
		progress.Report(i+1, len(files), name)
	}
	return entries, nil
}

// parseTagBanks decodes the tag bank files in order and concatenates their rows.
func parseTagBanks(dir string, files []string, progress Progress) ([]yomitan.TagBankRow, error) {
	var tags []yomitan.TagBankRow
	for i, name := range files {
		data, err := readArchiveFile(dir, name)
		if err != nil {
			return nil, err
		}

		rows, err := yomitan.ParseTagBank(data)
		if err != nil {
			return nil, domain.InFile(err, name, 0)
		}

		tags = append(tags, rows...)
		progress.Report(i+1, len(files), name)
	}
	return tags, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrIO, dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
