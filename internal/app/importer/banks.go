package importer

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// BankKind identifies a family of bank files inside an archive.
type BankKind int

const (
	TermBank BankKind = iota
	TagBank
)

func (k BankKind) prefix() string {
	if k == TagBank {
		return "tag_bank_"
	}
	return "term_bank_"
}

func (k BankKind) String() string {
	if k == TagBank {
		return "tag bank"
	}
	return "term bank"
}

// SelectBankFiles returns the names matching <prefix>*.json for kind.
// Files with a numeric suffix come first in numeric order, so term_bank_2
// precedes term_bank_10; the rest follow in lexicographic order.
func SelectBankFiles(names []string, kind BankKind) []string {
	prefix := kind.prefix()

	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".json") {
			out = append(out, name)
		}
	}

	slices.SortFunc(out, func(a, b string) int {
		na, okA := bankNumber(a, prefix)
		nb, okB := bankNumber(b, prefix)
		switch {
		case okA && okB:
			if c := cmp.Compare(na, nb); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}
		return strings.Compare(a, b)
	})
	return out
}

func bankNumber(name, prefix string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
