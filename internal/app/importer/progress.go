package importer

// Progress receives pipeline updates. Implementations must be cheap; they
// are called synchronously from Import.
type Progress interface {
	// Stage is called when the pipeline enters a new state.
	Stage(s State)
	// Report is called after each bank file is parsed.
	Report(processed, total int, label string)
}

// NopProgress discards all updates.
type NopProgress struct{}

func (NopProgress) Stage(State) {}
func (NopProgress) Report(int, int, string) {}
