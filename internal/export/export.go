// Package export writes the ledger and its journal to CSV or JSON files.
package export

import (
	"fmt"
	"strings"

	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/store"
)

// Write dispatches on format ("csv" or "json").
func Write(format string, counts map[ledger.Category]int, events []store.LedgerEvent, path string) error {
	switch strings.ToLower(format) {
	case "csv":
		return ToCSV(events, path)
	case "json":
		return ToJSON(counts, events, path)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
