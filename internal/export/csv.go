package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/imsak/internal/store"
)

// ToCSV writes the ledger journal, one row per event, oldest first as given.
func ToCSV(events []store.LedgerEvent, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Category", "Action", "Delta", "At"}); err != nil {
		return err
	}

	for _, e := range events {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			categoryName(e.Category),
			e.Action,
			strconv.Itoa(e.Delta),
			e.At.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// categoryName labels reset rows, which apply to every category.
func categoryName(c string) string {
	if c == "" {
		return "all"
	}
	return c
}
