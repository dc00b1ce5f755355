package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/imsak/internal/ledger"
	"github.com/sadopc/imsak/internal/store"
)

type jsonExport struct {
	ExportedAt string         `json:"exported_at"`
	Total      int            `json:"total"`
	Counts     map[string]int `json:"counts"`
	EventCount int            `json:"event_count"`
	Events     []jsonEvent    `json:"events"`
}

type jsonEvent struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Delta    int    `json:"delta"`
	At       string `json:"at"`
}

// ToJSON writes the current outstanding counts together with the journal.
func ToJSON(counts map[ledger.Category]int, events []store.LedgerEvent, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Counts:     make(map[string]int, len(counts)),
		EventCount: len(events),
	}

	for _, c := range ledger.Categories() {
		n := counts[c]
		export.Counts[string(c)] = n
		export.Total += n
	}

	for _, e := range events {
		export.Events = append(export.Events, jsonEvent{
			ID:       e.ID,
			Category: categoryName(e.Category),
			Action:   e.Action,
			Delta:    e.Delta,
			At:       e.At.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
