package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// legacyStateLabels maps the display labels the old dashboard wrote directly
// into the state field to the canonical snake_case values.
var legacyStateLabels = map[string]string{
	"Pending":          "pending",
	"Pending Purchase": "pending_purchase",
	"Pending Approval": "pending_approval",
	"Approved":         "approved",
	"Completed":        "completed",
	"Installed":        "completed",
	"Rejected":         "rejected",
}

// MigrateLegacyStateLabels rewrites BOQ state values imported from the old
// dashboard, which stored human-readable labels ("Pending Purchase") rather
// than enum values. Safe to call on every startup.
func MigrateLegacyStateLabels(app *pocketbase.PocketBase) error {
	boqsCol, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		return fmt.Errorf("migrate: could not find boqs collection: %w", err)
	}

	records, err := app.FindAllRecords(boqsCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query boqs: %w", err)
	}

	var rewritten int
	for _, boq := range records {
		state := boq.GetString("state")
		canonical, ok := legacyStateLabels[state]
		if !ok {
			continue
		}

		boq.Set("state", canonical)
		if err := app.Save(boq); err != nil {
			log.Printf("migrate: failed to rewrite state on BOQ %s: %v\n", boq.Id, err)
			continue
		}
		rewritten++
	}

	if rewritten > 0 {
		log.Printf("migrate: rewrote %d legacy BOQ state label(s).\n", rewritten)
	}
	return nil
}
