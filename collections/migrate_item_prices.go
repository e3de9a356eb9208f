package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
)

// MigrateFrozenItemPrices backfills unit_price on items of BOQs that have
// already left the live-priced states. Earlier data relied on whichever
// code path last wrote the item price, so approved BOQs could be left with
// zero-priced items whose totals silently drifted with the catalog. Safe to
// call on every startup -- returns early if nothing to repair.
func MigrateFrozenItemPrices(app *pocketbase.PocketBase) error {
	boqsCol, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		return fmt.Errorf("migrate: could not find boqs collection: %w", err)
	}

	frozenBOQs, err := app.FindRecordsByFilter(
		boqsCol,
		"state != 'pending' && state != 'pending_purchase' && state != 'rejected'",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query frozen BOQs: %w", err)
	}

	var repaired int
	for _, boq := range frozenBOQs {
		items, err := app.FindRecordsByFilter(
			"boq_items",
			"boq = {:boqId} && unit_price = 0",
			"", 0, 0,
			map[string]any{"boqId": boq.Id},
		)
		if err != nil {
			log.Printf("migrate: could not query items for BOQ %s: %v\n", boq.Id, err)
			continue
		}
		if len(items) == 0 {
			continue
		}

		for _, item := range items {
			productID := item.GetString("product")
			if productID == "" {
				continue
			}
			product, err := app.FindRecordById("products", productID)
			if err != nil {
				log.Printf("migrate: product %s missing for item %s, skipping\n", productID, item.Id)
				continue
			}

			item.Set("unit_price", product.GetFloat("price"))
			if err := app.Save(item); err != nil {
				log.Printf("migrate: failed to backfill item %s: %v\n", item.Id, err)
				continue
			}
			repaired++
		}
	}

	if repaired > 0 {
		log.Printf("migrate: backfilled unit_price on %d item(s) of non-pending BOQs.\n", repaired)
	}
	return nil
}
