package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// boqCreateRequest is the submission payload built by the BOQ form: the
// four-level site selection plus one selection list per product group.
type boqCreateRequest struct {
	services.SiteRefs

	RaisedBy   string                             `json:"raised_by"`
	Remarks    string                             `json:"remarks"`
	Selections map[string][]services.SelectionRow `json:"selections"`
}

// HandleBOQCreate validates a BOQ submission and creates the BOQ with its
// line items in one transaction.
// Route: POST /api/boqs
func HandleBOQCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req boqCreateRequest
		if err := e.BindBody(&req); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}

		fieldErrors := make(map[string]string)

		if strings.TrimSpace(req.RaisedBy) == "" {
			fieldErrors["raised_by"] = "raised_by is required"
		}

		// Normalize and validate every selection group before touching
		// the database.
		type resolvedItem struct {
			services.SelectionItem
			Group string
		}
		var items []resolvedItem

		for group, rows := range req.Selections {
			if !services.IsProductGroup(group) {
				fieldErrors[group] = "unknown product group"
				continue
			}
			normalized, errs := services.NormalizeSelection(group, rows)
			if len(errs) > 0 {
				fieldErrors[group] = errs[0].Message
				continue
			}
			for _, item := range normalized {
				items = append(items, resolvedItem{SelectionItem: item, Group: group})
			}
		}

		if len(fieldErrors) > 0 {
			return APIError(e, http.StatusBadRequest, "validation", "BOQ submission has invalid fields", fieldErrors)
		}

		if len(items) == 0 {
			return APIError(e, http.StatusBadRequest, "empty_selection", "BOQ must contain at least one selection row", nil)
		}

		if err := services.ValidateSiteChain(app, req.SiteRefs); err != nil {
			return APIError(e, http.StatusBadRequest, "invalid_site", err.Error(), nil)
		}

		// Resolve product references and verify each belongs to the group
		// it was submitted under.
		products := make([]*core.Record, len(items))
		for i, item := range items {
			product, err := app.FindRecordById("products", item.Product)
			if err != nil {
				return APIError(e, http.StatusBadRequest, "unknown_product",
					"Product "+item.Product+" not found", map[string]string{item.Group: "unknown product reference"})
			}
			if product.GetString("group") != item.Group {
				return APIError(e, http.StatusBadRequest, "group_mismatch",
					"Product "+product.GetString("name")+" is not a "+item.Group, map[string]string{item.Group: "product belongs to a different group"})
			}
			products[i] = product
		}

		boqsCol, err := app.FindCollectionByNameOrId("boqs")
		if err != nil {
			log.Printf("boq_create: could not find boqs collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}
		itemsCol, err := app.FindCollectionByNameOrId("boq_items")
		if err != nil {
			log.Printf("boq_create: could not find boq_items collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		boqRecord := core.NewRecord(boqsCol)
		err = app.RunInTransaction(func(txApp core.App) error {
			boqRecord.Set("division", req.Division)
			boqRecord.Set("depot", req.Depot)
			boqRecord.Set("bus_station", req.BusStation)
			if req.BusStand != "" {
				boqRecord.Set("bus_stand", req.BusStand)
			}
			boqRecord.Set("state", services.StatePending)
			boqRecord.Set("raised_by", strings.TrimSpace(req.RaisedBy))
			boqRecord.Set("remarks", strings.TrimSpace(req.Remarks))

			if err := txApp.Save(boqRecord); err != nil {
				return err
			}

			for i, item := range items {
				itemRecord := core.NewRecord(itemsCol)
				itemRecord.Set("boq", boqRecord.Id)
				itemRecord.Set("product", products[i].Id)
				itemRecord.Set("product_name", products[i].GetString("name"))
				itemRecord.Set("product_group", item.Group)
				itemRecord.Set("qty", item.Count)
				// Stays zero until the lifecycle freezes it; pending BOQs
				// price against the live catalog.
				itemRecord.Set("unit_price", 0)
				itemRecord.Set("sort_order", i+1)

				if err := txApp.Save(itemRecord); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("boq_create: could not save BOQ: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return Created(e, map[string]any{
			"id":         boqRecord.Id,
			"state":      services.StatePending,
			"item_count": len(items),
		})
	}
}
