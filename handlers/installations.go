package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// InstallationView is one installed-product row.
type InstallationView struct {
	ID               string `json:"id"`
	ProductName      string `json:"product_name"`
	SerialNumber     string `json:"serial_number"`
	InstalledBy      string `json:"installed_by"`
	InstallationDate string `json:"installation_date,omitempty"`
	State            string `json:"state"`
	Remarks          string `json:"remarks,omitempty"`
}

// HandleInstallationCreate logs an installed product against a BOQ. The
// quota check runs inside the insert transaction so concurrent submissions
// cannot push a line over its requested quantity.
// Route: POST /api/boqs/{id}/installations
func HandleInstallationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		state := boq.GetString("state")
		if state != services.StateApproved && state != services.StateCompleted {
			return APIError(e, http.StatusConflict, "not_installable",
				"Installations can only be logged against approved BOQs", nil)
		}

		var input services.InstallationInput
		if err := e.BindBody(&input); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if err := input.Validate(); err != nil {
			return APIError(e, http.StatusBadRequest, "validation", "Installation has invalid fields", validationFields(err))
		}

		col, err := app.FindCollectionByNameOrId("installed_products")
		if err != nil {
			log.Printf("installations: could not find installed_products collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		record := core.NewRecord(col)
		err = app.RunInTransaction(func(txApp core.App) error {
			// The BOQ must carry a line for this product name.
			items, err := txApp.FindRecordsByFilter("boq_items",
				"boq = {:boqId} && product_name = {:name}", "", 1, 0,
				map[string]any{"boqId": boq.Id, "name": input.ProductName})
			if err != nil {
				return fmt.Errorf("load item: %w", err)
			}
			if len(items) == 0 {
				return &quotaError{code: "unknown_item",
					message: "BOQ has no line for product " + input.ProductName}
			}
			qty := items[0].GetFloat("qty")

			existing, err := txApp.FindRecordsByFilter("installed_products",
				"boq = {:boqId} && product_name = {:name}", "", 0, 0,
				map[string]any{"boqId": boq.Id, "name": input.ProductName})
			if err != nil {
				return fmt.Errorf("load installations: %w", err)
			}

			serial := strings.TrimSpace(input.SerialNumber)
			for _, rec := range existing {
				if rec.GetString("serial_number") == serial {
					return &quotaError{code: "duplicate_serial",
						message: "Serial " + serial + " is already logged on this BOQ"}
				}
			}

			if services.FullyInstalled(len(existing), qty) {
				return &quotaError{code: "quota_exceeded",
					message: fmt.Sprintf("All %s units of %s are already installed", formatQtyMsg(qty), input.ProductName)}
			}

			record.Set("boq", boq.Id)
			record.Set("product_name", input.ProductName)
			record.Set("serial_number", serial)
			record.Set("installed_by", strings.TrimSpace(input.InstalledBy))
			record.Set("installation_date", input.InstallationDate)
			if input.BusStand != "" {
				record.Set("bus_stand", input.BusStand)
			}
			record.Set("remarks", strings.TrimSpace(input.Remarks))
			record.Set("state", "installed")

			return txApp.Save(record)
		})
		if err != nil {
			if qErr, ok := err.(*quotaError); ok {
				return APIError(e, http.StatusConflict, qErr.code, qErr.message, nil)
			}
			log.Printf("installations: could not save installation for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return Created(e, installationView(record))
	}
}

// HandleInstallationList returns the installed units of a BOQ together with
// the per-line reconciliation summary.
// Route: GET /api/boqs/{id}/installations
func HandleInstallationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		installed, err := app.FindRecordsByFilter("installed_products", "boq = {:boqId}", "-created", 0, 0,
			map[string]any{"boqId": boq.Id})
		if err != nil {
			log.Printf("installations: could not load installations for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		items, err := app.FindRecordsByFilter("boq_items", "boq = {:boqId}", "sort_order", 0, 0,
			map[string]any{"boqId": boq.Id})
		if err != nil {
			log.Printf("installations: could not load items for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		views := make([]InstallationView, 0, len(installed))
		installedRows := make([]services.InstalledRow, 0, len(installed))
		for _, rec := range installed {
			views = append(views, installationView(rec))
			installedRows = append(installedRows, services.InstalledRow{
				ProductName: rec.GetString("product_name"),
				State:       rec.GetString("state"),
			})
		}

		forRecon := make([]services.ItemForRecon, 0, len(items))
		for _, item := range items {
			forRecon = append(forRecon, services.ItemForRecon{
				ProductName:  item.GetString("product_name"),
				ProductGroup: item.GetString("product_group"),
				Qty:          item.GetFloat("qty"),
			})
		}

		return OKData(e, map[string]any{
			"installations":  views,
			"reconciliation": services.Reconcile(forRecon, services.CountInstalled(installedRows)),
		})
	}
}

// HandleInstallationStateUpdate marks an installed unit faulty or replaced.
// Route: PATCH /api/installations/{id}/state
func HandleInstallationStateUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("installed_products", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "Installation not found", nil)
		}

		var body struct {
			State   string `json:"state"`
			Remarks string `json:"remarks"`
		}
		if err := e.BindBody(&body); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}

		valid := false
		for _, s := range services.InstalledProductStates {
			if s == body.State {
				valid = true
			}
		}
		if !valid {
			return APIError(e, http.StatusBadRequest, "invalid_state", "Unknown installation state: "+body.State, nil)
		}

		record.Set("state", body.State)
		if body.Remarks != "" {
			record.Set("remarks", strings.TrimSpace(body.Remarks))
		}
		if err := app.Save(record); err != nil {
			log.Printf("installations: could not update installation %s: %v", record.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return OKData(e, installationView(record))
	}
}

func installationView(rec *core.Record) InstallationView {
	return InstallationView{
		ID:               rec.Id,
		ProductName:      rec.GetString("product_name"),
		SerialNumber:     rec.GetString("serial_number"),
		InstalledBy:      rec.GetString("installed_by"),
		InstallationDate: rec.GetString("installation_date"),
		State:            rec.GetString("state"),
		Remarks:          rec.GetString("remarks"),
	}
}

// quotaError signals a business-rule rejection inside the insert transaction
// so the handler can map it to 409 instead of 500.
type quotaError struct {
	code    string
	message string
}

func (e *quotaError) Error() string { return e.message }

func formatQtyMsg(qty float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", qty), "0"), ".")
}

// validationFields flattens an ozzo validation error into the field map of
// the error envelope.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	if errs, ok := err.(validation.Errors); ok {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["_"] = err.Error()
	}
	return fields
}
