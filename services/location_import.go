package services

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

const importBatchSize = 100

// LocationTemplateFields returns the columns of the location upload
// template.
func LocationTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: "assembly_no", Label: "Assembly No", Required: true},
		{Key: "ps_no", Label: "PS No", Required: true},
		{Key: "name", Label: "Location Name", Required: true},
		{Key: "district", Label: "District", Required: false},
		{Key: "address", Label: "Address", Required: false},
		{Key: "latitude", Label: "Latitude", Required: false},
		{Key: "longitude", Label: "Longitude", Required: false},
	}
}

// LocationKey builds the logical duplicate key for a location:
// "{assembly_no}_{ps_no}".
func LocationKey(assemblyNo, psNo string) string {
	return strings.TrimSpace(assemblyNo) + "_" + strings.TrimSpace(psNo)
}

// SkippedRow records one upload row that was not inserted because its key
// already exists.
type SkippedRow struct {
	Row    int    `json:"row"`
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// ImportDecision is the outcome of the pure dedup/validation pass over
// candidate rows. Every row lands in exactly one of the three buckets.
type ImportDecision struct {
	Accepted []map[string]string `json:"accepted"`
	Skipped  []SkippedRow        `json:"skipped"`
	Errors   []ValidationError   `json:"errors"`
}

// DecideLocationImport runs the dedup and validation pass over parsed rows.
// Rows whose key already exists, or that repeat a key earlier in the same
// file, are skipped; rows with field errors are rejected. The function has
// no side effects, so a decision can be recomputed at commit time to catch
// inserts that happened in between.
func DecideLocationImport(existingKeys map[string]bool, rows []map[string]string) ImportDecision {
	var decision ImportDecision
	seenInFile := make(map[string]bool)

	for rowIdx, rowData := range rows {
		rowNum := rowIdx + 2 // 1-indexed + header row

		rowErrors := validateLocationRow(rowNum, rowData)
		if len(rowErrors) > 0 {
			decision.Errors = append(decision.Errors, rowErrors...)
			continue
		}

		key := LocationKey(rowData["assembly_no"], rowData["ps_no"])
		switch {
		case existingKeys[key]:
			decision.Skipped = append(decision.Skipped, SkippedRow{
				Row:    rowNum,
				Key:    key,
				Reason: "location already exists",
			})
		case seenInFile[key]:
			decision.Skipped = append(decision.Skipped, SkippedRow{
				Row:    rowNum,
				Key:    key,
				Reason: "duplicate row in file",
			})
		default:
			seenInFile[key] = true
			decision.Accepted = append(decision.Accepted, rowData)
		}
	}

	return decision
}

// validateLocationRow checks required fields and formats for one row.
func validateLocationRow(rowNum int, data map[string]string) []ValidationError {
	var errs []ValidationError

	for _, f := range LocationTemplateFields() {
		if f.Required && data[f.Key] == "" {
			errs = append(errs, ValidationError{
				Row:     rowNum,
				Field:   f.Label,
				Message: fmt.Sprintf("%s is required", f.Label),
			})
		}
	}

	if v := data["assembly_no"]; v != "" && !ValidateAssemblyNo(v) {
		errs = append(errs, ValidationError{Row: rowNum, Field: "Assembly No", Message: "Assembly number must be 1-3 digits"})
	}
	if v := data["ps_no"]; v != "" && !ValidatePSNo(v) {
		errs = append(errs, ValidationError{Row: rowNum, Field: "PS No", Message: "PS number must be 1-4 digits with optional suffix letter"})
	}
	if v := data["latitude"]; v != "" && !ValidateLatitude(v) {
		errs = append(errs, ValidationError{Row: rowNum, Field: "Latitude", Message: "Latitude must be a number between 6 and 38"})
	}
	if v := data["longitude"]; v != "" && !ValidateLongitude(v) {
		errs = append(errs, ValidationError{Row: rowNum, Field: "Longitude", Message: "Longitude must be a number between 68 and 98"})
	}

	return errs
}

// LoadExistingLocationKeys builds the set of "{assembly_no}_{ps_no}" keys
// already present in the locations collection.
func LoadExistingLocationKeys(app *pocketbase.PocketBase) (map[string]bool, error) {
	col, err := app.FindCollectionByNameOrId("locations")
	if err != nil {
		return nil, fmt.Errorf("locations collection not found: %w", err)
	}

	records, err := app.FindAllRecords(col)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}

	keys := make(map[string]bool, len(records))
	for _, r := range records {
		keys[LocationKey(r.GetString("assembly_no"), r.GetString("ps_no"))] = true
	}
	return keys, nil
}

// ValidationResult is returned after parsing and deciding an uploaded
// locations file.
type ValidationResult struct {
	TotalRows int            `json:"total_rows"`
	FileName  string         `json:"-"`
	Decision  ImportDecision `json:"decision"`
}

// ValidateLocationFile parses an uploaded CSV/XLSX file and runs the dedup
// decision against the current locations collection.
func ValidateLocationFile(app *pocketbase.PocketBase, file io.Reader, fileName string) (*ValidationResult, error) {
	headers, dataRows, err := ParseUploadFile(file, fileName)
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeadersToFields(headers, LocationTemplateFields())
	rows := rowsToMaps(columnKeys, dataRows)

	existingKeys, err := LoadExistingLocationKeys(app)
	if err != nil {
		return nil, err
	}

	return &ValidationResult{
		TotalRows: len(dataRows),
		FileName:  fileName,
		Decision:  DecideLocationImport(existingKeys, rows),
	}, nil
}

// ImportResult holds the outcome of a commit operation.
type ImportResult struct {
	TotalRows  int               `json:"total_rows"`
	Imported   int               `json:"imported"`
	Skipped    []SkippedRow      `json:"skipped,omitempty"`
	Failed     int               `json:"failed"`
	Errors     []ValidationError `json:"errors,omitempty"`
	RolledBack bool              `json:"rolled_back"`
}

// CommitLocationImport re-runs the dedup decision and batch-inserts the
// accepted rows in chunks of importBatchSize. Within each chunk, any insert
// failure rolls back the entire chunk and processing continues with the
// next chunk.
func CommitLocationImport(app *pocketbase.PocketBase, rows []map[string]string) (*ImportResult, error) {
	existingKeys, err := LoadExistingLocationKeys(app)
	if err != nil {
		return nil, err
	}

	decision := DecideLocationImport(existingKeys, rows)

	result := &ImportResult{
		TotalRows: len(rows),
		Skipped:   decision.Skipped,
		Errors:    decision.Errors,
	}
	if len(decision.Errors) > 0 {
		errorRowSet := make(map[int]bool)
		for _, e := range decision.Errors {
			errorRowSet[e.Row] = true
		}
		result.Failed = len(errorRowSet)
	}

	col, err := app.FindCollectionByNameOrId("locations")
	if err != nil {
		return nil, fmt.Errorf("locations collection not found: %w", err)
	}

	accepted := decision.Accepted
	for chunkStart := 0; chunkStart < len(accepted); chunkStart += importBatchSize {
		chunkEnd := chunkStart + importBatchSize
		if chunkEnd > len(accepted) {
			chunkEnd = len(accepted)
		}
		chunk := accepted[chunkStart:chunkEnd]

		chunkErrors := insertLocationChunk(app, col, chunk, chunkStart)
		if len(chunkErrors) > 0 {
			result.Errors = append(result.Errors, chunkErrors...)
			result.Failed += len(chunk)
			result.RolledBack = true
		} else {
			result.Imported += len(chunk)
		}
	}

	return result, nil
}

// insertLocationChunk inserts a batch of rows within a RunInTransaction
// block. If any row fails, the chunk is rolled back and errors returned.
func insertLocationChunk(app *pocketbase.PocketBase, col *core.Collection, rows []map[string]string, startOffset int) []ValidationError {
	var chunkErrors []ValidationError

	err := app.RunInTransaction(func(txApp core.App) error {
		for i, rowData := range rows {
			rowNum := startOffset + i + 2

			record := core.NewRecord(col)
			for _, f := range LocationTemplateFields() {
				if val, ok := rowData[f.Key]; ok && val != "" {
					record.Set(f.Key, val)
				}
			}

			if err := txApp.Save(record); err != nil {
				chunkErrors = append(chunkErrors, ValidationError{
					Row:     rowNum,
					Message: fmt.Sprintf("Failed to save: %s", err.Error()),
				})
				return fmt.Errorf("save failed at row %d: %w", rowNum, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Printf("location_import: chunk insert rolled back: %v", err)
		if len(chunkErrors) == 0 {
			chunkErrors = append(chunkErrors, ValidationError{
				Row:     startOffset + 2,
				Message: fmt.Sprintf("Transaction failed: %s", err.Error()),
			})
		}
	}

	return chunkErrors
}
