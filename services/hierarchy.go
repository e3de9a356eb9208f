package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
)

// SiteRefs holds the four-level site selection attached to a BOQ or survey.
// BusStand may be empty for station-level installations; every other level
// is mandatory.
type SiteRefs struct {
	Division   string `json:"division"`
	Depot      string `json:"depot"`
	BusStation string `json:"bus_station"`
	BusStand   string `json:"bus_stand"`
}

// ValidateSiteChain verifies that each selected child actually belongs to
// the selected parent: depot under division, station under depot, stand
// under station. The dashboard's cascading selects only disabled mismatched
// options client-side; here a broken chain is rejected outright.
func ValidateSiteChain(app *pocketbase.PocketBase, refs SiteRefs) error {
	if refs.Division == "" {
		return fmt.Errorf("division is required")
	}
	if refs.Depot == "" {
		return fmt.Errorf("depot is required")
	}
	if refs.BusStation == "" {
		return fmt.Errorf("bus station is required")
	}

	if _, err := app.FindRecordById("divisions", refs.Division); err != nil {
		return fmt.Errorf("division %s not found", refs.Division)
	}

	depot, err := app.FindRecordById("depots", refs.Depot)
	if err != nil {
		return fmt.Errorf("depot %s not found", refs.Depot)
	}
	if depot.GetString("division") != refs.Division {
		return fmt.Errorf("depot %s does not belong to division %s", refs.Depot, refs.Division)
	}

	station, err := app.FindRecordById("bus_stations", refs.BusStation)
	if err != nil {
		return fmt.Errorf("bus station %s not found", refs.BusStation)
	}
	if station.GetString("depot") != refs.Depot {
		return fmt.Errorf("bus station %s does not belong to depot %s", refs.BusStation, refs.Depot)
	}

	if refs.BusStand != "" {
		stand, err := app.FindRecordById("bus_stands", refs.BusStand)
		if err != nil {
			return fmt.Errorf("bus stand %s not found", refs.BusStand)
		}
		if stand.GetString("bus_station") != refs.BusStation {
			return fmt.Errorf("bus stand %s does not belong to bus station %s", refs.BusStand, refs.BusStation)
		}
	}

	return nil
}
