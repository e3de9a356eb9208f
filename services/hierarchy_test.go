package services

import (
	"testing"

	"cctvrollout/testhelpers"
)

func TestValidateSiteChain(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Chain")
	other := testhelpers.CreateTestSite(t, app, "Other")

	valid := SiteRefs{
		Division:   site.Division.Id,
		Depot:      site.Depot.Id,
		BusStation: site.Station.Id,
		BusStand:   site.Stand.Id,
	}
	if err := ValidateSiteChain(app, valid); err != nil {
		t.Errorf("valid chain rejected: %v", err)
	}

	noStand := valid
	noStand.BusStand = ""
	if err := ValidateSiteChain(app, noStand); err != nil {
		t.Errorf("chain without stand rejected: %v", err)
	}

	tests := []struct {
		name string
		refs SiteRefs
	}{
		{"missing division", SiteRefs{Depot: site.Depot.Id, BusStation: site.Station.Id}},
		{"missing depot", SiteRefs{Division: site.Division.Id, BusStation: site.Station.Id}},
		{"unknown division", SiteRefs{Division: "nope", Depot: site.Depot.Id, BusStation: site.Station.Id}},
		{"depot from other division", SiteRefs{
			Division: site.Division.Id, Depot: other.Depot.Id, BusStation: site.Station.Id,
		}},
		{"station from other depot", SiteRefs{
			Division: site.Division.Id, Depot: site.Depot.Id, BusStation: other.Station.Id,
		}},
		{"stand from other station", SiteRefs{
			Division: site.Division.Id, Depot: site.Depot.Id,
			BusStation: site.Station.Id, BusStand: other.Stand.Id,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSiteChain(app, tt.refs); err == nil {
				t.Errorf("broken chain accepted: %+v", tt.refs)
			}
		})
	}
}
