package services

// ProductGroups is the ordered list of catalog categories a BOQ can draw
// from. One BOQ holds at most one selection list per group.
var ProductGroups = []string{
	"nvr",
	"camera",
	"switch",
	"rack",
	"pole",
	"weatherproof_box",
	"cable",
	"conduit",
	"wire",
	"ups",
	"lcd",
}

// IsProductGroup reports whether g is a known catalog group.
func IsProductGroup(g string) bool {
	for _, pg := range ProductGroups {
		if pg == g {
			return true
		}
	}
	return false
}

// SiteConditionOptions are the survey site-condition choices.
var SiteConditionOptions = []string{
	"good",
	"needs_repair",
	"no_structure",
}

// InstalledProductStates are the states an installed unit can be in.
var InstalledProductStates = []string{
	"installed",
	"faulty",
	"replaced",
}
