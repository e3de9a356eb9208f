package services

import (
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validation regex patterns
var (
	psNoPattern     = regexp.MustCompile(`^[0-9]{1,4}[A-Z]?$`)
	assemblyPattern = regexp.MustCompile(`^[0-9]{1,3}$`)
	serialPattern   = regexp.MustCompile(`^[A-Za-z0-9\-/]{4,40}$`)
)

// ValidatePSNo validates a polling-station number (1-4 digits with an
// optional auxiliary suffix letter, e.g. "142" or "142A").
func ValidatePSNo(psNo string) bool {
	psNo = strings.TrimSpace(strings.ToUpper(psNo))
	if psNo == "" {
		return true
	}
	return psNoPattern.MatchString(psNo)
}

// ValidateAssemblyNo validates an assembly constituency number (1-3 digits).
func ValidateAssemblyNo(no string) bool {
	no = strings.TrimSpace(no)
	if no == "" {
		return true
	}
	return assemblyPattern.MatchString(no)
}

// ValidateLatitude checks a latitude string parses and is within India's
// plausible range.
func ValidateLatitude(lat string) bool {
	lat = strings.TrimSpace(lat)
	if lat == "" {
		return true
	}
	f, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return false
	}
	return f >= 6.0 && f <= 38.0
}

// ValidateLongitude checks a longitude string parses and is within India's
// plausible range.
func ValidateLongitude(lon string) bool {
	lon = strings.TrimSpace(lon)
	if lon == "" {
		return true
	}
	f, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return false
	}
	return f >= 68.0 && f <= 98.0
}

// ValidateSerialNumber validates an installed-product serial number.
func ValidateSerialNumber(serial string) bool {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return true
	}
	return serialPattern.MatchString(serial)
}

// SurveyInput is the payload for creating a field survey.
type SurveyInput struct {
	Location       string `json:"location"`
	BusStand       string `json:"bus_stand"`
	SurveyedBy     string `json:"surveyed_by"`
	SurveyDate     string `json:"survey_date"`
	SignalStrength int    `json:"signal_strength"`
	SiteCondition  string `json:"site_condition"`
	PowerAvailable bool   `json:"power_available"`
	Remarks        string `json:"remarks"`
}

// Validate applies field rules to a survey payload. Signal strength is a
// 0-5 level; the legacy dashboard accepted any number here.
func (s SurveyInput) Validate() error {
	conditions := make([]any, len(SiteConditionOptions))
	for i, c := range SiteConditionOptions {
		conditions[i] = c
	}

	return validation.ValidateStruct(&s,
		validation.Field(&s.Location, validation.Required),
		validation.Field(&s.SurveyedBy, validation.Required),
		validation.Field(&s.SignalStrength, validation.Min(0), validation.Max(5)),
		validation.Field(&s.SiteCondition, validation.In(conditions...)),
		validation.Field(&s.Remarks, validation.Length(0, 500)),
	)
}

// InstallationInput is the payload for logging an installed product against
// an approved BOQ line.
type InstallationInput struct {
	ProductName      string `json:"product_name"`
	SerialNumber     string `json:"serial_number"`
	InstallationDate string `json:"installation_date"`
	InstalledBy      string `json:"installed_by"`
	BusStand         string `json:"bus_stand"`
	Remarks          string `json:"remarks"`
}

// Validate applies field rules to an installation payload.
func (in InstallationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.ProductName, validation.Required),
		validation.Field(&in.SerialNumber, validation.Required,
			validation.By(func(v any) error {
				if s, _ := v.(string); !ValidateSerialNumber(s) {
					return validation.NewError("validation_serial", "serial number must be 4-40 characters (letters, digits, - or /)")
				}
				return nil
			})),
		validation.Field(&in.InstalledBy, validation.Required),
		validation.Field(&in.Remarks, validation.Length(0, 500)),
	)
}

// LocationInput is the payload for creating a single location record.
type LocationInput struct {
	AssemblyNo string `json:"assembly_no"`
	PSNo       string `json:"ps_no"`
	Name       string `json:"name"`
	District   string `json:"district"`
	Address    string `json:"address"`
	Latitude   string `json:"latitude"`
	Longitude  string `json:"longitude"`
}

// Validate applies field rules to a location payload.
func (l LocationInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.AssemblyNo, validation.Required,
			validation.By(formatRule(ValidateAssemblyNo, "assembly number must be 1-3 digits"))),
		validation.Field(&l.PSNo, validation.Required,
			validation.By(formatRule(ValidatePSNo, "PS number must be 1-4 digits with optional suffix letter"))),
		validation.Field(&l.Name, validation.Required),
		validation.Field(&l.Latitude, validation.By(formatRule(ValidateLatitude, "latitude out of range"))),
		validation.Field(&l.Longitude, validation.By(formatRule(ValidateLongitude, "longitude out of range"))),
	)
}

// formatRule adapts a bool validator into an ozzo rule.
func formatRule(check func(string) bool, msg string) validation.RuleFunc {
	return func(v any) error {
		if s, _ := v.(string); !check(s) {
			return validation.NewError("validation_format", msg)
		}
		return nil
	}
}
