package services

import "testing"

func TestValidatePSNo(t *testing.T) {
	valid := []string{"", "1", "142", "142A", "9999", "1234z"}
	invalid := []string{"14 2", "A142", "12345", "142AB", "-1"}

	for _, v := range valid {
		if !ValidatePSNo(v) {
			t.Errorf("ValidatePSNo(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if ValidatePSNo(v) {
			t.Errorf("ValidatePSNo(%q) = true, want false", v)
		}
	}
}

func TestValidateAssemblyNo(t *testing.T) {
	valid := []string{"", "1", "42", "234", " 42 "}
	invalid := []string{"1234", "42A", "4.2", "-5"}

	for _, v := range valid {
		if !ValidateAssemblyNo(v) {
			t.Errorf("ValidateAssemblyNo(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if ValidateAssemblyNo(v) {
			t.Errorf("ValidateAssemblyNo(%q) = true, want false", v)
		}
	}
}

func TestValidateCoordinates(t *testing.T) {
	if !ValidateLatitude("13.0827") {
		t.Error("Chennai latitude should be valid")
	}
	if !ValidateLongitude("80.2707") {
		t.Error("Chennai longitude should be valid")
	}
	if ValidateLatitude("51.5") {
		t.Error("latitude outside India should be invalid")
	}
	if ValidateLongitude("0.12") {
		t.Error("longitude outside India should be invalid")
	}
	if ValidateLatitude("not-a-number") {
		t.Error("non-numeric latitude should be invalid")
	}
	if !ValidateLatitude("") || !ValidateLongitude("") {
		t.Error("blank coordinates are optional and should pass")
	}
}

func TestValidateSerialNumber(t *testing.T) {
	valid := []string{"", "SN-2024-001", "ABCD1234", "HIK/44/2026"}
	invalid := []string{"abc", "serial number with spaces", "x"}

	for _, v := range valid {
		if !ValidateSerialNumber(v) {
			t.Errorf("ValidateSerialNumber(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if ValidateSerialNumber(v) {
			t.Errorf("ValidateSerialNumber(%q) = true, want false", v)
		}
	}
}

func TestSurveyInputValidate(t *testing.T) {
	valid := SurveyInput{
		Location:       "loc123",
		SurveyedBy:     "Surveyor S",
		SignalStrength: 4,
		SiteCondition:  "good",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid survey rejected: %v", err)
	}

	missing := SurveyInput{SignalStrength: 3}
	if err := missing.Validate(); err == nil {
		t.Error("survey without location/surveyed_by should fail")
	}

	outOfRange := valid
	outOfRange.SignalStrength = 9
	if err := outOfRange.Validate(); err == nil {
		t.Error("signal strength above 5 should fail")
	}

	badCondition := valid
	badCondition.SiteCondition = "excellent"
	if err := badCondition.Validate(); err == nil {
		t.Error("unknown site condition should fail")
	}
}

func TestInstallationInputValidate(t *testing.T) {
	valid := InstallationInput{
		ProductName:  "Dome Camera",
		SerialNumber: "SN-001-2026",
		InstalledBy:  "Technician T",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid installation rejected: %v", err)
	}

	badSerial := valid
	badSerial.SerialNumber = "x"
	if err := badSerial.Validate(); err == nil {
		t.Error("too-short serial should fail")
	}

	missing := InstallationInput{ProductName: "Dome Camera"}
	if err := missing.Validate(); err == nil {
		t.Error("installation without serial/installer should fail")
	}
}

func TestLocationInputValidate(t *testing.T) {
	valid := LocationInput{
		AssemblyNo: "42",
		PSNo:       "142A",
		Name:       "Govt High School",
		Latitude:   "13.08",
		Longitude:  "80.27",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid location rejected: %v", err)
	}

	badAssembly := valid
	badAssembly.AssemblyNo = "12345"
	if err := badAssembly.Validate(); err == nil {
		t.Error("4-digit assembly number should fail")
	}

	badLat := valid
	badLat.Latitude = "99"
	if err := badLat.Validate(); err == nil {
		t.Error("out-of-range latitude should fail")
	}
}
