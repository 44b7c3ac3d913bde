package errors

import "testing"

func TestValidateDPI(t *testing.T) {
	tests := []struct {
		dpi     int
		wantErr bool
	}{
		{72, false},
		{300, false},
		{1200, false},
		{71, true},
		{1201, true},
		{0, true},
		{-300, true},
	}

	for _, tt := range tests {
		err := ValidateDPI(tt.dpi)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDPI(%d) error = %v, wantErr %v", tt.dpi, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeValidation) {
			t.Errorf("ValidateDPI(%d) code = %v, want %v", tt.dpi, GetCode(err), ErrCodeValidation)
		}
	}
}

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "A4", false},
		{"with dash", "US-2x2", false},
		{"empty", "", true},
		{"space", "US 2x2", true},
		{"control char", "A\x014", true},
		{"too long", string(make([]byte, 65)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	if err := ValidatePositive("width_mm", 35); err != nil {
		t.Errorf("positive value rejected: %v", err)
	}
	if err := ValidatePositive("width_mm", 0); err == nil {
		t.Error("zero should be rejected")
	}
	if err := ValidateNonNegative("margin_mm", 0); err != nil {
		t.Errorf("zero margin rejected: %v", err)
	}
	if err := ValidateNonNegative("margin_mm", -1); err == nil {
		t.Error("negative margin should be rejected")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "out/sheet.png", false},
		{"absolute file", "/tmp/sheet.pdf", false},
		{"empty", "", true},
		{"null byte", "sheet\x00.png", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
