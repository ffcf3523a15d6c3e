package rflink

import (
	"errors"
	"testing"
)

func TestDecodeMode(t *testing.T) {
	tests := []struct {
		payload string
		want    PublishMode
	}{
		{"JSON", ModeJSON},
		{"2", ModeJSON},
		{"RAW", ModeRaw},
		{"3", ModeRaw},
		{"STANDARD", ModeStandard},
		{"1", ModeStandard},
		{"", ModeStandard},
		{"json", ModeStandard},
		{" RAW", ModeStandard},
		{"4", ModeStandard},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			if got := DecodeMode(tt.payload); got != tt.want {
				t.Errorf("DecodeMode(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestPublishMode_StringAndCode(t *testing.T) {
	tests := []struct {
		mode     PublishMode
		wantName string
		wantCode string
	}{
		{ModeStandard, "STANDARD", "1"},
		{ModeJSON, "JSON", "2"},
		{ModeRaw, "RAW", "3"},
		{PublishMode(9), "PublishMode(9)", "9"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.wantName {
			t.Errorf("String() = %q, want %q", got, tt.wantName)
		}
		if got := tt.mode.Code(); got != tt.wantCode {
			t.Errorf("Code() = %q, want %q", got, tt.wantCode)
		}
	}
}

func TestParseModeCode(t *testing.T) {
	for _, code := range []string{"1", "2", "3"} {
		m, err := ParseModeCode(code)
		if err != nil {
			t.Errorf("ParseModeCode(%q) error = %v", code, err)
		}
		if m.Code() != code {
			t.Errorf("ParseModeCode(%q) = %v", code, m)
		}
	}

	for _, code := range []string{"", "0", "4", "JSON", "-1"} {
		if _, err := ParseModeCode(code); !errors.Is(err, ErrInvalidMode) {
			t.Errorf("ParseModeCode(%q) error = %v, want ErrInvalidMode", code, err)
		}
	}
}
