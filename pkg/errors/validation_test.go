package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "A", false},
		{"valid with dash", "left-arm", false},
		{"valid with underscore", "pivot_1", false},

		{"empty", "", true},
		{"too long", "a" + strings.Repeat("b", 64), true},
		{"leading digit", "1a", true},
		{"space", "a b", true},
		{"dot", "a.b", true},
		{"quote", `a"b`, true},
		{"control char", "a\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	supported := []string{"svg", "png", "json"}
	if err := ValidateFormat("png", supported); err != nil {
		t.Errorf("ValidateFormat(png) = %v", err)
	}
	err := ValidateFormat("gif", supported)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Fatalf("ValidateFormat(gif) = %v, want INVALID_FORMAT", err)
	}
	if !strings.Contains(err.Error(), "svg, png, json") {
		t.Errorf("message %q should list supported formats", err.Error())
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "out/sketch.svg", false},
		{"valid absolute", "/tmp/sketch.svg", false},
		{"valid dotted name", "sketch..final.svg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"traversal", "../secret.svg", true},
		{"nested traversal", "out/../../x", true},
		{"windows traversal", "out\\..\\x", true},
		{"null byte", "out\x00.svg", true},
		{"newline", "out\n.svg", true},
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

func TestValidateRedisURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"redis://localhost:6379/0", false},
		{"rediss://cache.example.com:6380", false},
		{"", true},
		{"http://localhost:6379", true},
		{"localhost:6379", true},
	}

	for _, tt := range tests {
		if err := ValidateRedisURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateRedisURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
