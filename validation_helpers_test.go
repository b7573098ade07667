package main

import (
	"errors"
	"testing"
)

func TestValidateFileExtension(t *testing.T) {
	allowed := []string{"json", "deck"}
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"native", "deck.json", false},
		{"package upper case", "Q3.DECK", false},
		{"dotted directory", "out.v2/deck.json", false},
		{"empty", "", true},
		{"no extension", "deck", true},
		{"other", "deck.pptx", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileExtension(tt.file, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFileExtension(%q) = %v", tt.file, err)
			}
			var ve *ValidationError
			if err != nil && !errors.As(err, &ve) {
				t.Errorf("error is %T", err)
			}
		})
	}
}

func TestValidateStringLength(t *testing.T) {
	if err := ValidateStringLength("m", "季度报告", 1, 4); err != nil {
		t.Errorf("runes should be counted, got %v", err)
	}
	if err := ValidateStringLength("m", "abcde", 0, 4); err == nil {
		t.Error("too long accepted")
	}
	if err := ValidateStringLength("m", "", 1, 0); err == nil {
		t.Error("too short accepted")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 10); err == nil {
		t.Error("empty file accepted")
	}
	if err := ValidateFileSize(11, 10); err == nil || err.Error() != "file_size: file size exceeds maximum of 10 B" {
		t.Errorf("oversize = %v", err)
	}
	if err := ValidateFileSize(10, 10); err != nil {
		t.Error(err)
	}
}
