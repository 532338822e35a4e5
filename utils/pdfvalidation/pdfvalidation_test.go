package pdfvalidation

import "testing"

func TestValidatePDFBytesRejectsNonPDF(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("this is a plain text file"))
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("plain text accepted as PDF")
	}
	if result.Error == "" {
		t.Error("expected a validation error message")
	}
}

func TestValidatePDFBytesRejectsTruncatedPDF(t *testing.T) {
	// A bare header with no xref table is not a readable document.
	result, err := ValidatePDFBytes([]byte("%PDF-1.7\n"))
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("truncated PDF accepted")
	}
}

func TestValidatePDFBytesRejectsEmpty(t *testing.T) {
	result, err := ValidatePDFBytes(nil)
	if err != nil {
		t.Fatalf("ValidatePDFBytes returned error: %v", err)
	}
	if result.Valid {
		t.Error("empty content accepted")
	}
}
