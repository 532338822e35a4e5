package assignment

import "testing"

func TestAllowedSubmissionExt(t *testing.T) {
	tests := []struct {
		name    string
		wantExt string
		allowed bool
	}{
		{"thesis.pdf", ".pdf", true},
		{"Thesis.PDF", ".pdf", true},
		{"draft.doc", ".doc", true},
		{"draft.docx", ".docx", true},
		{"malware.exe", ".exe", false},
		{"archive.zip", ".zip", false},
		{"noextension", "", false},
		{"trick.pdf.exe", ".exe", false},
	}

	for _, tt := range tests {
		ext, contentType, ok := AllowedSubmissionExt(tt.name)
		if ok != tt.allowed {
			t.Errorf("%s: allowed = %v, want %v", tt.name, ok, tt.allowed)
		}
		if ext != tt.wantExt {
			t.Errorf("%s: ext = %q, want %q", tt.name, ext, tt.wantExt)
		}
		if tt.allowed && contentType == "" {
			t.Errorf("%s: allowed file has no content type", tt.name)
		}
	}
}
