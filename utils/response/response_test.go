package response

import (
	"strings"
	"testing"
)

func TestCalculatePagination(t *testing.T) {
	tests := []struct {
		page, limit    int
		total          int64
		wantPage       int
		wantPerPage    int
		wantTotalPages int
	}{
		{1, 20, 45, 1, 20, 3},
		{0, 0, 45, 1, 20, 3},
		{2, 10, 100, 2, 10, 10},
		{1, 500, 100, 1, 100, 1},
		{3, 10, 0, 3, 10, 0},
	}

	for _, tt := range tests {
		meta := CalculatePagination(tt.page, tt.limit, tt.total)
		if meta.CurrentPage != tt.wantPage {
			t.Errorf("page(%d,%d,%d): CurrentPage = %d, want %d", tt.page, tt.limit, tt.total, meta.CurrentPage, tt.wantPage)
		}
		if meta.PerPage != tt.wantPerPage {
			t.Errorf("page(%d,%d,%d): PerPage = %d, want %d", tt.page, tt.limit, tt.total, meta.PerPage, tt.wantPerPage)
		}
		if meta.TotalPages != tt.wantTotalPages {
			t.Errorf("page(%d,%d,%d): TotalPages = %d, want %d", tt.page, tt.limit, tt.total, meta.TotalPages, tt.wantTotalPages)
		}
	}
}

func TestInsufficientPermissionsMessage(t *testing.T) {
	// The message names both the caller's role and the accepted set so a
	// client can explain the denial.
	msg := "Insufficient permissions: role STUDENT is not allowed, requires one of SUPERVISOR, ADMIN"
	got := insufficientPermissionsMessage("STUDENT", []string{"SUPERVISOR", "ADMIN"})
	if got != msg {
		t.Errorf("got %q, want %q", got, msg)
	}
	if !strings.Contains(got, "STUDENT") {
		t.Error("message does not name the caller's role")
	}
}
