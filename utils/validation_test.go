package utils_test

import (
	"testing"
	"time"

	"projectboard/models"
	"projectboard/utils"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "alice", "alice"},
		{"whitespace trimmed", "  alice  ", "alice"},
		{"markup stripped", "<script>alert('x')</script>", "scriptalert(x)/script"},
		{"quotes and backslashes stripped", `a"b\c'd`, "abcd"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.SanitizeInput(tt.input); got != tt.want {
				t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateProjectInput(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -7)
	after := start.AddDate(0, 1, 0)

	valid := models.Project{
		Name:      "Website relaunch",
		Leader:    "Alice Moreno",
		Budget:    15000,
		StartDate: start,
		EndDate:   &after,
	}

	tests := []struct {
		name    string
		mutate  func(p models.Project) models.Project
		wantErr bool
	}{
		{"valid project passes", func(p models.Project) models.Project { return p }, false},
		{"no end date is fine", func(p models.Project) models.Project { p.EndDate = nil; return p }, false},
		{"empty name rejected", func(p models.Project) models.Project { p.Name = ""; return p }, true},
		{"overlong name rejected", func(p models.Project) models.Project { p.Name = string(make([]byte, 256)); return p }, true},
		{"empty leader rejected", func(p models.Project) models.Project { p.Leader = ""; return p }, true},
		{"negative budget rejected", func(p models.Project) models.Project { p.Budget = -1; return p }, true},
		{"zero budget allowed", func(p models.Project) models.Project { p.Budget = 0; return p }, false},
		{"missing start date rejected", func(p models.Project) models.Project { p.StartDate = time.Time{}; return p }, true},
		{"end before start rejected", func(p models.Project) models.Project { p.EndDate = &before; return p }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := utils.ValidateProjectInput(tt.mutate(valid))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
