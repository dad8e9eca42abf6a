package db

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fatbomb/MealManagement/internal/models"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"grpc not found", status.Error(codes.NotFound, "no such document"), true},
		{"grpc unavailable", status.Error(codes.Unavailable, "try again"), false},
		{"plain error", errors.New("boom"), false},
		{"wrapped not found", fmt.Errorf("get: %w", status.Error(codes.NotFound, "missing")), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNotFound(tc.err); got != tc.want {
				t.Errorf("isNotFound() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDutyField(t *testing.T) {
	if got := dutyField(models.DutyKhala); got != "khalaIncharge" {
		t.Errorf("dutyField(khala) = %q", got)
	}
	if got := dutyField(models.DutyFoodSaving); got != "foodSavingIncharge" {
		t.Errorf("dutyField(foodSaving) = %q", got)
	}
}

func TestTotalsFieldsMatchFirestoreTags(t *testing.T) {
	got := totalsFields(3, 4, 1, 2)
	want := map[string]int{"totalLunches": 3, "totalDinners": 4, "totalExtraRiceLunch": 1, "totalExtraRiceDinner": 2}
	if len(got) != len(want) {
		t.Fatalf("totalsFields() has %d keys, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("totalsFields()[%q] = %v, want %d", k, got[k], v)
		}
	}
}
