package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/models"
)

func TestReconcileMonthFindsAndRepairsDrift(t *testing.T) {
	f := newFixture(time.Date(2024, time.March, 1, 7, 0, 0, 0, dhaka))
	ctx := context.Background()
	f.store.addUser("u1", "u1", false)
	f.store.addUser("u2", "u2", false)

	submit := func(userID, date string, state models.MealState) {
		t.Helper()
		if _, err := f.meals.SubmitMeal(ctx, manager("m"), userID, date, state); err != nil {
			t.Fatalf("submit %s %s: %v", userID, date, err)
		}
	}
	submit("u1", "2024-03-02", models.MealState{LunchAvailable: true, DinnerAvailable: true})
	submit("u2", "2024-03-02", models.MealState{DinnerAvailable: true, ExtraRiceDinner: 1})
	submit("u2", "2024-03-03", models.MealState{LunchAvailable: true})

	report, err := f.recon.ReconcileMonth(ctx, "2024-03", false)
	if err != nil {
		t.Fatalf("ReconcileMonth() error: %v", err)
	}
	if report.Records != 3 || len(report.Drifts) != 0 {
		t.Fatalf("clean report = %+v", report)
	}

	f.store.daily["2024-03-02"] = models.MealTotals{TotalLunches: 5}
	f.store.daily["2024-03-20"] = models.MealTotals{TotalDinners: 2}
	delete(f.store.monthly, key("u2", "2024-03"))

	report, err = f.recon.ReconcileMonth(ctx, "2024-03", false)
	if err != nil {
		t.Fatalf("ReconcileMonth() error: %v", err)
	}
	if len(report.Drifts) != 3 || report.Repaired {
		t.Fatalf("drift report = %+v, want 3 unrepaired drifts", report)
	}
	if report.Drifts[0].Scope != DriftDaily || report.Drifts[0].Key != "2024-03-02" {
		t.Fatalf("first drift = %+v", report.Drifts[0])
	}
	if f.store.daily["2024-03-02"].TotalLunches != 5 {
		t.Fatal("report-only run modified aggregates")
	}

	report, err = f.recon.ReconcileMonth(ctx, "2024-03", true)
	if err != nil {
		t.Fatalf("ReconcileMonth(repair) error: %v", err)
	}
	if !report.Repaired {
		t.Fatalf("repair report = %+v", report)
	}
	assertAggregatesConsistent(t, f.store)
	if !f.store.daily["2024-03-20"].IsZero() {
		t.Fatalf("orphan aggregate = %+v, want zero", f.store.daily["2024-03-20"])
	}

	report, _ = f.recon.ReconcileMonth(ctx, "2024-03", false)
	if len(report.Drifts) != 0 {
		t.Fatalf("drifts after repair: %+v", report.Drifts)
	}
}

func TestReconcileRepairKeepsSubmitDuringScan(t *testing.T) {
	f := newFixture(time.Date(2024, time.March, 1, 7, 0, 0, 0, dhaka))
	ctx := context.Background()
	f.store.addUser("u1", "u1", false)

	if _, err := f.meals.SubmitMeal(ctx, resident("u1"), "u1", "2024-03-02", models.MealState{LunchAvailable: true}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.store.daily["2024-03-02"] = models.MealTotals{TotalLunches: 7}
	f.store.monthly[key("u1", "2024-03")] = models.MealTotals{}

	// The reconciler lists daily aggregates after scanning records and before repairing.
	aggs := &interleavingAggregates{memStore: f.store}
	aggs.during = func() {
		if _, err := f.meals.SubmitMeal(ctx, resident("u1"), "u1", "2024-03-02", models.MealState{LunchAvailable: true, DinnerAvailable: true}); err != nil {
			t.Errorf("SubmitMeal() error: %v", err)
		}
	}
	recon := NewReconciler(f.store, aggs, f.store, f.totals, zap.NewNop())

	report, err := recon.ReconcileMonth(ctx, "2024-03", true)
	if err != nil {
		t.Fatalf("ReconcileMonth(repair) error: %v", err)
	}
	if !report.Repaired {
		t.Fatalf("report = %+v, want repaired", report)
	}
	assertAggregatesConsistent(t, f.store)
	want := models.MealTotals{TotalLunches: 1, TotalDinners: 1}
	if got := f.store.monthly[key("u1", "2024-03")]; got != want {
		t.Fatalf("monthly aggregate = %+v, want %+v", got, want)
	}
}
