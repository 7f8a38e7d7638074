package prefs

import (
	"context"
	"testing"

	"github.com/derpfest/customizations/internal/settings"
)

func TestToggles_DefaultEnabled(t *testing.T) {
	ctx := context.Background()
	s := settings.NewMemoryStore()
	for _, tg := range Toggles {
		on, err := tg.Enabled(ctx, s)
		if err != nil || !on {
			t.Fatalf("%s: Enabled = %v, %v", tg.Name, on, err)
		}
	}
}

func TestToggle_Set(t *testing.T) {
	ctx := context.Background()
	s := settings.NewMemoryStore()
	if err := Location.Set(ctx, s, false); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _, _ := s.GetString(ctx, settings.KeyLocationPrivacyIndicator); v != "0" {
		t.Fatalf("stored %q, want 0", v)
	}
	if on, _ := Location.Enabled(ctx, s); on {
		t.Fatalf("expected disabled")
	}
	_ = Location.Set(ctx, s, true)
	if v, _, _ := s.GetString(ctx, settings.KeyLocationPrivacyIndicator); v != "1" {
		t.Fatalf("stored %q, want 1", v)
	}
	// Any value other than 1 reads as off.
	_ = s.PutInt(ctx, settings.KeyMicCameraPrivacyIndicators, 2)
	if on, _ := MicCamera.Enabled(ctx, s); on {
		t.Fatalf("2 must read as disabled")
	}
}

func TestToggleByName(t *testing.T) {
	if tg, err := ToggleByName("MIC-CAMERA"); err != nil || tg.Key != settings.KeyMicCameraPrivacyIndicators {
		t.Fatalf("ToggleByName = %+v, %v", tg, err)
	}
	if _, err := ToggleByName("gps"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCycleSummary(t *testing.T) {
	ctx := context.Background()
	s := settings.NewMemoryStore()
	daily := "Shows today's data usage"
	weekly := "Shows this week's data usage"

	tests := []struct {
		stored  *int
		pending string
		want    string
	}{
		{nil, "", daily},
		{intp(1), "", weekly},
		{intp(7), "", daily},
		{intp(0), "1", weekly},
		{intp(1), "0", daily},
		{intp(1), "abc", weekly},
		{intp(1), "5", daily},
	}
	for _, tt := range tests {
		_ = s.Delete(ctx, settings.KeyDataUsageCycleType)
		if tt.stored != nil {
			_ = SetCycle(ctx, s, *tt.stored)
		}
		got, err := CycleSummary(ctx, s, tt.pending)
		if err != nil || got != tt.want {
			t.Errorf("stored=%v pending=%q: got %q, %v; want %q", tt.stored, tt.pending, got, err, tt.want)
		}
	}
}

func TestParseCycle(t *testing.T) {
	cases := map[string]int{"daily": 0, "Weekly": 1, " 3 ": 3}
	for in, want := range cases {
		got, err := ParseCycle(in)
		if err != nil || got != want {
			t.Errorf("ParseCycle(%q) = %d, %v", in, got, err)
		}
	}
	if _, err := ParseCycle("monthly"); err == nil {
		t.Fatalf("expected error")
	}
	if CycleLabel(CycleWeekly) != "Weekly" || CycleLabel(9) != "Daily" {
		t.Fatalf("unexpected labels")
	}
}

func intp(v int) *int { return &v }
