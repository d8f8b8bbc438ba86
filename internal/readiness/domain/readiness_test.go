package readiness

import "testing"

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name              string
		hasUpdatedSchedule bool
		hasActiveTriggers  bool
		want              string
	}{
		{"updated schedule wins", true, true, StatusReady},
		{"updated schedule alone", true, false, StatusReady},
		{"active triggers", false, true, StatusPending},
		{"quiet", false, false, StatusNoAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextStatus(tc.hasUpdatedSchedule, tc.hasActiveTriggers); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTriggerReasonDeduplicatesAndSorts(t *testing.T) {
	triggers := []Trigger{
		{Type: TriggerWeather},
		{Type: TriggerDeviation},
		{Type: TriggerWeather},
		{Type: TriggerCurtailment},
	}
	got := TriggerReason(triggers)
	want := "Curtailment, Deviation, Weather"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTriggerReasonEmpty(t *testing.T) {
	if got := TriggerReason(nil); got != "" {
		t.Fatalf("expected empty reason, got %q", got)
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{StatusReady, StatusPending, StatusNoAction} {
		if !ValidStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidStatus("DONE") {
		t.Fatal("expected DONE to be invalid")
	}
}

func TestTriggerValidate(t *testing.T) {
	trigger := Trigger{ID: "trig-1", PlantID: "plant-1", Type: TriggerDeviation, Severity: SeverityMedium}
	if err := trigger.Validate(); err != nil {
		t.Fatalf("expected valid trigger, got %v", err)
	}
	trigger.Severity = "SEVERE"
	if err := trigger.Validate(); err == nil {
		t.Fatal("expected invalid severity error")
	}
	trigger.Severity = SeverityMedium
	trigger.Type = "Unknown"
	if err := trigger.Validate(); err == nil {
		t.Fatal("expected invalid type error")
	}
}

func TestPriorityForSeverity(t *testing.T) {
	if got := PriorityForSeverity(SeverityHigh); got != PriorityHigh {
		t.Fatalf("expected HIGH priority, got %s", got)
	}
	if got := PriorityForSeverity(SeverityCritical); got != PriorityHigh {
		t.Fatalf("expected HIGH priority, got %s", got)
	}
	if got := PriorityForSeverity(SeverityMedium); got != PriorityNormal {
		t.Fatalf("expected NORMAL priority, got %s", got)
	}
	if got := PriorityForSeverity(SeverityLow); got != PriorityNormal {
		t.Fatalf("expected NORMAL priority, got %s", got)
	}
}
