package registry

import "testing"

func TestPlantValidate(t *testing.T) {
	valid := Plant{ID: "plant-1", Name: "Plant One", Type: TypeWind}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid plant, got %v", err)
	}

	cases := []struct {
		name  string
		plant Plant
	}{
		{"empty id", Plant{Name: "Plant One", Type: TypeSolar}},
		{"empty name", Plant{ID: "plant-1", Type: TypeSolar}},
		{"unknown type", Plant{ID: "plant-1", Name: "Plant One", Type: "Hydro"}},
	}
	for _, tc := range cases {
		if err := tc.plant.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestWeatherLocationFallback(t *testing.T) {
	withLocation := Plant{ID: "plant-1", LocationID: "loc-9"}
	if got := withLocation.WeatherLocation(); got != "loc-9" {
		t.Fatalf("expected loc-9, got %q", got)
	}
	withoutLocation := Plant{ID: "plant-1"}
	if got := withoutLocation.WeatherLocation(); got != "Plant_plant-1" {
		t.Fatalf("expected legacy key, got %q", got)
	}
}
