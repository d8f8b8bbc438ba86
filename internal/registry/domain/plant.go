package registry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	TypeWind  = "Wind"
	TypeSolar = "Solar"
)

// Plant represents a generation site in the plant registry. The registry is
// owned by the data-entry subsystem; the readiness engine only reads it.
type Plant struct {
	ID         string
	Name       string
	Type       string
	CapacityMW float64
	State      string
	Status     string
	LocationID string
	UpdatedAt  time.Time
}

// Validate checks plant invariants.
func (p Plant) Validate() error {
	if p.ID == "" {
		return errors.New("plant: empty id")
	}
	if p.Name == "" {
		return errors.New("plant: empty name")
	}
	if p.Type != TypeWind && p.Type != TypeSolar {
		return errors.New("plant: invalid type")
	}
	return nil
}

// WeatherLocation resolves the weather record key for the plant. Plants
// without an explicit location fall back to the legacy per-plant key.
func (p Plant) WeatherLocation() string {
	if p.LocationID != "" {
		return p.LocationID
	}
	return fmt.Sprintf("Plant_%s", p.ID)
}

// PlantRepository reads plants from the registry.
type PlantRepository interface {
	Get(ctx context.Context, id string) (*Plant, error)
	List(ctx context.Context) ([]Plant, error)
}
