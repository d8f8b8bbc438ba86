package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	registry "plantsched/internal/registry/domain"
)

const defaultPlantsTable = "plants"

// PlantRepository is a Postgres read model for the plant registry.
type PlantRepository struct {
	db    *sql.DB
	table string
}

// NewPlantRepository constructs a repository.
func NewPlantRepository(db *sql.DB, opts ...PlantOption) *PlantRepository {
	repo := &PlantRepository{db: db, table: defaultPlantsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// PlantOption configures the repository.
type PlantOption func(*PlantRepository)

// WithPlantsTable overrides the default table name.
func WithPlantsTable(table string) PlantOption {
	return func(repo *PlantRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a plant by id.
func (r *PlantRepository) Get(ctx context.Context, id string) (*registry.Plant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("plant repo: nil db")
	}
	if id == "" {
		return nil, errors.New("plant repo: empty id")
	}

	query := fmt.Sprintf(`
SELECT id, name, type, capacity_mw, state, status, COALESCE(location_id, ''), updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var plant registry.Plant
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plant.ID,
		&plant.Name,
		&plant.Type,
		&plant.CapacityMW,
		&plant.State,
		&plant.Status,
		&plant.LocationID,
		&plant.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	plant.UpdatedAt = plant.UpdatedAt.UTC()
	return &plant, nil
}

// List returns all registered plants in stable id order.
func (r *PlantRepository) List(ctx context.Context) ([]registry.Plant, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("plant repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, type, capacity_mw, state, status, COALESCE(location_id, ''), updated_at
FROM %s
ORDER BY id`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []registry.Plant
	for rows.Next() {
		var plant registry.Plant
		if err := rows.Scan(
			&plant.ID,
			&plant.Name,
			&plant.Type,
			&plant.CapacityMW,
			&plant.State,
			&plant.Status,
			&plant.LocationID,
			&plant.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plant.UpdatedAt = plant.UpdatedAt.UTC()
		result = append(result, plant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
