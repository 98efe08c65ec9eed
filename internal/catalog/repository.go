package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetRestaurant returns nil without error when the restaurant does not exist.
func (r *Repository) GetRestaurant(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	rest := &Restaurant{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, rating, is_active, is_verified, delivery_fee, delivery_time_max_minutes, created_at
		FROM restaurants
		WHERE id = $1
	`, id).Scan(
		&rest.ID, &rest.Name, &rest.Phone, &rest.Rating,
		&rest.IsActive, &rest.IsVerified, &rest.DeliveryFee, &rest.DeliveryTimeMaxMin, &rest.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rest, nil
}

func (r *Repository) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, rating, is_active, is_verified, delivery_fee, delivery_time_max_minutes, created_at
		FROM restaurants
		WHERE is_active AND is_verified
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var restaurants []Restaurant
	for rows.Next() {
		var rest Restaurant
		if err := rows.Scan(
			&rest.ID, &rest.Name, &rest.Phone, &rest.Rating,
			&rest.IsActive, &rest.IsVerified, &rest.DeliveryFee, &rest.DeliveryTimeMaxMin, &rest.CreatedAt,
		); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}

// GetMenuItem is scoped to one restaurant's catalog: an id that exists under
// a different restaurant is reported as not found.
func (r *Repository) GetMenuItem(ctx context.Context, restaurantID, itemID uuid.UUID) (*MenuItem, error) {
	item := &MenuItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, name, description, category, images, price, is_active, is_available
		FROM menu_items
		WHERE id = $1 AND restaurant_id = $2
	`, itemID, restaurantID).Scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
		pq.Array(&item.Images), &item.Price, &item.IsActive, &item.IsAvailable,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}

func (r *Repository) ListMenu(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, description, category, images, price, is_active, is_available
		FROM menu_items
		WHERE restaurant_id = $1 AND is_active
		ORDER BY category, name
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []MenuItem
	for rows.Next() {
		var item MenuItem
		if err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Category,
			pq.Array(&item.Images), &item.Price, &item.IsActive, &item.IsAvailable,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
