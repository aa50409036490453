package types

import "time"

// AppSettings is a single-row table; the seed command creates the row.
type AppSettings struct {
	ID              string    `db:"id" json:"id"`
	MaintenanceMode bool      `db:"maintenance_mode" json:"maintenanceMode"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}
