package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/prinik8/AIcare/internal/domain/devices"
)

type DevicesRepo struct {
	db *sql.DB
}

func NewDevicesRepo(db *sql.DB) *DevicesRepo {
	return &DevicesRepo{db: db}
}

func (r *DevicesRepo) Create(ctx context.Context, d devices.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (
			id, device_id,
			label, location, emergency_contact, conditions, notes,
			owner_id, registered_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		d.ID,
		d.DeviceID,
		d.Label,
		d.Location,
		d.EmergencyContact,
		d.Conditions,
		d.Notes,
		d.OwnerID,
		d.RegisteredAt,
		d.UpdatedAt,
	)
	return err
}

func (r *DevicesRepo) Update(ctx context.Context, d devices.Device) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE devices
		SET
			label = $1,
			location = $2,
			emergency_contact = $3,
			conditions = $4,
			notes = $5,
			updated_at = $6
		WHERE device_id = $7
	`,
		d.Label,
		d.Location,
		d.EmergencyContact,
		d.Conditions,
		d.Notes,
		d.UpdatedAt,
		d.DeviceID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DevicesRepo) GetByDeviceID(ctx context.Context, deviceID string) (devices.Device, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return devices.Device{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, device_id,
			label, location, emergency_contact, conditions, notes,
			owner_id, registered_at, updated_at
		FROM devices
		WHERE device_id = $1
	`, deviceID)

	return scanDevice(row)
}

func (r *DevicesRepo) List(ctx context.Context) ([]devices.Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, device_id,
			label, location, emergency_contact, conditions, notes,
			owner_id, registered_at, updated_at
		FROM devices
		ORDER BY registered_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]devices.Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (devices.Device, error) {
	var d devices.Device

	if err := row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.Label,
		&d.Location,
		&d.EmergencyContact,
		&d.Conditions,
		&d.Notes,
		&d.OwnerID,
		&d.RegisteredAt,
		&d.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return devices.Device{}, ErrNotFound
		}
		return devices.Device{}, err
	}

	return d, nil
}
