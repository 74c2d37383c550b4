package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const deviceColumns = `id, user_id, name, kind, os, browser, fingerprint, trusted, last_seen_at, created_at`

func scanDevice(row pgx.CollectableRow) (domain.Device, error) {
	var d domain.Device
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Kind, &d.OS, &d.Browser, &d.Fingerprint, &d.Trusted, &d.LastSeenAt, &d.CreatedAt)
	return d, err
}

// UpsertDevice implements domain.DeviceRepository. xmax = 0 only for freshly inserted rows.
func (r *Repository) UpsertDevice(ctx context.Context, device domain.Device) (*domain.Device, bool, error) {
	const stmt = `INSERT INTO devices (` + deviceColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (user_id, fingerprint) DO UPDATE SET
            last_seen_at = EXCLUDED.last_seen_at,
            name = CASE WHEN EXCLUDED.name = '' THEN devices.name ELSE EXCLUDED.name END
        RETURNING ` + deviceColumns + `, (xmax = 0)`

	var d domain.Device
	var created bool
	err := r.pool.QueryRow(ctx, stmt,
		device.ID, device.UserID, device.Name, device.Kind, device.OS, device.Browser, device.Fingerprint, device.Trusted, device.LastSeenAt, device.CreatedAt,
	).Scan(&d.ID, &d.UserID, &d.Name, &d.Kind, &d.OS, &d.Browser, &d.Fingerprint, &d.Trusted, &d.LastSeenAt, &d.CreatedAt, &created)
	if err != nil {
		return nil, false, err
	}
	return &d, created, nil
}

// GetDevice implements domain.DeviceRepository.
func (r *Repository) GetDevice(ctx context.Context, userID, deviceID string) (*domain.Device, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = $1 AND user_id = $2`, deviceID, userID)
	if err != nil {
		return nil, err
	}
	d, err := pgx.CollectExactlyOneRow(rows, scanDevice)
	return noRows(&d, err)
}

// ListDevices implements domain.DeviceRepository.
func (r *Repository) ListDevices(ctx context.Context, userID string) ([]domain.Device, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+deviceColumns+` FROM devices WHERE user_id = $1 ORDER BY last_seen_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanDevice)
}

// TouchDevice implements domain.DeviceRepository.
func (r *Repository) TouchDevice(ctx context.Context, userID, deviceID string, at time.Time) error {
	return affected(r.pool.Exec(ctx, `UPDATE devices SET last_seen_at = $3 WHERE id = $1 AND user_id = $2`, deviceID, userID, at))
}

// SetDeviceTrusted implements domain.DeviceRepository.
func (r *Repository) SetDeviceTrusted(ctx context.Context, userID, deviceID string, trusted bool) error {
	return affected(r.pool.Exec(ctx, `UPDATE devices SET trusted = $3 WHERE id = $1 AND user_id = $2`, deviceID, userID, trusted))
}

// DeleteDevice implements domain.DeviceRepository.
func (r *Repository) DeleteDevice(ctx context.Context, userID, deviceID string) error {
	return affected(r.pool.Exec(ctx, `DELETE FROM devices WHERE id = $1 AND user_id = $2`, deviceID, userID))
}
