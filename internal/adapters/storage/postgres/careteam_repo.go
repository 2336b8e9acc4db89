package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/prinik8/AIcare/internal/domain/careteam"
)

type CareTeamRepo struct {
	db *sql.DB
}

func NewCareTeamRepo(db *sql.DB) *CareTeamRepo {
	return &CareTeamRepo{db: db}
}

func (r *CareTeamRepo) Create(ctx context.Context, g careteam.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_grants (
			id, device_id, owner_id, caregiver_id,
			scopes, status, created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.DeviceID,
		g.OwnerID,
		g.CaregiverID,
		joinScopes(g.Scopes),
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		nullTime(g.RevokedAt),
	)
	return err
}

func (r *CareTeamRepo) Update(ctx context.Context, g careteam.Grant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE care_grants
		SET
			scopes = $1,
			status = $2,
			updated_at = $3,
			revoked_at = $4
		WHERE id = $5
	`,
		joinScopes(g.Scopes),
		string(g.Status),
		g.UpdatedAt,
		nullTime(g.RevokedAt),
		g.ID,
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

func (r *CareTeamRepo) GetByID(ctx context.Context, id string) (careteam.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return careteam.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, device_id, owner_id, caregiver_id,
			scopes, status, created_at, updated_at, revoked_at
		FROM care_grants
		WHERE id = $1
	`, id)

	return scanGrant(row)
}

func (r *CareTeamRepo) ListByDevice(ctx context.Context, deviceID string) ([]careteam.Grant, error) {
	return r.list(ctx, "device_id", deviceID)
}

func (r *CareTeamRepo) ListByCaregiver(ctx context.Context, caregiverID string) ([]careteam.Grant, error) {
	return r.list(ctx, "caregiver_id", caregiverID)
}

func (r *CareTeamRepo) list(ctx context.Context, column, value string) ([]careteam.Grant, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, device_id, owner_id, caregiver_id,
			scopes, status, created_at, updated_at, revoked_at
		FROM care_grants
		WHERE `+column+` = $1
		ORDER BY created_at ASC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]careteam.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *CareTeamRepo) GetActiveGrant(ctx context.Context, deviceID, caregiverID string) (careteam.Grant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, device_id, owner_id, caregiver_id,
			scopes, status, created_at, updated_at, revoked_at
		FROM care_grants
		WHERE device_id = $1 AND caregiver_id = $2 AND status = $3
		ORDER BY updated_at DESC, created_at DESC
		LIMIT 1
	`, deviceID, caregiverID, string(careteam.StatusActive))

	return scanGrant(row)
}

func joinScopes(scopes []careteam.Scope) string {
	parts := make([]string, 0, len(scopes))
	for _, s := range scopes {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

func splitScopes(s string) []careteam.Scope {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]careteam.Scope, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, careteam.Scope(p))
		}
	}
	return out
}

func scanGrant(row rowScanner) (careteam.Grant, error) {
	var g careteam.Grant
	var scopes, status string
	var revokedAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.DeviceID,
		&g.OwnerID,
		&g.CaregiverID,
		&scopes,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return careteam.Grant{}, ErrNotFound
		}
		return careteam.Grant{}, err
	}

	g.Scopes = splitScopes(scopes)
	g.Status = careteam.Status(status)
	g.RevokedAt = timePtr(revokedAt)
	return g, nil
}
