package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-dispatch/internal/domain"
)

const commissionKey = "driver_commission_percent"

// SettingsRepo reads operational configuration rows: the discovery radius,
// the driver commission percentage and the delivery zones.
type SettingsRepo struct {
	db *pgxpool.Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// ActiveDeliveryRadius returns the most recent radius configuration row, or
// nil when none exists. The row may be inactive; callers decide what that
// means.
func (r *SettingsRepo) ActiveDeliveryRadius(ctx context.Context) (*domain.RadiusConfig, error) {
	var rc domain.RadiusConfig
	err := r.db.QueryRow(ctx, `
        SELECT radius_km, active
        FROM delivery_radius
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `).Scan(&rc.RadiusKm, &rc.Active)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery radius: %w", err)
	}
	return &rc, nil
}

// CommissionPercent returns the configured commission percentage, or nil when
// the setting is absent.
func (r *SettingsRepo) CommissionPercent(ctx context.Context) (*float64, error) {
	var raw string
	err := r.db.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, commissionKey,
	).Scan(&raw)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commission setting: %w", err)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("parse commission setting %q: %w", raw, err)
	}
	return &f, nil
}

// ActiveZones returns active delivery zones with their polygons, ordered by id.
func (r *SettingsRepo) ActiveZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, active, radius_km, polygon
        FROM delivery_zones
        WHERE active
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var out []domain.DeliveryZone
	for rows.Next() {
		var (
			z   domain.DeliveryZone
			raw []byte
		)
		if err := rows.Scan(&z.ID, &z.Name, &z.Active, &z.RadiusKm, &raw); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		z.Polygon, err = decodePolygon(raw)
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", z.ID, err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func decodePolygon(raw []byte) ([]domain.Point, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var pts []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.Unmarshal(raw, &pts); err != nil {
		return nil, fmt.Errorf("decode polygon: %w", err)
	}
	out := make([]domain.Point, 0, len(pts))
	for _, p := range pts {
		out = append(out, domain.Point{Lat: p.Lat, Lon: p.Lon})
	}
	return out, nil
}
