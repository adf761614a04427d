package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/checkout"
	"storefront-backend/internal/models"
)

type SettingsQueries struct {
	db *sql.DB
}

func NewSettingsQueries(db *sql.DB) *SettingsQueries {
	return &SettingsQueries{db: db}
}

func (q *SettingsQueries) GetAllSettings(ctx context.Context) ([]models.SiteSetting, error) {
	query := `
		SELECT id, key, value, description, created_at, updated_at
		FROM site_settings
		ORDER BY key
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	defer rows.Close()

	settings := []models.SiteSetting{}
	for rows.Next() {
		var setting models.SiteSetting
		err := rows.Scan(
			&setting.ID,
			&setting.Key,
			&setting.Value,
			&setting.Description,
			&setting.CreatedAt,
			&setting.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, setting)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// GetSettingByKey returns nil without error when the key does not exist
func (q *SettingsQueries) GetSettingByKey(ctx context.Context, key string) (*models.SiteSetting, error) {
	query := `
		SELECT id, key, value, description, created_at, updated_at
		FROM site_settings
		WHERE key = $1
	`
	setting := &models.SiteSetting{}
	err := q.db.QueryRowContext(ctx, query, key).Scan(
		&setting.ID,
		&setting.Key,
		&setting.Value,
		&setting.Description,
		&setting.CreatedAt,
		&setting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting, nil
}

func (q *SettingsQueries) UpdateSetting(ctx context.Context, key, value string) error {
	query := `
		UPDATE site_settings
		SET value = $1
		WHERE key = $2
	`
	result, err := q.db.ExecContext(ctx, query, value, key)
	if err != nil {
		return fmt.Errorf("failed to update setting %s: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}

	return nil
}

func (q *SettingsQueries) GetMaintenanceMode(ctx context.Context) (bool, error) {
	setting, err := q.GetSettingByKey(ctx, models.SettingMaintenanceMode)
	if err != nil {
		return false, err
	}
	if setting == nil {
		return false, nil
	}
	return setting.Value == "true", nil
}

// GetCatalogHash returns the current catalog version, or "" when unset.
func (q *SettingsQueries) GetCatalogHash(ctx context.Context) (string, error) {
	setting, err := q.GetSettingByKey(ctx, models.SettingCatalogHash)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

// BumpCatalogHash stores a fresh catalog version, invalidating every cart
// built against the previous one.
func (q *SettingsQueries) BumpCatalogHash(ctx context.Context) (string, error) {
	hash := uuid.NewString()
	query := `
		INSERT INTO site_settings (key, value, description)
		VALUES ($1, $2, 'Changes whenever the catalog changes; older carts are cleared')
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := q.db.ExecContext(ctx, query, models.SettingCatalogHash, hash); err != nil {
		return "", fmt.Errorf("failed to bump catalog hash: %w", err)
	}
	return hash, nil
}

// GetShippingPolicy overlays the stored threshold and fee on fallback.
// Missing or malformed values keep the fallback.
func (q *SettingsQueries) GetShippingPolicy(ctx context.Context, fallback checkout.ShippingPolicy) (checkout.ShippingPolicy, error) {
	policy := fallback

	threshold, err := q.getDecimal(ctx, models.SettingFreeShippingThreshold)
	if err != nil {
		return fallback, err
	}
	if threshold != nil {
		policy.Threshold = *threshold
	}

	fee, err := q.getDecimal(ctx, models.SettingShippingFee)
	if err != nil {
		return fallback, err
	}
	if fee != nil {
		policy.Fee = *fee
	}

	return policy, nil
}

func (q *SettingsQueries) getDecimal(ctx context.Context, key string) (*decimal.Decimal, error) {
	setting, err := q.GetSettingByKey(ctx, key)
	if err != nil || setting == nil {
		return nil, err
	}
	d, err := decimal.NewFromString(setting.Value)
	if err != nil || d.IsNegative() {
		return nil, nil
	}
	return &d, nil
}
