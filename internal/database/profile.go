package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-backend/internal/models"
)

type ProfileQueries struct {
	db *sql.DB
}

func NewProfileQueries(db *sql.DB) *ProfileQueries {
	return &ProfileQueries{db: db}
}

const profileColumns = `id, user_id, full_name, phone, contact_email, address, zip_code, created_at, updated_at`

// CreateUserProfile creates an empty profile (called on user registration)
func (q *ProfileQueries) CreateUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + profileColumns

	profile, err := scanProfile(q.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	return profile, nil
}

// GetUserProfile retrieves a user's profile, creating it for users that
// predate profiles.
func (q *ProfileQueries) GetUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`

	profile, err := scanProfile(q.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return q.CreateUserProfile(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return profile, nil
}

// UpdateUserProfile changes the fields present in req and keeps the rest
func (q *ProfileQueries) UpdateUserProfile(ctx context.Context, userID int, req *models.UserProfileRequest) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (user_id, full_name, phone, contact_email, address, zip_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = COALESCE(EXCLUDED.full_name, user_profiles.full_name),
			phone = COALESCE(EXCLUDED.phone, user_profiles.phone),
			contact_email = COALESCE(EXCLUDED.contact_email, user_profiles.contact_email),
			address = COALESCE(EXCLUDED.address, user_profiles.address),
			zip_code = COALESCE(EXCLUDED.zip_code, user_profiles.zip_code)
		RETURNING ` + profileColumns

	profile, err := scanProfile(q.db.QueryRowContext(ctx, query,
		userID, req.FullName, req.Phone, req.ContactEmail, req.Address, req.ZipCode))
	if err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return profile, nil
}

func scanProfile(row rowScanner) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.UserID, &p.FullName, &p.Phone, &p.ContactEmail, &p.Address,
		&p.ZipCode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
