package models

import (
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// UserProfile holds the contact and shipping details used to prefill checkout
type UserProfile struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	FullName     *string   `json:"full_name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	Address      *string   `json:"address,omitempty"`
	ZipCode      *string   `json:"zip_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserProfileRequest struct {
	FullName     *string `json:"full_name,omitempty" binding:"omitempty,max=200"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,max=32"`
	ContactEmail *string `json:"contact_email,omitempty" binding:"omitempty,email"`
	Address      *string `json:"address,omitempty" binding:"omitempty,max=500"`
	ZipCode      *string `json:"zip_code,omitempty" binding:"omitempty,max=20"`
}
