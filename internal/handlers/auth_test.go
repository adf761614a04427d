package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/database"
	"storefront-backend/internal/models"
)

const testJWTSecret = "handler-test-secret"

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = len(m.users) + 1
	u := *user
	m.users[user.Email] = &u
	return nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, fmt.Errorf("user: %w", database.ErrNotFound)
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user: %w", database.ErrNotFound)
}

func (m *memoryUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[int]*models.UserProfile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: make(map[int]*models.UserProfile)}
}

func (m *memoryProfiles) CreateUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	p := &models.UserProfile{ID: len(m.profiles) + 1, UserID: userID}
	m.profiles[userID] = p
	return p, nil
}

func (m *memoryProfiles) GetUserProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	return m.CreateUserProfile(ctx, userID)
}

func (m *memoryProfiles) UpdateUserProfile(ctx context.Context, userID int, req *models.UserProfileRequest) (*models.UserProfile, error) {
	p, _ := m.CreateUserProfile(ctx, userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.FullName != nil {
		p.FullName = req.FullName
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.ContactEmail != nil {
		p.ContactEmail = req.ContactEmail
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.ZipCode != nil {
		p.ZipCode = req.ZipCode
	}
	return p, nil
}

func authRouter(users UserStore, profiles ProfileStore) *gin.Engine {
	h := NewAuthHandler(users, profiles, testJWTSecret, zerolog.Nop())

	r := gin.New()
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.RefreshToken)
	r.GET("/api/auth/profile", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", 1)
		}
		c.Next()
	}, h.Profile)
	return r
}

func TestAuthHandler_RegisterCreatesClientAndProfile(t *testing.T) {
	users, profiles := newMemoryUsers(), newMemoryProfiles()
	r := authRouter(users, profiles)

	w := perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "new@example.com", "password": "secret1", "role": "admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, models.RoleClient, resp.User.Role, "self-registration cannot grant admin")
	assert.Contains(t, profiles.profiles, resp.User.ID)

	claims, err := auth.ValidateToken(resp.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "new@example.com", claims.Email)

	w = perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "new@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	r := authRouter(newMemoryUsers(), newMemoryProfiles())

	w := perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "a@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	r := authRouter(newMemoryUsers(), newMemoryProfiles())
	perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "buyer@example.com", "password": "secret1"})

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"correct", "buyer@example.com", "secret1", http.StatusOK},
		{"wrong password", "buyer@example.com", "secret2", http.StatusUnauthorized},
		{"unknown email", "nobody@example.com", "secret1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, r, http.MethodPost, "/api/auth/login", gin.H{"email": tt.email, "password": tt.password})
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	r := authRouter(newMemoryUsers(), newMemoryProfiles())

	var registered models.AuthResponse
	decode(t, perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "buyer@example.com", "password": "secret1"}), &registered)

	w := perform(t, r, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": registered.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "access tokens cannot refresh")

	w = perform(t, r, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": registered.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	var refreshed models.AuthResponse
	decode(t, w, &refreshed)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthHandler_Profile(t *testing.T) {
	users := newMemoryUsers()
	r := authRouter(users, newMemoryProfiles())
	perform(t, r, http.MethodPost, "/api/auth/register", gin.H{"email": "buyer@example.com", "password": "secret1"})

	w := perform(t, r, http.MethodGet, "/api/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptestRequestWithHeader(http.MethodGet, "/api/auth/profile", "X-Test-User", "1")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	decode(t, w, &user)
	assert.Equal(t, "buyer@example.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestProfileHandler(t *testing.T) {
	profiles := newMemoryProfiles()
	h := NewProfileHandler(profiles)

	r := gin.New()
	g := r.Group("/api/profile", identity("s1", intPtr(4)))
	g.GET("", h.GetProfile)
	g.PUT("", h.UpdateProfile)

	w := perform(t, r, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, r, http.MethodPut, "/api/profile", gin.H{"full_name": "Asha Rao", "zip_code": "560001"})
	require.Equal(t, http.StatusOK, w.Code)

	var p models.UserProfile
	decode(t, w, &p)
	require.NotNil(t, p.FullName)
	assert.Equal(t, "Asha Rao", *p.FullName)
	assert.Equal(t, 4, p.UserID)

	w = perform(t, r, http.MethodPut, "/api/profile", gin.H{"contact_email": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	anon := gin.New()
	anon.GET("/api/profile", h.GetProfile)
	w = perform(t, anon, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
