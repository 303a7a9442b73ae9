// Package session holds the authenticated identity and the current
// effective role of each browser session, persisted to durable storage
// so a reload restores them before anything renders.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hobbyvault/storefront/internal/logging"
	"github.com/hobbyvault/storefront/internal/roles"
	"github.com/hobbyvault/storefront/internal/storage"
)

// Fixed durable-storage key constants, scoped per session.
const (
	roleKey       = "dev_current_role"
	credentialKey = "dev_access_token"
	identityKey   = "dev_identity"
)

var (
	ErrInvalidToken = errors.New("session: invalid token")
	ErrInvalidRole  = errors.New("session: invalid role")
)

// Identity is the user as the screens know them, extracted from the
// access token claims issued by the auth service.
type Identity struct {
	UserID uint       `json:"user_id,omitempty"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email,omitempty"`
	Phone  string     `json:"phone,omitempty"`
	Role   roles.Role `json:"role"`
	Status string     `json:"status,omitempty"`
	Avatar string     `json:"avatar,omitempty"`
}

// Manager reads and writes session state. Role reads fall back to the
// last in-memory value when durable storage is unreachable, so the
// guard keeps working through a storage hiccup.
type Manager struct {
	storage   storage.Store
	jwtSecret []byte

	mu        sync.RWMutex
	lastRoles map[string]roles.Role
}

func NewManager(st storage.Store, jwtSecret []byte) *Manager {
	return &Manager{
		storage:   st,
		jwtSecret: jwtSecret,
		lastRoles: make(map[string]roles.Role),
	}
}

func key(sessionID, suffix string) string {
	return "sess:" + sessionID + ":" + suffix
}

// Login validates the access token, extracts the role claim and
// persists role, credential and identity. Token issuance itself belongs
// to the auth service; only the claims are consumed here.
func (m *Manager) Login(ctx context.Context, sessionID, token string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: cannot parse claims", ErrInvalidToken)
	}

	role, ok := claims["role"].(string)
	if !ok || !roles.IsValid(roles.Role(role)) {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	id := Identity{Role: roles.Role(role)}
	if sub, ok := claims["sub"].(float64); ok {
		id.UserID = uint(sub)
	}
	if v, ok := claims["name"].(string); ok {
		id.Name = v
	}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["phone"].(string); ok {
		id.Phone = v
	}
	if v, ok := claims["status"].(string); ok {
		id.Status = v
	}
	if v, ok := claims["avatar"].(string); ok {
		id.Avatar = v
	}

	if err := m.storage.Set(ctx, key(sessionID, credentialKey), []byte(token)); err != nil {
		return Identity{}, fmt.Errorf("session: store credential: %w", err)
	}
	raw, _ := json.Marshal(id)
	if err := m.storage.Set(ctx, key(sessionID, identityKey), raw); err != nil {
		return Identity{}, fmt.Errorf("session: store identity: %w", err)
	}
	if err := m.SetRole(ctx, sessionID, id.Role); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Logout clears role, credential and identity for the session.
func (m *Manager) Logout(ctx context.Context, sessionID string) error {
	var errs []error
	for _, suffix := range []string{roleKey, credentialKey, identityKey} {
		if err := m.storage.Delete(ctx, key(sessionID, suffix)); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	delete(m.lastRoles, sessionID)
	m.mu.Unlock()

	return errors.Join(errs...)
}

// SetRole makes role the session's current role. Values outside the
// enum are rejected.
func (m *Manager) SetRole(ctx context.Context, sessionID string, role roles.Role) error {
	if !roles.IsValid(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := m.storage.Set(ctx, key(sessionID, roleKey), []byte(role)); err != nil {
		return fmt.Errorf("session: store role: %w", err)
	}

	m.mu.Lock()
	m.lastRoles[sessionID] = role
	m.mu.Unlock()
	return nil
}

// CurrentRole returns the session's stored role. The second return is
// false when no role was ever set.
func (m *Manager) CurrentRole(ctx context.Context, sessionID string) (roles.Role, bool) {
	raw, err := m.storage.Get(ctx, key(sessionID, roleKey))
	if err == nil {
		role := roles.Role(raw)
		m.mu.Lock()
		m.lastRoles[sessionID] = role
		m.mu.Unlock()
		return role, true
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logging.FromContext(ctx).Warn("session_role_read_failed", "session", sessionID, "error", err)
		m.mu.RLock()
		role, ok := m.lastRoles[sessionID]
		m.mu.RUnlock()
		if ok {
			return role, true
		}
	}
	return "", false
}

// Credential returns the stored access token. Its presence, not its
// validity, is what makes the session authenticated.
func (m *Manager) Credential(ctx context.Context, sessionID string) (string, bool) {
	raw, err := m.storage.Get(ctx, key(sessionID, credentialKey))
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Identity returns the stored identity, if any.
func (m *Manager) Identity(ctx context.Context, sessionID string) (Identity, bool) {
	raw, err := m.storage.Get(ctx, key(sessionID, identityKey))
	if err != nil {
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return Identity{}, false
	}
	return id, true
}

// CreateCookie builds a cookie the way every other cookie in the app is
// built.
func CreateCookie(name string, value string, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
