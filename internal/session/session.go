package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoRefreshToken = errors.New("session: no refresh token")
)

// Tokens es el par access/refresh tal como lo entrega el backend.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (t Tokens) Empty() bool {
	return strings.TrimSpace(t.AccessToken) == "" && strings.TrimSpace(t.RefreshToken) == ""
}

// Store persiste los tokens (el análogo al localStorage del browser).
// Load sobre un store vacío devuelve Tokens{} sin error.
type Store interface {
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

// Refresher intercambia el refresh token por tokens nuevos (POST /api/refresh-token).
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Claims son los datos que la UI muestra del operador, parseados del access token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// Manager es el único dueño del estado de sesión.
// El original leía localStorage ad hoc desde varios módulos; acá todo
// acceso y toda mutación pasa por acá, y la expiración se notifica
// vía OnExpired en vez de que cada módulo la detecte por su cuenta.
type Manager struct {
	mu        sync.Mutex
	store     Store
	refresher Refresher
	tokens    Tokens
	csrf      string
	onExpired []func()
}

func NewManager(store Store, refresher Refresher) (*Manager, error) {
	m := &Manager{
		store:     store,
		refresher: refresher,
	}
	if store != nil {
		t, err := store.Load()
		if err != nil {
			return nil, err
		}
		m.tokens = t
	}
	return m, nil
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.AccessToken
}

func (m *Manager) CSRFToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.csrf
}

func (m *Manager) SetCSRFToken(tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.csrf = strings.TrimSpace(tok)
}

func (m *Manager) SetTokens(t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	if m.store != nil {
		return m.store.Save(t)
	}
	return nil
}

// Clear borra los tokens en memoria y en el store. No notifica expiración;
// para eso está expire() desde Refresh.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearLocked()
}

func (m *Manager) clearLocked() error {
	m.tokens = Tokens{}
	if m.store != nil {
		return m.store.Clear()
	}
	return nil
}

// OnExpired registra un callback de sesión expirada (la UI típicamente
// redirige a login). Se invoca una vez por refresh fallido.
func (m *Manager) OnExpired(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = append(m.onExpired, fn)
}

// Refresh intenta exactamente un intercambio de refresh token.
// Si falla (o no hay refresh token), limpia tokens y notifica expiración.
//
// Nota: a propósito NO hay single-flight acá. Dos requests concurrentes
// que reciban 401 van a refrescar cada uno por su lado, igual que el
// original. El mutex solo protege el estado, no deduplica intentos.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := strings.TrimSpace(m.tokens.RefreshToken)
	refresher := m.refresher
	m.mu.Unlock()

	if refreshToken == "" || refresher == nil {
		m.expire()
		return ErrNoRefreshToken
	}

	fresh, err := refresher.Refresh(ctx, refreshToken)
	if err != nil {
		m.expire()
		return err
	}

	return m.SetTokens(fresh)
}

func (m *Manager) expire() {
	m.mu.Lock()
	_ = m.clearLocked()
	fns := make([]func(), len(m.onExpired))
	copy(fns, m.onExpired)
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Claims parsea el access token SIN verificar firma (la verificación es del
// backend; acá solo se usa para mostrar el operador y su expiración en la UI).
func (m *Manager) Claims() (Claims, bool) {
	tok := m.AccessToken()
	if tok == "" {
		return Claims{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return Claims{}, false
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, false
	}

	c := Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		c.UserID = sub
	}
	if v, ok := mc["email"].(string); ok {
		c.Email = v
	}
	if v, ok := mc["role"].(string); ok {
		c.Role = v
	}

	if strings.TrimSpace(c.UserID) == "" {
		return Claims{}, false
	}
	return c, true
}

// ExpiresAt devuelve el exp claim del access token, si existe.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	tok := m.AccessToken()
	if tok == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return time.Time{}, false
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
