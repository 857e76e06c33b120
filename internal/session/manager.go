package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/blogging-tool/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const contextKey = "session"

// Options configures the session cookie
type Options struct {
	CookieName string
	Secret     string
	MaxAge     time.Duration
	Secure     bool
}

// Session is the state attached to the current request
type Session struct {
	ID    string
	State *State

	destroyed bool
}

// Manager loads a session for every request and persists it afterwards
type Manager struct {
	store Store
	opts  Options
	log   zerolog.Logger
	now   func() time.Time
}

// NewManager creates a session manager
func NewManager(store Store, opts Options, log zerolog.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "blog.sid"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = time.Hour
	}
	return &Manager{
		store: store,
		opts:  opts,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
	}
}

// CookieName returns the configured cookie name
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Middleware attaches a session to the request, creating one on first contact,
// and saves it once the handler chain has run.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := m.load(c)
		c.Set(contextKey, sess)

		c.Next()

		if sess.destroyed {
			return
		}
		if err := m.store.Save(ctx, sess.ID, sess.State); err != nil {
			observability.SessionStoreErrors.WithLabelValues("save").Inc()
			m.log.Error().Err(err).Msg("Failed to save session")
		}
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	if cookie, err := c.Cookie(m.opts.CookieName); err == nil {
		if id, ok := m.verify(cookie); ok {
			state, err := m.store.Get(c.Request.Context(), id)
			if err != nil {
				observability.SessionStoreErrors.WithLabelValues("get").Inc()
				m.log.Error().Err(err).Msg("Failed to load session, starting a new one")
			}
			if state != nil && !state.Expired(m.now()) {
				return &Session{ID: id, State: state}
			}
		}
	}

	sess := m.newSession()
	m.setCookie(c, sess)
	return sess
}

func (m *Manager) newSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		State: &State{ExpiresAt: m.now().Add(m.opts.MaxAge)},
	}
}

// Renew moves the current state to a fresh session ID and expiry.
// Called on login so a session ID seen before authentication is never reused.
func (m *Manager) Renew(c *gin.Context) error {
	sess := Get(c)
	if sess == nil {
		return nil
	}

	oldID := sess.ID
	sess.ID = uuid.NewString()
	sess.State.ExpiresAt = m.now().Add(m.opts.MaxAge)
	m.setCookie(c, sess)

	return m.store.Delete(c.Request.Context(), oldID)
}

// Destroy deletes the session and clears the cookie
func (m *Manager) Destroy(c *gin.Context) error {
	sess := Get(c)
	if sess == nil {
		return nil
	}

	if err := m.store.Delete(c.Request.Context(), sess.ID); err != nil {
		return err
	}
	sess.destroyed = true

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) setCookie(c *gin.Context, sess *Session) {
	maxAge := int(math.Ceil(sess.State.ExpiresAt.Sub(m.now()).Seconds()))
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    m.sign(sess.ID),
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  sess.State.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sign returns "<id>.<mac>" where mac is the base64url HMAC-SHA256 of the ID
func (m *Manager) sign(id string) string {
	return id + "." + m.mac(id)
}

func (m *Manager) verify(value string) (string, bool) {
	id, mac, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(mac), []byte(m.mac(id))) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) string {
	h := hmac.New(sha256.New, []byte(m.opts.Secret))
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Get returns the request's session, or nil outside the middleware
func Get(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}

// StateOf returns the request's session state, or an empty state outside the middleware
func StateOf(c *gin.Context) *State {
	if sess := Get(c); sess != nil {
		return sess.State
	}
	return &State{}
}
