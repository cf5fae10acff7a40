package serverutils

import (
	"time"

	"acaradar-web/internal/pkg/logger"
	"acaradar-web/internal/repository/contract"
	"acaradar-web/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionLocalKey = "session"

type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
	Tokens     *SessionTokenCodec
	Repository contract.SessionRepository
	Logger     logger.ILogger
}

// SessionMiddleware loads the browser session before the handler and saves it
// afterwards. Concurrent requests of one browser race on the save; the last one wins.
func SessionMiddleware(cfg SessionConfig) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sess := loadSession(ctx, cfg)
		ctx.Locals(sessionLocalKey, sess)

		err := ctx.Next()

		sess.UpdatedAt = time.Now()
		if saveErr := cfg.Repository.Save(ctx.Context(), sess); saveErr != nil {
			cfg.Logger.Error("Session", "Failed to save session", map[string]interface{}{
				"session_id": sess.ID,
				"error":      saveErr.Error(),
			})
		}

		token, tokenErr := cfg.Tokens.Issue(sess.ID)
		if tokenErr != nil {
			cfg.Logger.Error("Session", "Failed to issue session token", map[string]interface{}{"error": tokenErr.Error()})
			return err
		}
		ctx.Cookie(&fiber.Cookie{
			Name:     cfg.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(cfg.TTL),
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return err
	}
}

func loadSession(ctx *fiber.Ctx, cfg SessionConfig) *store.Session {
	token := ctx.Cookies(cfg.CookieName)
	if token == "" {
		return store.New(uuid.NewString())
	}

	sessionID, err := cfg.Tokens.Parse(token)
	if err != nil {
		cfg.Logger.Debug("Session", "Discarding unreadable session token", map[string]interface{}{"error": err.Error()})
		return store.New(uuid.NewString())
	}

	sess, found, err := cfg.Repository.Get(ctx.Context(), sessionID)
	if err != nil {
		cfg.Logger.Warn("Session", "Session store unavailable, starting fresh", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return store.New(sessionID)
	}
	if !found {
		return store.New(sessionID)
	}
	return sess
}

// CurrentSession returns the session loaded by SessionMiddleware. Outside the
// middleware it hands out a throwaway session so handlers never see nil.
func CurrentSession(ctx *fiber.Ctx) *store.Session {
	if sess, ok := ctx.Locals(sessionLocalKey).(*store.Session); ok && sess != nil {
		return sess
	}
	sess := store.New(uuid.NewString())
	ctx.Locals(sessionLocalKey, sess)
	return sess
}

// RedirectWithFlash stores a one-time notice and redirects with 303 See Other.
func RedirectWithFlash(ctx *fiber.Ctx, kind, message, location string) error {
	CurrentSession(ctx).SetFlash(kind, message)
	return ctx.Redirect(location, fiber.StatusSeeOther)
}
