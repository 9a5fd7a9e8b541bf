// Package session binds the cookie session to a stored username and carries
// one-shot flash messages between requests. Only the username is stored; the
// identity is re-resolved against the credential store on every request.
package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie registered by the web server.
const CookieName = "schooldesk"

const (
	loginUserKey = "LOGIN_USER"
)

// SetLoginUser records the authenticated username in the session.
func SetLoginUser(c *gin.Context, username string) error {
	s := sessions.Default(c)
	s.Set(loginUserKey, username)
	return s.Save()
}

// SetMaxAge applies the configured lifetime to the session cookie.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// GetLoginUsername returns the stored username, or "" for anonymous sessions.
func GetLoginUsername(c *gin.Context) string {
	s := sessions.Default(c)
	if obj := s.Get(loginUserKey); obj != nil {
		if username, ok := obj.(string); ok {
			return username
		}
	}
	return ""
}

// ClearSession drops the session state and expires the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	return nil
}

// AddFlash queues a message shown on the next rendered page.
func AddFlash(c *gin.Context, msg string) error {
	s := sessions.Default(c)
	s.AddFlash(msg)
	return s.Save()
}

// Flashes drains and returns the queued messages.
func Flashes(c *gin.Context) []string {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save()
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
