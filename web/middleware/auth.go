// Package middleware provides the request guards of the schooldesk panel:
// identity resolution, authentication and role checks, and request ids.
package middleware

import (
	"errors"
	"net/http"

	"schooldesk/database/model"
	"schooldesk/logger"
	"schooldesk/web/entity"
	"schooldesk/web/service"
	"schooldesk/web/session"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Identity resolves the session's stored username against the credential
// store and places the account in the request context. Anonymous requests
// pass through with no identity set.
func Identity(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if username := session.GetLoginUsername(c); username != "" {
			user, err := userService.GetUser(username)
			if err == nil {
				c.Set(identityKey, user)
			} else if !errors.Is(err, service.ErrUserNotFound) {
				logger.Warning("resolve session identity err:", err)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the resolved account for this request, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if obj, exists := c.Get(identityKey); exists {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

// HomePath maps an identity onto its landing page: admins get the dashboard,
// other authenticated users the submission form, anonymous callers the login
// page. The same mapping doubles as the unauthorized-access fallback.
func HomePath(c *gin.Context, user *model.User) string {
	basePath := c.GetString("base_path")
	if basePath == "" {
		basePath = "/"
	}
	switch {
	case user == nil:
		return basePath + "login"
	case user.Role == model.RoleAdmin:
		return basePath + "dashboard"
	default:
		return basePath + "create_issue"
	}
}

// LoginRequired rejects anonymous requests. Browsers are redirected to the
// login page rather than shown an error; AJAX callers get a 401 JSON body.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		if isAjax(c) {
			c.JSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: "Please log in again"})
		} else {
			c.Redirect(http.StatusTemporaryRedirect, HomePath(c, nil))
		}
		c.Abort()
	}
}

// RoleRequired allows only the listed roles, compared by exact tag equality.
// There is no role hierarchy. Unauthorized browsers are silently redirected
// to their own home page, never shown a permission error.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user != nil && allowed[user.Role] {
			c.Next()
			return
		}
		if isAjax(c) {
			c.JSON(http.StatusUnauthorized, entity.Msg{Success: false, Msg: "Not allowed"})
		} else {
			c.Redirect(http.StatusTemporaryRedirect, HomePath(c, user))
		}
		c.Abort()
	}
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
