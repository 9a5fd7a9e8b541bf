package controller

import (
	"html/template"
	"net/http"

	"schooldesk/database/model"
	"schooldesk/logger"
	"schooldesk/web/middleware"
	"schooldesk/web/service"
	"schooldesk/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// SignupForm represents the signup request structure. The role is validated
// against the closed role set by the custom "rolename" binding rule.
type SignupForm struct {
	Username string `json:"username" form:"username" binding:"required,max=89"`
	Password string `json:"password" form:"password" binding:"required"`
	Role     string `json:"role" form:"role" binding:"required,rolename"`
}

// IndexController handles the landing redirect and the login, signup, and
// logout routes.
type IndexController struct {
	userService    *service.UserService
	settingService *service.SettingService
}

func NewIndexController(g *gin.RouterGroup, userService *service.UserService, settingService *service.SettingService) *IndexController {
	a := &IndexController{
		userService:    userService,
		settingService: settingService,
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/signup", a.signupPage)
	g.POST("/signup", a.signup)
	g.GET("/logout", middleware.LoginRequired(), a.logout)
}

// index redirects to the role-appropriate home view.
func (a *IndexController) index(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, middleware.HomePath(c, middleware.CurrentUser(c)))
}

func (a *IndexController) loginPage(c *gin.Context) {
	html(c, "login.html", "Log In", nil)
}

// login authenticates the submitted credentials and starts a session. The
// failure message never reveals whether the username or the password was
// wrong.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		session.AddFlash(c, "Please enter a username and password.")
		html(c, "login.html", "Log In", nil)
		return
	}

	user := a.userService.CheckUser(form.Username, form.Password)
	safeUser := template.HTMLEscapeString(form.Username)
	if user == nil {
		logger.Warningf("failed login for %q, IP: %q", safeUser, getRemoteIp(c))
		session.AddFlash(c, "That username/password combination does not exist.")
		html(c, "login.html", "Log In", nil)
		return
	}

	a.startSession(c, user)
	logger.Infof("%s logged in successfully, IP: %s", safeUser, getRemoteIp(c))
	c.Redirect(http.StatusFound, middleware.HomePath(c, user))
}

func (a *IndexController) signupPage(c *gin.Context) {
	html(c, "signup.html", "Sign Up", nil)
}

// signup registers a new account and logs it straight in.
func (a *IndexController) signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, "Please enter a value in all fields.")
		html(c, "signup.html", "Sign Up", nil)
		return
	}

	role, _ := model.ParseRole(form.Role)
	user, err := a.userService.CreateUser(form.Username, form.Password, role)
	if err == service.ErrDuplicateUser {
		session.AddFlash(c, "That username is not available.")
		html(c, "signup.html", "Sign Up", nil)
		return
	} else if err != nil {
		logger.Warning("signup failed:", err)
		session.AddFlash(c, "An unknown error has occurred")
		html(c, "signup.html", "Sign Up", nil)
		return
	}

	a.startSession(c, user)
	logger.Infof("%s signed up as %s", template.HTMLEscapeString(user.Username), user.Role)
	c.Redirect(http.StatusFound, middleware.HomePath(c, user))
}

func (a *IndexController) startSession(c *gin.Context, user *model.User) {
	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	if sessionMaxAge > 0 {
		if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
			logger.Warning("Unable to set session's max age:", err)
		}
	}
	if err := session.SetLoginUser(c, user.Username); err != nil {
		logger.Warning("Unable to save session:", err)
	}
}

// logout clears the session and returns to the login page.
func (a *IndexController) logout(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, middleware.HomePath(c, nil))
}
