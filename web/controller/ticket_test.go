package controller

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"schooldesk/database"
	"schooldesk/database/model"
	"schooldesk/logger"
	"schooldesk/web/middleware"
	"schooldesk/web/service"
	"schooldesk/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
)

func setupRouter(t *testing.T) (*gin.Engine, *service.TicketService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitLogger(logging.ERROR)

	dbPath := "test.db"
	os.Remove(dbPath)
	if err := database.InitDB(dbPath); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
	})

	db := database.GetDB()
	userService := service.NewUserService(db)
	ticketService := service.NewTicketService(db)
	categoryService := service.NewCategoryService(db)
	settingService := service.NewSettingService(db)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseRole(fl.Field().String())
			return ok
		})
	}

	engine := gin.New()
	engine.Use(sessions.Sessions(session.CookieName, cookie.NewStore([]byte("test-secret"))))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", "/")
	})
	engine.Use(middleware.Identity(userService))
	engine.SetFuncMap(template.FuncMap{
		"str": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"num": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
	})
	engine.LoadHTMLGlob("../html/*.html")

	g := engine.Group("/")
	NewIndexController(g, userService, settingService)
	NewTicketController(g, ticketService, categoryService, userService)

	return engine, ticketService
}

// login posts the credentials and returns the session cookie.
func login(t *testing.T, engine *gin.Engine, username string, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("no session cookie set")
	}
	return sessionCookie
}

func doRequest(engine *gin.Engine, method string, target string, body string, cookie *http.Cookie, ajax bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if ajax {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestDashboardRequiresLogin(t *testing.T) {
	engine, _ := setupRouter(t)

	w := doRequest(engine, http.MethodGet, "/dashboard", "", nil, false)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Ajax requests get a JSON 401 instead of a redirect
	w = doRequest(engine, http.MethodGet, "/api/admins.json", "", nil, true)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboardRequiresAdmin(t *testing.T) {
	engine, _ := setupRouter(t)

	// Sign up a student account, which logs it straight in
	form := url.Values{"username": {"alice"}, "password": {"pw"}, "role": {"student"}}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create_issue", w.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sessionCookie = c
		}
	}
	assert.NotNil(t, sessionCookie)

	// A student is silently sent to their own home view
	w = doRequest(engine, http.MethodGet, "/dashboard", "", sessionCookie, false)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/create_issue", w.Header().Get("Location"))
}

func TestLoginFlow(t *testing.T) {
	engine, _ := setupRouter(t)

	w := doRequest(engine, http.MethodPost, "/login", "username=admin&password=wrong", nil, false)
	// The form re-renders with a flash; follow-up render drains it
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "That username/password combination does not exist.")

	cookie := login(t, engine, "admin", "admin")
	w = doRequest(engine, http.MethodGet, "/dashboard", "", cookie, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateIssueFlash(t *testing.T) {
	engine, _ := setupRouter(t)
	cookie := login(t, engine, "admin", "admin")

	form := url.Values{"summary": {"Broken projector"}, "description": {"Room 204."}}
	req := httptest.NewRequest(http.MethodPost, "/create_issue", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Issue #1 Submitted")

	// Missing fields report the exact validation message
	req = httptest.NewRequest(http.MethodPost, "/create_issue", strings.NewReader("summary=&description="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please provide both a description and summary")
}

func TestCategoryEndpoints(t *testing.T) {
	engine, ticketService := setupRouter(t)
	cookie := login(t, engine, "admin", "admin")

	id, err := ticketService.CreateTicket("Wifi down", "No wifi in the library.", "admin")
	assert.NoError(t, err)
	base := fmt.Sprintf("/tickets/%d/category", id)

	w := doRequest(engine, http.MethodPut, base, "1", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(1), got["categoryId"])
	assert.Equal(t, "Hardware", got["categoryName"])

	// The literal "null" clears the category
	w = doRequest(engine, http.MethodPut, base, "null", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	got = nil
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Nil(t, got["categoryId"])
	assert.Nil(t, got["categoryName"])

	w = doRequest(engine, http.MethodPut, base, "999", cookie, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPut, base, "garbage", cookie, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPut, "/tickets/999/category", "1", cookie, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(engine, http.MethodGet, "/tickets/abc/category", "", cookie, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssigneeEndpoints(t *testing.T) {
	engine, ticketService := setupRouter(t)
	cookie := login(t, engine, "admin", "admin")

	id, err := ticketService.CreateTicket("Wifi down", "No wifi in the library.", "admin")
	assert.NoError(t, err)
	base := fmt.Sprintf("/tickets/%d/assignee", id)

	w := doRequest(engine, http.MethodPut, base, "admin", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "admin", got["username"])

	// An empty body clears the assignee
	w = doRequest(engine, http.MethodPut, base, "", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	got = nil
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Nil(t, got["username"])

	// So does the literal "null", matching the category endpoint
	w = doRequest(engine, http.MethodPut, base, "admin", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(engine, http.MethodPut, base, "null", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	got = nil
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Nil(t, got["username"])

	w = doRequest(engine, http.MethodPut, base, "nobody", cookie, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCloseTicketEndpoint(t *testing.T) {
	engine, ticketService := setupRouter(t)
	cookie := login(t, engine, "admin", "admin")

	id, err := ticketService.CreateTicket("Short lived", "Will be closed.", "admin")
	assert.NoError(t, err)

	w := doRequest(engine, http.MethodPost, fmt.Sprintf("/tickets/%d/close", id), "", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String())

	w = doRequest(engine, http.MethodPost, fmt.Sprintf("/tickets/%d/close", id), "", cookie, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPickerListings(t *testing.T) {
	engine, _ := setupRouter(t)
	cookie := login(t, engine, "admin", "admin")

	w := doRequest(engine, http.MethodGet, "/api/admins.json", "", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	var admins []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &admins))
	assert.Len(t, admins, 1)
	assert.Equal(t, "admin", admins[0]["username"])

	w = doRequest(engine, http.MethodGet, "/api/categories.json", "", cookie, true)
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Len(t, categories, 6)
	assert.Equal(t, "Hardware", categories[0]["categoryName"])
}
