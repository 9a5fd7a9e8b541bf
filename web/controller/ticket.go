package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"schooldesk/database/model"
	"schooldesk/logger"
	"schooldesk/web/entity"
	"schooldesk/web/middleware"
	"schooldesk/web/service"
	"schooldesk/web/session"

	"github.com/gin-gonic/gin"
)

// TicketController handles the ticket pages and the JSON endpoints used by
// the ticket view page script.
type TicketController struct {
	ticketService   *service.TicketService
	categoryService *service.CategoryService
	userService     *service.UserService
}

func NewTicketController(g *gin.RouterGroup, ticketService *service.TicketService, categoryService *service.CategoryService, userService *service.UserService) *TicketController {
	a := &TicketController{
		ticketService:   ticketService,
		categoryService: categoryService,
		userService:     userService,
	}
	a.initRouter(g)
	return a
}

func (a *TicketController) initRouter(g *gin.RouterGroup) {
	authed := g.Group("", middleware.LoginRequired())
	authed.GET("/create_issue", a.createIssuePage)
	authed.POST("/create_issue", a.createIssue)

	admin := g.Group("", middleware.LoginRequired(), middleware.RoleRequired(model.RoleAdmin))
	admin.GET("/dashboard", a.dashboard)
	admin.GET("/tickets", a.allTickets)
	admin.GET("/tickets/:id", a.viewTicket)
	admin.GET("/tickets/:id/category", a.getCategory)
	admin.PUT("/tickets/:id/category", a.setCategory)
	admin.GET("/tickets/:id/assignee", a.getAssignee)
	admin.PUT("/tickets/:id/assignee", a.setAssignee)
	admin.POST("/tickets/:id/close", a.closeTicket)
	admin.GET("/api/admins.json", a.admins)
	admin.GET("/api/categories.json", a.categories)
}

// dashboard shows the viewing admin's tickets split into assigned-to-me and
// unassigned.
func (a *TicketController) dashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	tickets, err := a.ticketService.GetUserTickets(user.Username)
	if err != nil {
		logger.Error("load dashboard tickets:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	userTickets := make([]entity.TicketSummary, 0)
	unassignedTickets := make([]entity.TicketSummary, 0)
	for _, ticket := range tickets {
		if ticket.Assignee == nil {
			unassignedTickets = append(unassignedTickets, ticket)
		} else {
			userTickets = append(userTickets, ticket)
		}
	}

	html(c, "admin_dashboard.html", "Dashboard", gin.H{
		"user":              user,
		"userTickets":       userTickets,
		"unassignedTickets": unassignedTickets,
	})
}

// allTickets shows the unfiltered ticket listing.
func (a *TicketController) allTickets(c *gin.Context) {
	tickets, err := a.ticketService.GetAllTickets()
	if err != nil {
		logger.Error("load all tickets:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	html(c, "tickets.html", "All Tickets", gin.H{
		"user":    middleware.CurrentUser(c),
		"tickets": tickets,
	})
}

// viewTicket shows the full ticket record. Any admin may view any ticket
// regardless of assignment.
func (a *TicketController) viewTicket(c *gin.Context) {
	ticketId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	ticket, err := a.ticketService.GetTicketDetail(ticketId)
	if errors.Is(err, service.ErrTicketNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	} else if err != nil {
		logger.Error("load ticket detail:", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	html(c, "ticket_view.html", fmt.Sprintf("Ticket #%d", ticket.TicketId), gin.H{
		"user":   middleware.CurrentUser(c),
		"ticket": ticket,
	})
}

func (a *TicketController) createIssuePage(c *gin.Context) {
	html(c, "issue_submit.html", "Submit Issue", gin.H{
		"user": middleware.CurrentUser(c),
	})
}

// createIssue persists a submitted ticket and reports the assigned id, or the
// precise validation message, as a flash on the re-rendered form.
func (a *TicketController) createIssue(c *gin.Context) {
	user := middleware.CurrentUser(c)
	summary := c.PostForm("summary")
	description := c.PostForm("description")

	ticketId, err := a.ticketService.CreateTicket(summary, description, user.Username)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		session.AddFlash(c, verr.Msg)
	} else if err != nil {
		logger.Error("create ticket:", err)
		session.AddFlash(c, "An unknown error has occurred")
	} else {
		session.AddFlash(c, fmt.Sprintf("Issue #%d Submitted", ticketId))
	}

	html(c, "issue_submit.html", "Submit Issue", gin.H{
		"user": user,
	})
}

// ticketIdParam parses the :id path segment; a non-numeric id is a 404, the
// same way an unknown numeric id is.
func ticketIdParam(c *gin.Context) (int, bool) {
	ticketId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return 0, false
	}
	return ticketId, true
}

func (a *TicketController) getCategory(c *gin.Context) {
	ticketId, ok := ticketIdParam(c)
	if !ok {
		return
	}
	data, err := a.ticketService.GetCategory(ticketId)
	if errors.Is(err, service.ErrTicketNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return
	} else if err != nil {
		logger.Error("get ticket category:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}
	c.JSON(http.StatusOK, data)
}

// setCategory updates the ticket's category from a raw text body: the literal
// "null" clears it, anything else must be a category id. Responds with the
// same shape as getCategory.
func (a *TicketController) setCategory(c *gin.Context) {
	ticketId, ok := ticketIdParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	var categoryId *int
	raw := strings.TrimSpace(string(body))
	if raw != "null" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			pureJsonMsg(c, http.StatusBadRequest, false, "invalid category id")
			return
		}
		categoryId = &id
	}

	err = a.ticketService.SetCategory(ticketId, categoryId)
	switch {
	case errors.Is(err, service.ErrInvalidCategory):
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid category id")
		return
	case errors.Is(err, service.ErrTicketNotFound):
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return
	case err != nil:
		logger.Error("set ticket category:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}

	a.getCategory(c)
}

func (a *TicketController) getAssignee(c *gin.Context) {
	ticketId, ok := ticketIdParam(c)
	if !ok {
		return
	}
	data, err := a.ticketService.GetAssignee(ticketId)
	if errors.Is(err, service.ErrTicketNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return
	} else if err != nil {
		logger.Error("get ticket assignee:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}
	c.JSON(http.StatusOK, data)
}

// setAssignee updates the ticket's assignee from a raw text body: an empty
// body or the literal "null" clears it, anything else must be an existing
// username.
func (a *TicketController) setAssignee(c *gin.Context) {
	ticketId, ok := ticketIdParam(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid request body")
		return
	}

	var assignee *string
	raw := strings.TrimSpace(string(body))
	if raw != "" && raw != "null" {
		assignee = &raw
	}

	err = a.ticketService.SetAssignee(ticketId, assignee)
	switch {
	case errors.Is(err, service.ErrInvalidAssignee):
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid assignee")
		return
	case errors.Is(err, service.ErrTicketNotFound):
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return
	case err != nil:
		logger.Error("set ticket assignee:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}

	a.getAssignee(c)
}

// closeTicket permanently deletes the ticket and returns an empty object.
func (a *TicketController) closeTicket(c *gin.Context) {
	ticketId, ok := ticketIdParam(c)
	if !ok {
		return
	}

	err := a.ticketService.CloseTicket(ticketId)
	if errors.Is(err, service.ErrTicketNotFound) {
		pureJsonMsg(c, http.StatusNotFound, false, "no such ticket")
		return
	} else if err != nil {
		logger.Error("close ticket:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}

	logger.Infof("ticket #%d closed by %s", ticketId, middleware.CurrentUser(c).Username)
	c.JSON(http.StatusOK, gin.H{})
}

// admins lists admin usernames for the assignee picker.
func (a *TicketController) admins(c *gin.Context) {
	admins, err := a.userService.GetAdmins()
	if err != nil {
		logger.Error("list admins:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}
	c.JSON(http.StatusOK, admins)
}

// categories lists all categories for the category picker.
func (a *TicketController) categories(c *gin.Context) {
	categories, err := a.categoryService.GetAll()
	if err != nil {
		logger.Error("list categories:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, "An unknown error has occurred")
		return
	}
	c.JSON(http.StatusOK, categories)
}
