package service

import (
	"strings"
	"testing"

	"schooldesk/database"
	"schooldesk/database/model"

	"github.com/stretchr/testify/assert"
)

func TestCreateTicket(t *testing.T) {
	setup()
	defer teardown()

	service := NewTicketService(database.GetDB())

	first, err := service.CreateTicket("Broken projector", "Room 204 projector shows no image.", "admin")
	assert.NoError(t, err)
	second, err := service.CreateTicket("Wifi down", "No wifi in the library.", "admin")
	assert.NoError(t, err)
	assert.Greater(t, second, first)

	detail, err := service.GetTicketDetail(first)
	assert.NoError(t, err)
	assert.Equal(t, "Broken projector", detail.Summary)
	assert.Equal(t, "Room 204 projector shows no image.", detail.Description)
	assert.Equal(t, "admin", detail.Creator)
	assert.Equal(t, model.RoleAdmin, detail.CreatorRole)
	assert.Nil(t, detail.CategoryId)
	assert.Nil(t, detail.Assignee)
}

func TestCreateTicketValidation(t *testing.T) {
	setup()
	defer teardown()

	service := NewTicketService(database.GetDB())

	var vErr *ValidationError

	_, err := service.CreateTicket("", "desc", "admin")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Please provide both a description and summary", vErr.Msg)

	_, err = service.CreateTicket("summary", "", "admin")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Please provide both a description and summary", vErr.Msg)

	longSummary := strings.Repeat("s", model.SummaryMaxLength+1)
	longDescription := strings.Repeat("d", model.DescriptionMaxLength+1)

	_, err = service.CreateTicket(longSummary, "desc", "admin")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Summary can be no longer than 127 characters", vErr.Msg)

	_, err = service.CreateTicket("summary", longDescription, "admin")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Description can be no longer than 65535 characters", vErr.Msg)

	_, err = service.CreateTicket(longSummary, longDescription, "admin")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Summary can be no longer than 127 characters and Description can be no longer than 65535 characters", vErr.Msg)

	// Exactly at the bounds is accepted
	_, err = service.CreateTicket(strings.Repeat("s", model.SummaryMaxLength),
		strings.Repeat("d", model.DescriptionMaxLength), "admin")
	assert.NoError(t, err)
}

func TestTicketCategory(t *testing.T) {
	setup()
	defer teardown()

	service := NewTicketService(database.GetDB())
	id, err := service.CreateTicket("Broken projector", "No image.", "admin")
	assert.NoError(t, err)

	cat, err := service.GetCategory(id)
	assert.NoError(t, err)
	assert.Nil(t, cat.CategoryId)
	assert.Nil(t, cat.CategoryName)

	// Category 1 comes from the default seed
	one := 1
	err = service.SetCategory(id, &one)
	assert.NoError(t, err)
	cat, err = service.GetCategory(id)
	assert.NoError(t, err)
	assert.Equal(t, 1, *cat.CategoryId)
	assert.Equal(t, "Hardware", *cat.CategoryName)

	// Unknown category leaves the ticket unchanged
	bogus := 999
	err = service.SetCategory(id, &bogus)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	cat, _ = service.GetCategory(id)
	assert.Equal(t, 1, *cat.CategoryId)

	// nil clears
	err = service.SetCategory(id, nil)
	assert.NoError(t, err)
	cat, _ = service.GetCategory(id)
	assert.Nil(t, cat.CategoryId)
	assert.Nil(t, cat.CategoryName)

	err = service.SetCategory(12345, &one)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	_, err = service.GetCategory(12345)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketAssignee(t *testing.T) {
	setup()
	defer teardown()

	db := database.GetDB()
	service := NewTicketService(db)
	id, err := service.CreateTicket("Wifi down", "No wifi in the library.", "admin")
	assert.NoError(t, err)

	assignee, err := service.GetAssignee(id)
	assert.NoError(t, err)
	assert.Nil(t, assignee.Username)

	admin := "admin"
	err = service.SetAssignee(id, &admin)
	assert.NoError(t, err)
	assignee, err = service.GetAssignee(id)
	assert.NoError(t, err)
	assert.Equal(t, "admin", *assignee.Username)

	// Unknown user leaves the ticket unchanged
	nobody := "nobody"
	err = service.SetAssignee(id, &nobody)
	assert.ErrorIs(t, err, ErrInvalidAssignee)
	assignee, _ = service.GetAssignee(id)
	assert.Equal(t, "admin", *assignee.Username)

	err = service.SetAssignee(id, nil)
	assert.NoError(t, err)
	assignee, _ = service.GetAssignee(id)
	assert.Nil(t, assignee.Username)

	err = service.SetAssignee(12345, &admin)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGetUserTickets(t *testing.T) {
	setup()
	defer teardown()

	db := database.GetDB()
	userService := NewUserService(db)
	service := NewTicketService(db)

	_, err := userService.CreateUser("helper", "pw", model.RoleAdmin)
	assert.NoError(t, err)

	mine, err := service.CreateTicket("Mine", "Assigned to admin.", "admin")
	assert.NoError(t, err)
	theirs, err := service.CreateTicket("Theirs", "Assigned to helper.", "admin")
	assert.NoError(t, err)
	unassigned, err := service.CreateTicket("Unassigned", "Nobody yet.", "admin")
	assert.NoError(t, err)

	admin, helper := "admin", "helper"
	assert.NoError(t, service.SetAssignee(mine, &admin))
	assert.NoError(t, service.SetAssignee(theirs, &helper))

	tickets, err := service.GetUserTickets("admin")
	assert.NoError(t, err)
	ids := make([]int, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.TicketId)
	}
	assert.Equal(t, []int{mine, unassigned}, ids)

	all, err := service.GetAllTickets()
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCloseTicket(t *testing.T) {
	setup()
	defer teardown()

	service := NewTicketService(database.GetDB())
	id, err := service.CreateTicket("Short lived", "Will be closed.", "admin")
	assert.NoError(t, err)

	err = service.CloseTicket(id)
	assert.NoError(t, err)

	_, err = service.GetTicketDetail(id)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	err = service.CloseTicket(id)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCategoryService(t *testing.T) {
	setup()
	defer teardown()

	service := NewCategoryService(database.GetDB())
	categories, err := service.GetAll()
	assert.NoError(t, err)
	assert.Len(t, categories, 6)
	assert.Equal(t, "Hardware", categories[0].Name)
}
