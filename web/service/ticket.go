package service

import (
	"fmt"

	"schooldesk/database/model"
	"schooldesk/web/entity"

	"gorm.io/gorm"
)

// TicketService is the ticket repository: creation, listing joined with
// category and creator role, triage mutations, and closing. Every mutation
// runs inside a single transaction.
type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

// validateTicketBounds checks the length bounds before any write. The sqlite
// backend would silently accept oversized text, so the service is the place
// that enforces the limits and produces the exact user-facing message.
func validateTicketBounds(summary string, description string) error {
	summaryLong := len(summary) > model.SummaryMaxLength
	descriptionLong := len(description) > model.DescriptionMaxLength
	switch {
	case summaryLong && descriptionLong:
		return &ValidationError{Msg: fmt.Sprintf(
			"Summary can be no longer than %d characters and Description can be no longer than %d characters",
			model.SummaryMaxLength, model.DescriptionMaxLength)}
	case summaryLong:
		return &ValidationError{Msg: fmt.Sprintf(
			"Summary can be no longer than %d characters", model.SummaryMaxLength)}
	case descriptionLong:
		return &ValidationError{Msg: fmt.Sprintf(
			"Description can be no longer than %d characters", model.DescriptionMaxLength)}
	}
	return nil
}

// CreateTicket validates bounds, persists the ticket, and returns the newly
// assigned sequential id from the same transaction.
func (s *TicketService) CreateTicket(summary string, description string, creator string) (int, error) {
	if summary == "" || description == "" {
		return 0, &ValidationError{Msg: "Please provide both a description and summary"}
	}
	if err := validateTicketBounds(summary, description); err != nil {
		return 0, err
	}

	ticket := &model.Ticket{
		Summary:     summary,
		Description: description,
		Creator:     creator,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(ticket).Error
	})
	if err != nil {
		return 0, err
	}
	return ticket.TicketId, nil
}

// summaryQuery builds the shared listing join: tickets with the category name
// and the creator's role.
func (s *TicketService) summaryQuery() *gorm.DB {
	return s.db.Table("tickets").
		Select("tickets.ticket_id, tickets.summary, categories.category_id AS category_id, " +
			"categories.name AS category_name, tickets.creator, users.role AS creator_role, tickets.assignee").
		Joins("INNER JOIN users ON tickets.creator = users.username").
		Joins("LEFT JOIN categories ON tickets.category_id = categories.category_id")
}

// GetUserTickets returns every ticket assigned to username or unassigned,
// ordered by ticket id ascending. This feeds the admin dashboard.
func (s *TicketService) GetUserTickets(username string) ([]entity.TicketSummary, error) {
	tickets := make([]entity.TicketSummary, 0)
	err := s.summaryQuery().
		Where("tickets.assignee = ? OR tickets.assignee IS NULL", username).
		Order("tickets.ticket_id ASC").
		Scan(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetAllTickets returns every ticket, ordered by ticket id ascending.
func (s *TicketService) GetAllTickets() ([]entity.TicketSummary, error) {
	tickets := make([]entity.TicketSummary, 0)
	err := s.summaryQuery().
		Order("tickets.ticket_id ASC").
		Scan(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicketDetail returns the full record including the description.
func (s *TicketService) GetTicketDetail(ticketId int) (*entity.TicketDetail, error) {
	details := make([]entity.TicketDetail, 0, 1)
	err := s.db.Table("tickets").
		Select("tickets.ticket_id, tickets.summary, tickets.description, "+
			"categories.category_id AS category_id, categories.name AS category_name, "+
			"tickets.creator, users.role AS creator_role, tickets.assignee").
		Joins("INNER JOIN users ON tickets.creator = users.username").
		Joins("LEFT JOIN categories ON tickets.category_id = categories.category_id").
		Where("tickets.ticket_id = ?", ticketId).
		Scan(&details).Error
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrTicketNotFound
	}
	return &details[0], nil
}

// SetCategory updates the ticket's category; nil clears it. A category id
// that does not reference an existing category fails with ErrInvalidCategory
// and leaves the ticket unchanged.
func (s *TicketService) SetCategory(ticketId int, categoryId *int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Ticket{}).Where("ticket_id = ?", ticketId).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTicketNotFound
		}
		if categoryId != nil {
			if err := tx.Model(&model.Category{}).Where("category_id = ?", *categoryId).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrInvalidCategory
			}
		}
		return tx.Model(&model.Ticket{}).
			Where("ticket_id = ?", ticketId).
			Update("category_id", categoryId).Error
	})
}

// GetCategory returns the ticket's category id and name, both null when the
// ticket has no category.
func (s *TicketService) GetCategory(ticketId int) (*entity.TicketCategory, error) {
	rows := make([]entity.TicketCategory, 0, 1)
	err := s.db.Table("tickets").
		Select("categories.category_id AS category_id, categories.name AS category_name").
		Joins("LEFT JOIN categories ON tickets.category_id = categories.category_id").
		Where("tickets.ticket_id = ?", ticketId).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTicketNotFound
	}
	return &rows[0], nil
}

// SetAssignee updates the ticket's assignee; nil clears it. A username that
// does not reference an existing user fails with ErrInvalidAssignee and
// leaves the ticket unchanged.
func (s *TicketService) SetAssignee(ticketId int, assignee *string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Ticket{}).Where("ticket_id = ?", ticketId).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTicketNotFound
		}
		if assignee != nil {
			if err := tx.Model(&model.User{}).Where("username = ?", *assignee).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrInvalidAssignee
			}
		}
		return tx.Model(&model.Ticket{}).
			Where("ticket_id = ?", ticketId).
			Update("assignee", assignee).Error
	})
}

// GetAssignee returns the ticket's assignee, null when unassigned.
func (s *TicketService) GetAssignee(ticketId int) (*entity.TicketAssignee, error) {
	rows := make([]entity.TicketAssignee, 0, 1)
	err := s.db.Table("tickets").
		Select("tickets.assignee AS username").
		Where("tickets.ticket_id = ?", ticketId).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrTicketNotFound
	}
	return &rows[0], nil
}

// CloseTicket permanently deletes the ticket. Closing a ticket that does not
// exist reports ErrTicketNotFound rather than succeeding silently.
func (s *TicketService) CloseTicket(ticketId int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("ticket_id = ?", ticketId).Delete(&model.Ticket{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketNotFound
		}
		return nil
	})
}
