// Package entity defines data structures used by the web layer of the
// schooldesk panel.
package entity

import (
	"math"
	"net"
	"strings"
	"time"

	"schooldesk/database/model"
	"schooldesk/util/common"
)

// Msg represents a standard API response with success status, message text,
// and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// TicketSummary is one row of a ticket listing: the ticket joined with its
// category name and the creator's role. Nullable columns stay nil when the
// ticket has no category or assignee.
type TicketSummary struct {
	TicketId     int        `json:"ticketId" gorm:"column:ticket_id"`
	Summary      string     `json:"summary" gorm:"column:summary"`
	CategoryId   *int       `json:"categoryId" gorm:"column:category_id"`
	CategoryName *string    `json:"categoryName" gorm:"column:category_name"`
	Creator      string     `json:"creator" gorm:"column:creator"`
	CreatorRole  model.Role `json:"creatorRole" gorm:"column:creator_role"`
	Assignee     *string    `json:"assignee" gorm:"column:assignee"`
}

// TicketDetail is the full ticket record shown on the ticket view page.
type TicketDetail struct {
	TicketSummary
	Description string `json:"description" gorm:"column:description"`
}

// TicketCategory is the wire shape of the category endpoints. Both fields are
// null when the ticket has no category.
type TicketCategory struct {
	CategoryId   *int    `json:"categoryId" gorm:"column:category_id"`
	CategoryName *string `json:"categoryName" gorm:"column:category_name"`
}

// TicketAssignee is the wire shape of the assignee endpoints; Username is
// null when the ticket is unassigned.
type TicketAssignee struct {
	Username *string `json:"username" gorm:"column:username"`
}

// AdminUser is one element of the admins.json listing.
type AdminUser struct {
	Username string `json:"username" gorm:"column:username"`
}

// AllSetting carries the persisted panel settings.
type AllSetting struct {
	WebListen     string `json:"webListen" form:"webListen"`
	WebPort       int    `json:"webPort" form:"webPort"`
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // minutes
	TimeLocation  string `json:"timeLocation" form:"timeLocation"`
}

// CheckValid validates the settings and normalizes the base path.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not valid ip:", s.WebListen)
		}
	}

	if s.WebPort <= 0 || s.WebPort > math.MaxUint16 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}

	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}

	if s.SessionMaxAge <= 0 {
		return common.NewError("session max age must be positive:", s.SessionMaxAge)
	}

	if _, err := time.LoadLocation(s.TimeLocation); err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}

	return nil
}
