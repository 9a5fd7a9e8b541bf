// Package model defines the persisted entities of the schooldesk panel.
package model

// Field length bounds shared by service validation and form handling. The
// sqlite backend does not enforce varchar sizes, so these are checked before
// any write.
const (
	UsernameMaxLength    = 89
	SummaryMaxLength     = 127
	DescriptionMaxLength = 65535
)

// Role is a closed set of user roles. Authorization compares roles by tag
// equality, never by ordering.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole maps a raw string onto a Role, reporting whether it is one of the
// three known tags.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleStudent, RoleTeacher:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User is a panel account. The username is the identity and never changes
// after signup.
type User struct {
	Username     string `json:"username" gorm:"primaryKey;size:89"`
	Role         Role   `json:"role" gorm:"size:16;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
}

// Category is externally seeded reference data; the panel only reads it.
type Category struct {
	CategoryId int    `json:"categoryId" gorm:"primaryKey;autoIncrement;column:category_id"`
	Name       string `json:"categoryName" gorm:"size:64;not null"`
}

// Ticket is a reported issue. Creator is required and immutable; category and
// assignee are optional and cleared by storing NULL. Closing a ticket deletes
// the row outright.
type Ticket struct {
	TicketId    int     `json:"ticketId" gorm:"primaryKey;autoIncrement;column:ticket_id"`
	Summary     string  `json:"summary" gorm:"size:127;not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Creator     string  `json:"creator" gorm:"size:89;not null"`
	CategoryId  *int    `json:"categoryId" gorm:"column:category_id"`
	Assignee    *string `json:"assignee" gorm:"size:89"`

	CreatorUser  *User     `json:"-" gorm:"foreignKey:Creator;references:Username"`
	AssigneeUser *User     `json:"-" gorm:"foreignKey:Assignee;references:Username"`
	Category     *Category `json:"-" gorm:"foreignKey:CategoryId;references:CategoryId"`
}

// Setting is a persisted key/value panel setting.
type Setting struct {
	Id    int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" gorm:"uniqueIndex;size:64;not null"`
	Value string `json:"value" gorm:"type:text"`
}
