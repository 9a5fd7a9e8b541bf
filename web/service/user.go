package service

import (
	"errors"

	"schooldesk/database"
	"schooldesk/database/model"
	"schooldesk/logger"
	"schooldesk/util/crypto"
	"schooldesk/web/entity"

	"gorm.io/gorm"
)

// UserService is the credential store: it owns account lookup, signup, and
// password verification.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser returns the account with the exact, case-sensitive username.
func (s *UserService) GetUser(username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Where("username = ?", username).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser registers a new account. The password is hashed with argon2id
// before anything touches the store; plaintext is never persisted.
func (s *UserService) CreateUser(username string, password string, role model.Role) (*model.User, error) {
	if username == "" || len(username) > model.UsernameMaxLength {
		return nil, &ValidationError{Msg: "Please enter a valid username."}
	}
	if password == "" {
		return nil, &ValidationError{Msg: "Please enter a password."}
	}
	if !role.Valid() {
		return nil, &ValidationError{Msg: "Unknown role."}
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Role:         role,
		PasswordHash: hash,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUser
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies a username/password pair and returns the account on
// success. An unknown username and a wrong password are indistinguishable to
// the caller: both return nil.
func (s *UserService) CheckUser(username string, password string) *model.User {
	user, err := s.GetUser(username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			logger.Warning("check user err:", err)
		}
		return nil
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil
	}
	return user
}

// GetAdmins lists admin usernames in ascending order.
func (s *UserService) GetAdmins() ([]entity.AdminUser, error) {
	admins := make([]entity.AdminUser, 0)
	err := s.db.Model(&model.User{}).
		Select("username").
		Where("role = ?", model.RoleAdmin).
		Order("username ASC").
		Scan(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// UpdatePassword rehashes and stores a new password for an existing account.
// Used by the CLI to recover locked-out admins.
func (s *UserService) UpdatePassword(username string, password string) error {
	if password == "" {
		return &ValidationError{Msg: "Please enter a password."}
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("username = ?", username).
			Update("password_hash", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}
