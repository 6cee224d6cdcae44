package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"kanban/internal/database"
)

var ErrNotFound = errors.New("user not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(user *database.User) error {
	user.Email = strings.ToLower(user.Email)

	result := s.db.Create(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *Service) GetByID(userID uint) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Service) GetByEmail(email string) (*database.User, error) {
	var user database.User

	result := s.db.First(&user, "email = ?", strings.ToLower(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *Service) List() ([]database.User, error) {
	var users []database.User

	result := s.db.Order("id ASC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

// SetRefreshTokenID stores the jti of the newly minted refresh token,
// invalidating whichever one was stored before.
func (s *Service) SetRefreshTokenID(user *database.User, jti string) error {
	user.RefreshTokenID = &jti

	result := s.db.Model(user).Update("refresh_token_id", jti)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (s *Service) ClearRefreshTokenID(user *database.User) error {
	user.RefreshTokenID = nil

	result := s.db.Model(user).Update("refresh_token_id", nil)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
