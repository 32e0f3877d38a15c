// services/user_service.go
package services

import (
	"github.com/wfunc/drawbot/models"
	"github.com/wfunc/drawbot/persistence"
)

// UserService keeps the user table in step with whoever talks to the
// bot and gates banned users out of every command path.
type UserService struct {
	store persistence.Store
}

func NewUserService(store persistence.Store) *UserService {
	return &UserService{store: store}
}

// Touch gets or creates the user record for a chat participant.
func (s *UserService) Touch(telegramID int64) (*models.User, bool, error) {
	return s.store.GetOrCreateUser(telegramID)
}

// Authorize reports whether the participant may use the bot. Storage
// failures deny: a command path that cannot check the ban flag should
// not proceed.
func (s *UserService) Authorize(telegramID int64) bool {
	user, _, err := s.store.GetOrCreateUser(telegramID)
	if err != nil {
		return false
	}
	return !user.Banned
}
