package user

import (
	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/internal/user/repository"
)

// ProvideUserRepository provides the user repository
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}
