//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/orderflow/internal/user/delivery/http"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
)

// InitializeHTTPHandler initializes the user HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*httpDelivery.UserHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewUserHandler,
	)
	return nil, nil
}
