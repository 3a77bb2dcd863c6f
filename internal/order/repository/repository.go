package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/order/domain"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.OrderItem{})
}

// CreateWithItems persists the order header first and then the item batch
// referencing the generated id, inside one transaction.
func (r *GormOrderRepository) CreateWithItems(order *domain.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil

		if err := tx.Create(order).Error; err != nil {
			order.Items = items
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				order.Items = items
				return err
			}
		}

		order.Items = items
		return nil
	})
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByPublicID(publicID string, userID uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.Where("public_id = ? AND user_id = ?", publicID, userID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByUser(userID uint, limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *GormOrderRepository) FindAll(limit, offset int) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *GormOrderRepository) FindPendingWithItems() ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.Where("status = ?", domain.StatusPending).Find(&orders).Error
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *GormOrderRepository) UpdateStatusFields(orderID uint, fields map[string]interface{}) error {
	result := r.db.Model(&domain.Order{}).Where("id = ?", orderID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeleteWithItems removes the item batch and then the order header.
// The cascade is explicit; nothing relies on database-level cascades.
func (r *GormOrderRepository) DeleteWithItems(orderID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Order{}, orderID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) loadItems(order *domain.Order) error {
	return r.db.Where("order_id = ?", order.ID).
		Order("id ASC").
		Find(&order.Items).Error
}
