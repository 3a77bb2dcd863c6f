package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/stock/domain"
)

type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockItem{}, &domain.StockMovement{})
}

func (r *GormStockRepository) CreateWithInitialMovement(item *domain.StockItem, reason string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.StockItem
		err := tx.Where("sku = ?", item.SKU).First(&existing).Error
		if err == nil {
			return domain.ErrDuplicateStock
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(item).Error; err != nil {
			return err
		}

		movement := domain.StockMovement{
			StockItemID: item.ID,
			Type:        domain.MovementIn,
			Quantity:    item.Quantity,
			Reason:      reason,
		}
		return tx.Create(&movement).Error
	})
}

func (r *GormStockRepository) FindByID(id uint) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStockItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormStockRepository) FindBySKU(sku string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := r.db.Where("sku = ?", sku).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStockItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormStockRepository) FindAll(limit, offset int) ([]domain.StockItem, error) {
	var items []domain.StockItem
	err := r.db.Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

// Adjust applies a signed delta and the matching movement in one transaction.
// The delta is applied unconditionally; sufficiency checks belong to callers.
func (r *GormStockRepository) Adjust(stockItemID uint, delta int, reason string) (*domain.StockItem, error) {
	var item domain.StockItem

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, stockItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrStockItemNotFound
			}
			return err
		}

		result := tx.Model(&domain.StockItem{}).
			Where("id = ?", stockItemID).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if result.Error != nil {
			return result.Error
		}

		movementType := domain.MovementIn
		magnitude := delta
		if delta < 0 {
			movementType = domain.MovementOut
			magnitude = -delta
		}

		movement := domain.StockMovement{
			StockItemID: stockItemID,
			Type:        movementType,
			Quantity:    magnitude,
			Reason:      reason,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		item.Quantity += delta
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Reserve performs a conditional decrement: the quantity is reduced only
// when the row still covers the requested amount, so two racing
// reservations can never drive it negative.
func (r *GormStockRepository) Reserve(stockItemID uint, quantity int, reason string) (*domain.StockItem, error) {
	var item domain.StockItem

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.StockItem{}).
			Where("id = ? AND quantity >= ?", stockItemID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Either the item is gone or the remaining quantity is short
			if err := tx.First(&domain.StockItem{}, stockItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrStockItemNotFound
				}
				return err
			}
			return domain.ErrInsufficientStock
		}

		movement := domain.StockMovement{
			StockItemID: stockItemID,
			Type:        domain.MovementOut,
			Quantity:    quantity,
			Reason:      reason,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		return tx.First(&item, stockItemID).Error
	})
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *GormStockRepository) ListMovements(stockItemID uint) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := r.db.Where("stock_item_id = ?", stockItemID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, err
}
