package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/orderflow/internal/stock/domain"
)

// fakeRepository mirrors the ledger semantics of the gorm repository:
// every quantity change writes a movement.
type fakeRepository struct {
	nextID    uint
	items     map[uint]*domain.StockItem
	bySKU     map[string]uint
	movements []domain.StockMovement
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		items: make(map[uint]*domain.StockItem),
		bySKU: make(map[string]uint),
	}
}

func (r *fakeRepository) CreateWithInitialMovement(item *domain.StockItem, reason string) error {
	if _, ok := r.bySKU[item.SKU]; ok {
		return domain.ErrDuplicateStock
	}
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	r.bySKU[item.SKU] = item.ID
	r.movements = append(r.movements, domain.StockMovement{
		StockItemID: item.ID,
		Type:        domain.MovementIn,
		Quantity:    item.Quantity,
		Reason:      reason,
	})
	return nil
}

func (r *fakeRepository) FindByID(id uint) (*domain.StockItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrStockItemNotFound
	}
	return item, nil
}

func (r *fakeRepository) FindBySKU(sku string) (*domain.StockItem, error) {
	id, ok := r.bySKU[sku]
	if !ok {
		return nil, domain.ErrStockItemNotFound
	}
	return r.items[id], nil
}

func (r *fakeRepository) FindAll(limit, offset int) ([]domain.StockItem, error) {
	var items []domain.StockItem
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, nil
}

func (r *fakeRepository) Adjust(stockItemID uint, delta int, reason string) (*domain.StockItem, error) {
	item, ok := r.items[stockItemID]
	if !ok {
		return nil, domain.ErrStockItemNotFound
	}
	item.Quantity += delta

	movementType := domain.MovementIn
	magnitude := delta
	if delta < 0 {
		movementType = domain.MovementOut
		magnitude = -delta
	}
	r.movements = append(r.movements, domain.StockMovement{
		StockItemID: stockItemID,
		Type:        movementType,
		Quantity:    magnitude,
		Reason:      reason,
	})
	return item, nil
}

func (r *fakeRepository) Reserve(stockItemID uint, quantity int, reason string) (*domain.StockItem, error) {
	item, ok := r.items[stockItemID]
	if !ok {
		return nil, domain.ErrStockItemNotFound
	}
	if item.Quantity < quantity {
		return nil, domain.ErrInsufficientStock
	}
	return r.Adjust(stockItemID, -quantity, reason)
}

func (r *fakeRepository) ListMovements(stockItemID uint) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	for _, m := range r.movements {
		if m.StockItemID == stockItemID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

func TestCreateInitialStock(t *testing.T) {
	t.Run("creates item with opening movement", func(t *testing.T) {
		repo := newFakeRepository()
		handler := NewCreateInitialStockHandler(repo)

		item, err := handler.Handle(CreateInitialStockCommand{SKU: "MUG-01", Quantity: 50})

		require.NoError(t, err)
		assert.Equal(t, 50, item.Quantity)

		movements, _ := repo.ListMovements(item.ID)
		require.Len(t, movements, 1)
		assert.Equal(t, domain.MovementIn, movements[0].Type)
		assert.Equal(t, 50, movements[0].Quantity)
		assert.Equal(t, domain.ReasonInitialStock, movements[0].Reason)
	})

	t.Run("rejects duplicate sku", func(t *testing.T) {
		repo := newFakeRepository()
		handler := NewCreateInitialStockHandler(repo)

		_, err := handler.Handle(CreateInitialStockCommand{SKU: "MUG-01", Quantity: 50})
		require.NoError(t, err)

		_, err = handler.Handle(CreateInitialStockCommand{SKU: "MUG-01", Quantity: 10})
		assert.ErrorIs(t, err, domain.ErrDuplicateStock)
	})

	t.Run("rejects negative quantity and missing sku", func(t *testing.T) {
		handler := NewCreateInitialStockHandler(newFakeRepository())

		_, err := handler.Handle(CreateInitialStockCommand{SKU: "MUG-01", Quantity: -1})
		assert.Error(t, err)

		_, err = handler.Handle(CreateInitialStockCommand{Quantity: 5})
		assert.Error(t, err)
	})
}

func TestAdjustStock(t *testing.T) {
	setup := func(t *testing.T) (*AdjustStockHandler, *fakeRepository, uint) {
		t.Helper()
		repo := newFakeRepository()
		item := &domain.StockItem{SKU: "MUG-01", Quantity: 10}
		require.NoError(t, repo.CreateWithInitialMovement(item, domain.ReasonInitialStock))
		return NewAdjustStockHandler(repo), repo, item.ID
	}

	t.Run("positive delta records an IN movement", func(t *testing.T) {
		handler, repo, id := setup(t)

		item, err := handler.Handle(AdjustStockCommand{StockItemID: id, Delta: 5, Reason: "restock"})

		require.NoError(t, err)
		assert.Equal(t, 15, item.Quantity)

		movements, _ := repo.ListMovements(id)
		last := movements[len(movements)-1]
		assert.Equal(t, domain.MovementIn, last.Type)
		assert.Equal(t, 5, last.Quantity)
		assert.Equal(t, "restock", last.Reason)
	})

	t.Run("negative delta records an OUT movement with magnitude", func(t *testing.T) {
		handler, repo, id := setup(t)

		item, err := handler.Handle(AdjustStockCommand{StockItemID: id, Delta: -4})

		require.NoError(t, err)
		assert.Equal(t, 6, item.Quantity)

		movements, _ := repo.ListMovements(id)
		last := movements[len(movements)-1]
		assert.Equal(t, domain.MovementOut, last.Type)
		assert.Equal(t, 4, last.Quantity)
		assert.Equal(t, domain.ReasonManualAdjustment, last.Reason)
	})

	t.Run("rejects zero delta", func(t *testing.T) {
		handler, _, id := setup(t)

		_, err := handler.Handle(AdjustStockCommand{StockItemID: id, Delta: 0})
		assert.Error(t, err)
	})

	t.Run("unknown item", func(t *testing.T) {
		handler, _, _ := setup(t)

		_, err := handler.Handle(AdjustStockCommand{StockItemID: 99, Delta: 1})
		assert.ErrorIs(t, err, domain.ErrStockItemNotFound)
	})
}
