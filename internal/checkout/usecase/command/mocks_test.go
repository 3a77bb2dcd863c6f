package command

import (
	"context"
	"time"

	"github.com/tair/orderflow/internal/checkout/domain"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/kafka"
)

// memStockRepository is an in-memory stock ledger with the same
// conditional-reserve semantics as the gorm implementation.
type memStockRepository struct {
	nextID    uint
	items     map[uint]*stockdomain.StockItem
	bySKU     map[string]uint
	movements []stockdomain.StockMovement

	reserveErr map[uint]error
	adjustErr  map[uint]error
}

func newMemStockRepository() *memStockRepository {
	return &memStockRepository{
		items:      make(map[uint]*stockdomain.StockItem),
		bySKU:      make(map[string]uint),
		reserveErr: make(map[uint]error),
		adjustErr:  make(map[uint]error),
	}
}

func (r *memStockRepository) add(sku string, quantity int) uint {
	r.nextID++
	r.items[r.nextID] = &stockdomain.StockItem{ID: r.nextID, SKU: sku, Quantity: quantity}
	r.bySKU[sku] = r.nextID
	return r.nextID
}

func (r *memStockRepository) quantity(sku string) int {
	return r.items[r.bySKU[sku]].Quantity
}

func (r *memStockRepository) CreateWithInitialMovement(item *stockdomain.StockItem, reason string) error {
	if _, ok := r.bySKU[item.SKU]; ok {
		return stockdomain.ErrDuplicateStock
	}
	item.ID = r.add(item.SKU, item.Quantity)
	r.movements = append(r.movements, stockdomain.StockMovement{
		StockItemID: item.ID,
		Type:        stockdomain.MovementIn,
		Quantity:    item.Quantity,
		Reason:      reason,
	})
	return nil
}

func (r *memStockRepository) FindByID(id uint) (*stockdomain.StockItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, stockdomain.ErrStockItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *memStockRepository) FindBySKU(sku string) (*stockdomain.StockItem, error) {
	id, ok := r.bySKU[sku]
	if !ok {
		return nil, stockdomain.ErrStockItemNotFound
	}
	return r.FindByID(id)
}

func (r *memStockRepository) FindAll(limit, offset int) ([]stockdomain.StockItem, error) {
	var items []stockdomain.StockItem
	for _, item := range r.items {
		items = append(items, *item)
	}
	return items, nil
}

func (r *memStockRepository) Adjust(stockItemID uint, delta int, reason string) (*stockdomain.StockItem, error) {
	if err := r.adjustErr[stockItemID]; err != nil {
		return nil, err
	}
	item, ok := r.items[stockItemID]
	if !ok {
		return nil, stockdomain.ErrStockItemNotFound
	}
	item.Quantity += delta

	movementType := stockdomain.MovementIn
	magnitude := delta
	if delta < 0 {
		movementType = stockdomain.MovementOut
		magnitude = -delta
	}
	r.movements = append(r.movements, stockdomain.StockMovement{
		StockItemID: stockItemID,
		Type:        movementType,
		Quantity:    magnitude,
		Reason:      reason,
	})

	copied := *item
	return &copied, nil
}

func (r *memStockRepository) Reserve(stockItemID uint, quantity int, reason string) (*stockdomain.StockItem, error) {
	if err := r.reserveErr[stockItemID]; err != nil {
		return nil, err
	}
	item, ok := r.items[stockItemID]
	if !ok {
		return nil, stockdomain.ErrStockItemNotFound
	}
	if item.Quantity < quantity {
		return nil, stockdomain.ErrInsufficientStock
	}
	item.Quantity -= quantity
	r.movements = append(r.movements, stockdomain.StockMovement{
		StockItemID: stockItemID,
		Type:        stockdomain.MovementOut,
		Quantity:    quantity,
		Reason:      reason,
	})
	copied := *item
	return &copied, nil
}

func (r *memStockRepository) ListMovements(stockItemID uint) ([]stockdomain.StockMovement, error) {
	var movements []stockdomain.StockMovement
	for _, m := range r.movements {
		if m.StockItemID == stockItemID {
			movements = append(movements, m)
		}
	}
	return movements, nil
}

// memOrderRepository stores orders in memory
type memOrderRepository struct {
	nextID uint
	orders map[uint]*orderdomain.Order

	createErr      error
	findPendingErr error
	updateErr      map[uint]error
}

func newMemOrderRepository() *memOrderRepository {
	return &memOrderRepository{
		orders:    make(map[uint]*orderdomain.Order),
		updateErr: make(map[uint]error),
	}
}

func (r *memOrderRepository) CreateWithItems(order *orderdomain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	order.ID = r.nextID
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = append([]orderdomain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &stored
	return nil
}

func (r *memOrderRepository) FindByID(id uint) (*orderdomain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, orderdomain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepository) FindByPublicID(publicID string, userID uint) (*orderdomain.Order, error) {
	for _, order := range r.orders {
		if order.PublicID == publicID && order.UserID == userID {
			copied := *order
			copied.Items = append([]orderdomain.OrderItem(nil), order.Items...)
			return &copied, nil
		}
	}
	return nil, orderdomain.ErrOrderNotFound
}

func (r *memOrderRepository) FindByUser(userID uint, limit, offset int) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *memOrderRepository) FindAll(limit, offset int) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	for _, order := range r.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *memOrderRepository) FindPendingWithItems() ([]orderdomain.Order, error) {
	if r.findPendingErr != nil {
		return nil, r.findPendingErr
	}
	var orders []orderdomain.Order
	for _, order := range r.orders {
		if order.Status == orderdomain.StatusPending {
			copied := *order
			copied.Items = append([]orderdomain.OrderItem(nil), order.Items...)
			orders = append(orders, copied)
		}
	}
	return orders, nil
}

func (r *memOrderRepository) UpdateStatusFields(orderID uint, fields map[string]interface{}) error {
	if err := r.updateErr[orderID]; err != nil {
		return err
	}
	order, ok := r.orders[orderID]
	if !ok {
		return orderdomain.ErrOrderNotFound
	}
	if v, ok := fields["status"]; ok {
		order.Status = v.(string)
	}
	if v, ok := fields["payment_status"]; ok {
		order.PaymentStatus = v.(string)
	}
	if v, ok := fields["payment_method"]; ok {
		order.PaymentMethod = v.(string)
	}
	if v, ok := fields["payment_session_id"]; ok {
		order.PaymentSessionID = v.(string)
	}
	if v, ok := fields["notes"]; ok {
		order.Notes = v.(string)
	}
	return nil
}

func (r *memOrderRepository) DeleteWithItems(orderID uint) error {
	if _, ok := r.orders[orderID]; !ok {
		return orderdomain.ErrOrderNotFound
	}
	delete(r.orders, orderID)
	return nil
}

// memUserRepository stores users in memory
type memUserRepository struct {
	users map[uint]*userdomain.User
}

func newMemUserRepository(users ...*userdomain.User) *memUserRepository {
	repo := &memUserRepository{users: make(map[uint]*userdomain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepository) Create(user *userdomain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepository) FindByID(id uint) (*userdomain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, userdomain.ErrUserNotFound
	}
	return user, nil
}

func (r *memUserRepository) FindByUsername(username string) (*userdomain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, userdomain.ErrUserNotFound
}

func (r *memUserRepository) FindByEmail(email string) (*userdomain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, userdomain.ErrUserNotFound
}

func (r *memUserRepository) Update(user *userdomain.User) error {
	r.users[user.ID] = user
	return nil
}

// stubCatalog resolves units from a fixed map
type stubCatalog struct {
	units map[string]*domain.UnitSnapshot
}

func (c *stubCatalog) ResolveUnit(ctx context.Context, sku string) (*domain.UnitSnapshot, error) {
	unit, ok := c.units[sku]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return unit, nil
}

// stubPayment returns a fixed verification result
type stubPayment struct {
	result *domain.PaymentVerification
	err    error
}

func (p *stubPayment) VerifyPaymentStatus(ctx context.Context, sessionID string) (*domain.PaymentVerification, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

// stubEvents records published events
type stubEvents struct {
	published []kafka.OrderEvent
	err       error
}

func (e *stubEvents) PublishOrderEvent(ctx context.Context, event kafka.OrderEvent) error {
	if e.err != nil {
		return e.err
	}
	e.published = append(e.published, event)
	return nil
}
