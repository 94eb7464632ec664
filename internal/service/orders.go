package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/internal/validation"
)

var validStatuses = []models.OrderStatus{
	models.OrderPending, models.OrderConfirmed, models.OrderShipped, models.OrderDelivered, models.OrderCancelled,
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"gt=0"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"            validate:"required,min=1,dive"`
	ShippingAddress *models.Address    `json:"shipping_address" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type OrderFilter struct {
	UserID string
	Status string
	Page   int
	Size   int
}

// OrderService keeps orders and product stock consistent. Placement and
// cancellation are serialized so an order and its stock moves are observed
// together.
type OrderService struct {
	Orders   repo.Repository[models.Order]
	Products repo.Repository[models.Product]
	Events   mykafka.Publisher
	Now      func() time.Time
	// Stock, when set, is shared with CatalogService so product deletion
	// cannot interleave with placement.
	Stock sync.Locker

	mu sync.Mutex
}

// lock takes the stock lock and returns its release.
func (s *OrderService) lock() func() {
	l := s.Stock
	if l == nil {
		l = &s.mu
	}
	l.Lock()
	return l.Unlock
}

func (s *OrderService) List(ctx context.Context, f OrderFilter) ([]models.Order, util.Meta, error) {
	if f.Status != "" && !models.OrderStatus(f.Status).Valid() {
		return nil, util.Meta{}, invalidStatus()
	}

	all, err := s.Orders.List(ctx)
	if err != nil {
		return nil, util.Meta{}, err
	}
	items := make([]models.Order, 0, len(all))
	for _, o := range all {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		items = append(items, o)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	return util.Page(items, f.Page, f.Size), util.NewMeta(f.Page, f.Size, int64(len(items))), nil
}

func (s *OrderService) Get(ctx context.Context, who auth.Identity, id string) (models.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return o, fromRepo(err, "order %s not found", id)
	}
	if o.UserID != who.ID && !who.IsAdmin() {
		return models.Order{}, fail(ErrForbidden, "access to this order is not allowed")
	}
	return o, nil
}

func (s *OrderService) Create(ctx context.Context, who auth.Identity, req CreateOrderRequest) (models.Order, error) {
	if err := validation.Struct(req); err != nil {
		return models.Order{}, fail(ErrValidation, "%s", err.Error())
	}

	out, err := s.place(ctx, who, req)
	if err != nil {
		return models.Order{}, err
	}
	mykafka.Publish(ctx, s.Events, out.ID, "order_created", out)
	return out, nil
}

func (s *OrderService) place(ctx context.Context, who auth.Identity, req CreateOrderRequest) (models.Order, error) {
	defer s.lock()()

	items := make([]models.OrderItem, 0, len(req.Items))
	var total float64
	for _, it := range req.Items {
		var price float64
		_, err := s.Products.Update(ctx, it.ProductID, func(p *models.Product) error {
			if p.Stock < it.Quantity {
				return fail(ErrValidation, "insufficient stock for %s, available: %d", p.Name, p.Stock)
			}
			p.Stock -= it.Quantity
			price = p.Price
			return nil
		})
		if err != nil {
			s.restock(ctx, items)
			return models.Order{}, fromRepo(err, "product %s not found", it.ProductID)
		}
		items = append(items, models.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: price})
		total += price * float64(it.Quantity)
	}

	ts := now(s.Now)
	o := models.Order{
		ID:              newID(),
		UserID:          who.ID,
		Items:           items,
		TotalAmount:     roundCents(total),
		Status:          models.OrderPending,
		ShippingAddress: *req.ShippingAddress,
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	out, err := s.Orders.Insert(ctx, o)
	if err != nil {
		s.restock(ctx, items)
		return models.Order{}, fromRepo(err, "order %s already exists", o.ID)
	}
	return out, nil
}

// Cancel is allowed for the owner or an admin while the order is not
// cancelled or delivered. Reserved stock goes back to the products.
func (s *OrderService) Cancel(ctx context.Context, who auth.Identity, id string) (models.Order, error) {
	out, err := s.cancel(ctx, who, id)
	if err != nil {
		return models.Order{}, err
	}
	mykafka.Publish(ctx, s.Events, out.ID, "order_cancelled", out)
	return out, nil
}

func (s *OrderService) cancel(ctx context.Context, who auth.Identity, id string) (models.Order, error) {
	defer s.lock()()

	var released []models.OrderItem
	out, err := s.Orders.Update(ctx, id, func(o *models.Order) error {
		if o.UserID != who.ID && !who.IsAdmin() {
			return fail(ErrForbidden, "access to this order is not allowed")
		}
		switch o.Status {
		case models.OrderCancelled:
			return fail(ErrValidation, "order is already cancelled")
		case models.OrderDelivered:
			return fail(ErrValidation, "cannot cancel a delivered order")
		}
		released = o.Items
		o.Status = models.OrderCancelled
		o.UpdatedAt = now(s.Now)
		return nil
	})
	if err != nil {
		return models.Order{}, fromRepo(err, "order %s not found", id)
	}

	s.restock(ctx, released)
	return out, nil
}

// UpdateStatus is the admin transition. Moving to cancelled releases stock;
// a cancelled order cannot be revived because its stock is already gone.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (models.Order, error) {
	status := models.OrderStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return models.Order{}, invalidStatus()
	}

	out, err := s.setStatus(ctx, id, status, req.TrackingNumber)
	if err != nil {
		return models.Order{}, err
	}
	mykafka.Publish(ctx, s.Events, out.ID, "order_status_changed", map[string]string{
		"id": out.ID, "status": string(out.Status),
	})
	return out, nil
}

func (s *OrderService) setStatus(ctx context.Context, id string, status models.OrderStatus, tracking string) (models.Order, error) {
	defer s.lock()()

	var released []models.OrderItem
	out, err := s.Orders.Update(ctx, id, func(o *models.Order) error {
		if o.Status == models.OrderCancelled && status != models.OrderCancelled {
			return fail(ErrConflict, "order %s is cancelled", o.ID)
		}
		if status == models.OrderCancelled && o.Status != models.OrderCancelled {
			released = o.Items
		}
		o.Status = status
		if tracking != "" && status == models.OrderShipped {
			o.TrackingNumber = tracking
		}
		o.UpdatedAt = now(s.Now)
		return nil
	})
	if err != nil {
		return models.Order{}, fromRepo(err, "order %s not found", id)
	}

	s.restock(ctx, released)
	return out, nil
}

// restock puts quantities back. Products deleted since placement are skipped.
func (s *OrderService) restock(ctx context.Context, items []models.OrderItem) {
	for _, it := range items {
		_, err := s.Products.Update(ctx, it.ProductID, func(p *models.Product) error {
			p.Stock += it.Quantity
			return nil
		})
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			logging.FromContext(ctx).Error("restock_failed", "product_id", it.ProductID, "quantity", it.Quantity, "error", err)
		}
	}
}

func invalidStatus() error {
	names := make([]string, len(validStatuses))
	for i, st := range validStatuses {
		names[i] = string(st)
	}
	return fail(ErrValidation, "invalid status, valid statuses: %s", strings.Join(names, ", "))
}
