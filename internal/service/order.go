package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/factory"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/metrics"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/storage"
)

const (
	// MenuImagePrefix marks menu images kept in object storage.
	MenuImagePrefix = "menu/"
	// MenuImageURLExpiry bounds the presigned links handed out by GetMenu.
	MenuImageURLExpiry = 15 * time.Minute
)

// OrderReceipt is a fulfilled order with the factory's verification.
type OrderReceipt struct {
	Order     *model.Order `json:"order"`
	JWT       string       `json:"jwt"`
	ReportURL string       `json:"reportUrl"`
}

// Factory fulfils stored orders.
type Factory interface {
	Submit(ctx context.Context, diner factory.Diner, order *model.Order) (*factory.Result, time.Duration, error)
}

// OrderService serves the menu and diner orders.
type OrderService interface {
	GetMenu(ctx context.Context) ([]model.MenuItem, error)

	// AddMenuItem is admin only and returns the updated menu.
	AddMenuItem(ctx context.Context, p *model.Principal, item model.MenuItem) ([]model.MenuItem, error)

	// AddMenuItemWithImage uploads the image, then adds the item pointing at
	// it. The upload is removed again when the item cannot be stored.
	AddMenuItemWithImage(ctx context.Context, p *model.Principal, item model.MenuItem, r io.Reader, filename, contentType string, size int64) ([]model.MenuItem, error)

	GetOrders(ctx context.Context, p *model.Principal, page int) (*model.OrderPage, error)

	// CreateOrder stores the order and has the factory fulfil it.
	CreateOrder(ctx context.Context, p *model.Principal, o model.NewOrder) (*OrderReceipt, error)
}

type orderService struct {
	menu    repository.MenuRepository
	orders  repository.OrderRepository
	images  storage.Storage
	factory Factory
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewOrderService builds the service. images may be nil, which disables
// image uploads and presigning.
func NewOrderService(menu repository.MenuRepository, orders repository.OrderRepository, images storage.Storage, f Factory, m *metrics.Metrics, log zerolog.Logger) OrderService {
	return &orderService{menu: menu, orders: orders, images: images, factory: f, metrics: m, log: log}
}

func (s *orderService) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	items, err := s.menu.GetMenu(ctx)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return items, nil
	}
	for i := range items {
		if !strings.HasPrefix(items[i].Image, MenuImagePrefix) {
			continue
		}
		u, err := s.images.PresignGet(ctx, items[i].Image, MenuImageURLExpiry)
		if err != nil {
			s.log.Warn().Err(err).Str("key", items[i].Image).Msg("presign menu image failed")
			continue
		}
		items[i].Image = u
	}
	return items, nil
}

func (s *orderService) AddMenuItem(ctx context.Context, p *model.Principal, item model.MenuItem) ([]model.MenuItem, error) {
	if err := requireAdmin(p, "unable to add menu item"); err != nil {
		return nil, err
	}
	if _, err := s.menu.AddMenuItem(ctx, item); err != nil {
		return nil, err
	}
	return s.GetMenu(ctx)
}

func (s *orderService) AddMenuItemWithImage(ctx context.Context, p *model.Principal, item model.MenuItem, r io.Reader, filename, contentType string, size int64) ([]model.MenuItem, error) {
	if err := requireAdmin(p, "unable to add menu item"); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, errs.NewBadRequestError("image uploads are disabled")
	}
	if r == nil {
		return nil, errs.NewBadRequestError("image is required")
	}

	key := MenuImagePrefix + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	obj, err := s.images.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": filename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	item.Image = obj.Key
	if _, err := s.menu.AddMenuItem(ctx, item); err != nil {
		if delErr := s.images.Delete(ctx, obj.Key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", obj.Key).Msg("rollback image upload failed")
		}
		return nil, err
	}
	return s.GetMenu(ctx)
}

func (s *orderService) GetOrders(ctx context.Context, p *model.Principal, page int) (*model.OrderPage, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	return s.orders.GetOrders(ctx, p.ID, page)
}

func (s *orderService) CreateOrder(ctx context.Context, p *model.Principal, o model.NewOrder) (*OrderReceipt, error) {
	defer s.metrics.ObserveSince("order.create", time.Now())

	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	if len(o.Items) == 0 {
		return nil, errs.NewBadRequestError("an order needs at least one item")
	}

	order, err := s.orders.AddDinerOrder(ctx, p.ID, o)
	if err != nil {
		return nil, err
	}

	res, latency, err := s.factory.Submit(ctx, factory.Diner{ID: p.ID, Name: p.Name, Email: p.Email}, order)
	s.metrics.FactoryLatency(latency)
	if err != nil {
		s.metrics.OrderFailed()
		s.log.Error().Err(err).Int64("order_id", order.ID).Msg("factory rejected order")
		return nil, errs.NewInternalError("Failed to fulfill order at factory", err)
	}

	s.metrics.OrderFulfilled(len(order.Items), order.Total())
	return &OrderReceipt{Order: order, JWT: res.JWT, ReportURL: res.ReportURL}, nil
}

func requireAdmin(p *model.Principal, deny string) error {
	if p == nil {
		return errs.ErrUnauthorized
	}
	if !p.IsAdmin() {
		return errs.NewForbiddenError(deny)
	}
	return nil
}
