package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/cart/domain/model"
	"storefront/pkg/common/domain"
	noticemodel "storefront/pkg/notification/domain/model"
)

var ErrSessionRequired = domain.Validation("cart session is required")

// ProductCatalog resolves the product a shopper is adding to the cart.
type ProductCatalog interface {
	FindCartProduct(ctx context.Context, productID uuid.UUID) (model.Product, error)
}

type AddLineInput struct {
	ProductID uuid.UUID
	// Quantity of zero means one.
	Quantity int
	Size     string
	Color    string
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*model.Cart, error)
	AddLine(ctx context.Context, sessionID string, in AddLineInput) (*model.Cart, noticemodel.Notice, error)
	SetQuantity(ctx context.Context, sessionID string, key model.LineKey, quantity int) (*model.Cart, noticemodel.Notice, error)
	RemoveLine(ctx context.Context, sessionID string, key model.LineKey) (*model.Cart, noticemodel.Notice, error)
	Clear(ctx context.Context, sessionID string) (*model.Cart, noticemodel.Notice, error)

	// MergeCarts moves every line of the fromSessionID cart into the intoSessionID cart and deletes the source.
	MergeCarts(ctx context.Context, fromSessionID, intoSessionID string) (*model.Cart, error)
	// Consume hands the session cart to place and deletes the cart once place succeeds.
	// The cart cannot change while place runs.
	Consume(ctx context.Context, sessionID string, place func(cart *model.Cart) error) error
}

func NewCartService(catalog ProductCatalog, storage model.CartStorage, dispatcher domain.EventDispatcher) CartService {
	return &cartService{
		catalog:    catalog,
		storage:    storage,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

type cartService struct {
	catalog    ProductCatalog
	storage    model.CartStorage
	dispatcher domain.EventDispatcher
	now        func() time.Time

	locks sessionLocks
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*model.Cart, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	return s.load(ctx, sessionID)
}

func (s *cartService) AddLine(ctx context.Context, sessionID string, in AddLineInput) (*model.Cart, noticemodel.Notice, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return nil, noticemodel.Notice{}, model.ErrInvalidQuantity
	}

	product, err := s.catalog.FindCartProduct(ctx, in.ProductID)
	if err != nil {
		return nil, noticemodel.Notice{}, err
	}

	var notice noticemodel.Notice
	cart, err := s.mutate(ctx, sessionID, func(cart *model.Cart) (domain.Event, error) {
		line, merged, err := cart.AddLine(product, in.Quantity, in.Size, in.Color)
		if err != nil {
			return nil, err
		}
		if merged {
			notice = s.notice(fmt.Sprintf("Updated %s quantity in cart", line.Name))
			return model.CartLineQuantityChanged{
				SessionID: sessionID, ProductID: line.ProductID, Size: line.Size, Color: line.Color, Quantity: line.Quantity,
			}, nil
		}
		notice = s.notice(fmt.Sprintf("Added %s to cart", line.Name))
		return model.CartLineAdded{
			SessionID: sessionID, ProductID: line.ProductID, Size: line.Size, Color: line.Color, Quantity: line.Quantity,
		}, nil
	})
	return cart, notice, err
}

func (s *cartService) SetQuantity(ctx context.Context, sessionID string, key model.LineKey, quantity int) (*model.Cart, noticemodel.Notice, error) {
	if key.Size == "" {
		key.Size = model.DefaultSize
	}

	var notice noticemodel.Notice
	cart, err := s.mutate(ctx, sessionID, func(cart *model.Cart) (domain.Event, error) {
		line, ok := cart.SetQuantity(key, quantity)
		if !ok {
			return nil, nil
		}
		if quantity < 1 {
			notice = s.notice(fmt.Sprintf("Removed %s from cart", line.Name))
			return model.CartLineRemoved{SessionID: sessionID, ProductID: key.ProductID, Size: key.Size, Color: key.Color}, nil
		}
		notice = s.notice(fmt.Sprintf("Updated %s quantity in cart", line.Name))
		return model.CartLineQuantityChanged{
			SessionID: sessionID, ProductID: key.ProductID, Size: key.Size, Color: key.Color, Quantity: line.Quantity,
		}, nil
	})
	return cart, notice, err
}

func (s *cartService) RemoveLine(ctx context.Context, sessionID string, key model.LineKey) (*model.Cart, noticemodel.Notice, error) {
	if key.Size == "" {
		key.Size = model.DefaultSize
	}

	var notice noticemodel.Notice
	cart, err := s.mutate(ctx, sessionID, func(cart *model.Cart) (domain.Event, error) {
		line, ok := cart.RemoveLine(key)
		if !ok {
			return nil, nil
		}
		notice = s.notice(fmt.Sprintf("Removed %s from cart", line.Name))
		return model.CartLineRemoved{SessionID: sessionID, ProductID: key.ProductID, Size: key.Size, Color: key.Color}, nil
	})
	return cart, notice, err
}

func (s *cartService) Clear(ctx context.Context, sessionID string) (*model.Cart, noticemodel.Notice, error) {
	if sessionID == "" {
		return nil, noticemodel.Notice{}, ErrSessionRequired
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.storage.Delete(ctx, sessionID); err != nil {
		return nil, noticemodel.Notice{}, errors.Wrap(err, "clear cart")
	}
	s.dispatch(model.CartCleared{SessionID: sessionID})
	return &model.Cart{}, s.notice("Cart cleared"), nil
}

// mutate runs fn against the stored cart and saves the result when fn reports a change.
// Mutations of one session are serialized.
func (s *cartService) mutate(ctx context.Context, sessionID string, fn func(cart *model.Cart) (domain.Event, error)) (*model.Cart, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	event, err := fn(cart)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return cart, nil
	}

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.dispatch(event)
	return cart, nil
}

func (s *cartService) MergeCarts(ctx context.Context, fromSessionID, intoSessionID string) (*model.Cart, error) {
	if fromSessionID == "" || intoSessionID == "" {
		return nil, ErrSessionRequired
	}
	if fromSessionID == intoSessionID {
		return s.GetCart(ctx, intoSessionID)
	}
	unlock := s.locks.lockPair(fromSessionID, intoSessionID)
	defer unlock()

	source, err := s.load(ctx, fromSessionID)
	if err != nil {
		return nil, err
	}
	target, err := s.load(ctx, intoSessionID)
	if err != nil {
		return nil, err
	}
	if source.IsEmpty() {
		return target, nil
	}

	target.Merge(source)
	if err := s.save(ctx, intoSessionID, target); err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, fromSessionID); err != nil {
		return nil, errors.Wrap(err, "delete merged cart")
	}
	s.dispatch(model.CartMerged{FromSessionID: fromSessionID, SessionID: intoSessionID, Count: source.Count()})
	return target, nil
}

func (s *cartService) Consume(ctx context.Context, sessionID string, place func(cart *model.Cart) error) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := place(cart); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, sessionID); err != nil {
		log.WithError(err).WithField("session", sessionID).Error("failed to delete consumed cart")
		return nil
	}
	s.dispatch(model.CartCleared{SessionID: sessionID})
	return nil
}

func (s *cartService) save(ctx context.Context, sessionID string, cart *model.Cart) error {
	data, err := model.MarshalCart(cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	return errors.Wrap(s.storage.Save(ctx, sessionID, data), "save cart")
}

func (s *cartService) load(ctx context.Context, sessionID string) (*model.Cart, error) {
	data, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(data) == 0 {
		return &model.Cart{}, nil
	}

	cart, err := model.UnmarshalCart(data)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("discarding unreadable cart")
		if err := s.storage.Delete(ctx, sessionID); err != nil {
			log.WithError(err).WithField("session", sessionID).Error("failed to delete unreadable cart")
		}
		return &model.Cart{}, nil
	}
	return cart, nil
}

func (s *cartService) notice(message string) noticemodel.Notice {
	return noticemodel.NewNotice(noticemodel.NoticeSuccess, message, s.now())
}

func (s *cartService) dispatch(event domain.Event) {
	if err := s.dispatcher.Dispatch(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch cart event")
	}
}
