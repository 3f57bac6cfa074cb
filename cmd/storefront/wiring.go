package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	cartmodel "storefront/pkg/cart/domain/model"
	cartservice "storefront/pkg/cart/domain/service"
	catalogservice "storefront/pkg/catalog/domain/service"
	checkoutservice "storefront/pkg/checkout/application/service"
	"storefront/pkg/common/domain"
	"storefront/pkg/infrastructure/auth"
	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/mail"
	"storefront/pkg/infrastructure/mysql"
	"storefront/pkg/infrastructure/session"
	notificationmodel "storefront/pkg/notification/domain/model"
	notificationservice "storefront/pkg/notification/domain/service"
	orderservice "storefront/pkg/order/domain/service"
	"storefront/pkg/transport"
	userapp "storefront/pkg/user/application/service"
	userservice "storefront/pkg/user/domain/service"
)

type container struct {
	services transport.Services
	closers  []func() error
}

func (c *container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.WithError(err).Error("failed to release resource")
		}
	}
}

func newContainer(ctx context.Context, cfg *config, db *sqlx.DB) (*container, error) {
	c := &container{}

	dispatcher := newDispatcher(cfg, c)
	carts, err := newCartStorage(ctx, cfg, c)
	if err != nil {
		c.Close()
		return nil, err
	}

	products := catalogservice.NewProductService(mysql.NewProductRepository(db), dispatcher)
	users := userservice.NewUserService(
		mysql.NewUserRepository(db),
		auth.NewPasswordManager(cfg.BcryptCost),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		dispatcher,
	)
	orders := orderservice.NewOrderService(mysql.NewOrderRepository(db), cfg.pricing(), dispatcher)
	cartService := cartservice.NewCartService(checkoutservice.NewCartCatalog(products), carts, dispatcher)
	notifications := notificationservice.NewNotificationService(
		mysql.NewNotificationRepository(db),
		map[notificationmodel.NotificationChannel]notificationmodel.NotificationSender{
			notificationmodel.Email: newMailSender(cfg),
		},
		dispatcher,
	)

	c.services = transport.Services{
		Products: products,
		Carts:    cartService,
		Orders:   orders,
		Checkout: checkoutservice.NewCheckoutService(cartService, orders, users, notifications),
		Users:    userapp.NewAccountService(users, notifications),
	}
	return c, nil
}

func newDispatcher(cfg *config, c *container) domain.EventDispatcher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, events are logged only")
		return event.LogDispatcher{}
	}
	dispatcher := event.NewKafkaDispatcher(cfg.kafka())
	c.closers = append(c.closers, dispatcher.Close)
	return dispatcher
}

func newCartStorage(ctx context.Context, cfg *config, c *container) (cartmodel.CartStorage, error) {
	switch cfg.CartStorage {
	case "memory":
		return session.NewMemoryStorage(), nil
	case "file":
		return session.NewFileStorage(cfg.CartFile), nil
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddress},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.closers = append(c.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrap(err, "ping redis")
		}
		return session.NewRedisStorage(client, cfg.CartTTL), nil
	}
	return nil, errors.Errorf("unknown cart storage %q", cfg.CartStorage)
}

func newMailSender(cfg *config) notificationmodel.NotificationSender {
	if cfg.SMTPHost == "" {
		return mail.LogSender{}
	}
	return mail.NewSMTPSender(cfg.smtp())
}
