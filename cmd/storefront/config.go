package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/infrastructure/event"
	"storefront/pkg/infrastructure/mail"
	"storefront/pkg/infrastructure/mysql"
	ordermodel "storefront/pkg/order/domain/model"
)

const appID = "storefront"

type config struct {
	HTTPAddress string `envconfig:"http_address" default:":5000"`
	GRPCAddress string `envconfig:"grpc_address" default:":5001"`

	DatabaseDSN             string        `envconfig:"database_dsn" required:"true"`
	DatabaseMaxOpenConns    int           `envconfig:"database_max_open_conns" default:"10"`
	DatabaseMaxIdleConns    int           `envconfig:"database_max_idle_conns" default:"5"`
	DatabaseConnMaxLifetime time.Duration `envconfig:"database_conn_max_lifetime" default:"30m"`

	JWTSecret  string        `envconfig:"jwt_secret" required:"true"`
	JWTTTL     time.Duration `envconfig:"jwt_ttl" default:"720h"`
	BcryptCost int           `envconfig:"bcrypt_cost" default:"10"`

	UploadDir      string `envconfig:"upload_dir" default:"uploads"`
	MaxUploadBytes int64  `envconfig:"max_upload_bytes" default:"5242880"`

	// CartStorage is one of memory, file, redis.
	CartStorage   string        `envconfig:"cart_storage" default:"memory"`
	CartFile      string        `envconfig:"cart_file" default:"carts.json"`
	CartTTL       time.Duration `envconfig:"cart_ttl" default:"720h"`
	RedisAddress  string        `envconfig:"redis_address" default:"localhost:6379"`
	RedisPassword string        `envconfig:"redis_password"`
	RedisDB       int           `envconfig:"redis_db" default:"0"`

	KafkaBrokers      []string      `envconfig:"kafka_brokers"`
	KafkaTopic        string        `envconfig:"kafka_topic" default:"storefront.events"`
	KafkaWriteTimeout time.Duration `envconfig:"kafka_write_timeout" default:"5s"`

	SMTPHost     string `envconfig:"smtp_host"`
	SMTPPort     int    `envconfig:"smtp_port" default:"587"`
	SMTPUsername string `envconfig:"smtp_username"`
	SMTPPassword string `envconfig:"smtp_password"`
	SMTPFrom     string `envconfig:"smtp_from" default:"no-reply@storefront.local"`

	TaxRate               decimal.Decimal `envconfig:"tax_rate" default:"0.18"`
	FreeShippingThreshold decimal.Decimal `envconfig:"free_shipping_threshold" default:"2000"`
	ShippingFee           decimal.Decimal `envconfig:"shipping_fee" default:"99"`

	AdminName     string `envconfig:"admin_name" default:"Admin User"`
	AdminEmail    string `envconfig:"admin_email"`
	AdminPassword string `envconfig:"admin_password"`
}

func parseEnv() (*config, error) {
	c := new(config)
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if c.DatabaseDSN == "" {
		return nil, errors.New("database dsn must not be empty")
	}
	if c.JWTSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return c, nil
}

func (c *config) database() mysql.Config {
	return mysql.Config{
		DSN:             c.DatabaseDSN,
		MaxOpenConns:    c.DatabaseMaxOpenConns,
		MaxIdleConns:    c.DatabaseMaxIdleConns,
		ConnMaxLifetime: c.DatabaseConnMaxLifetime,
	}
}

func (c *config) pricing() ordermodel.PricingPolicy {
	return ordermodel.PricingPolicy{
		TaxRate:               c.TaxRate,
		FreeShippingThreshold: c.FreeShippingThreshold,
		ShippingFee:           c.ShippingFee,
	}
}

func (c *config) kafka() event.KafkaConfig {
	return event.KafkaConfig{Brokers: c.KafkaBrokers, Topic: c.KafkaTopic, WriteTimeout: c.KafkaWriteTimeout}
}

func (c *config) smtp() mail.Config {
	return mail.Config{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
	}
}
