package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/pkg/order/domain/model"
)

type orderRow struct {
	ID                 uuid.UUID       `db:"id"`
	CustomerID         uuid.UUID       `db:"customer_id"`
	Address            string          `db:"address"`
	City               string          `db:"city"`
	PostalCode         string          `db:"postal_code"`
	Country            string          `db:"country"`
	PaymentMethod      string          `db:"payment_method"`
	ItemsPrice         decimal.Decimal `db:"items_price"`
	TaxPrice           decimal.Decimal `db:"tax_price"`
	ShippingPrice      decimal.Decimal `db:"shipping_price"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	PaymentState       int             `db:"payment_state"`
	PaymentStatus      string          `db:"payment_status"`
	PaymentTransaction sql.NullString  `db:"payment_transaction"`
	PaymentResultState sql.NullString  `db:"payment_result_state"`
	PaymentUpdateTime  sql.NullString  `db:"payment_update_time"`
	PaymentPayerEmail  sql.NullString  `db:"payment_payer_email"`
	PaidAt             sql.NullTime    `db:"paid_at"`
	FulfillmentState   int             `db:"fulfillment_state"`
	DeliveredAt        sql.NullTime    `db:"delivered_at"`
	Version            int             `db:"version"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

type orderItemRow struct {
	OrderID   uuid.UUID       `db:"order_id"`
	Position  int             `db:"position"`
	ProductID uuid.UUID       `db:"product_id"`
	Name      string          `db:"name"`
	Image     string          `db:"image"`
	Size      string          `db:"size"`
	Color     string          `db:"color"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	Quantity  int             `db:"quantity"`
}

func NewOrderRepository(db *sqlx.DB) model.OrderRepository {
	return &orderRepository{db: db}
}

type orderRepository struct {
	db *sqlx.DB
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, customer_id, address, city, postal_code, country, payment_method,
		                    items_price, tax_price, shipping_price, total_price,
		                    payment_state, payment_status, payment_transaction, payment_result_state, payment_update_time,
		                    payment_payer_email, paid_at, fulfillment_state, delivered_at, version, created_at, updated_at)
		VALUES (:id, :customer_id, :address, :city, :postal_code, :country, :payment_method,
		        :items_price, :tax_price, :shipping_price, :total_price,
		        :payment_state, :payment_status, :payment_transaction, :payment_result_state, :payment_update_time,
		        :payment_payer_email, :paid_at, :fulfillment_state, :delivered_at, :version, :created_at, :updated_at)`,
		toOrderRow(order),
	)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	if len(order.Items) > 0 {
		items := make([]orderItemRow, 0, len(order.Items))
		for i, item := range order.Items {
			items = append(items, orderItemRow{
				OrderID:   order.ID,
				Position:  i,
				ProductID: item.ProductID,
				Name:      item.Name,
				Image:     item.Image,
				Size:      item.Size,
				Color:     item.Color,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, image, size, color, unit_price, quantity)
			VALUES (:order_id, :position, :product_id, :name, :image, :size, :color, :unit_price, :quantity)`,
			items,
		)
		if err != nil {
			return errors.Wrap(err, "insert order items")
		}
	}

	return errors.Wrap(tx.Commit(), "commit order")
}

// Update persists the payment and fulfillment state. Items and prices never change after placement.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	row := toOrderRow(order)
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_state = ?, payment_status = ?, payment_transaction = ?, payment_result_state = ?,
		    payment_update_time = ?, payment_payer_email = ?, paid_at = ?,
		    fulfillment_state = ?, delivered_at = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		row.PaymentState, row.PaymentStatus, row.PaymentTransaction, row.PaymentResultState,
		row.PaymentUpdateTime, row.PaymentPayerEmail, row.PaidAt,
		row.FulfillmentState, row.DeliveredAt, row.Version, row.UpdatedAt,
		row.ID, row.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, order.ID); err != nil {
		return errors.Wrap(err, "check order")
	}
	if !exists {
		return model.ErrOrderNotFound
	}
	return model.ErrOptimisticLock
}

func (r *orderRepository) Find(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}

	orders, err := r.withItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) FindAll(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var rows []orderRow
	var err error
	if filter.CustomerID != uuid.Nil {
		err = r.db.SelectContext(ctx, &rows, `SELECT * FROM orders WHERE customer_id = ? ORDER BY created_at DESC`, filter.CustomerID)
	} else {
		err = r.db.SelectContext(ctx, &rows, `SELECT * FROM orders ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	return r.withItems(ctx, rows)
}

func (r *orderRepository) withItems(ctx context.Context, rows []orderRow) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(rows))
	if len(rows) == 0 {
		return orders, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.String())
	}
	query, args, err := sqlx.In(`SELECT * FROM order_items WHERE order_id IN (?) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "build order items query")
	}
	var itemRows []orderItemRow
	if err := r.db.SelectContext(ctx, &itemRows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "select order items")
	}

	items := make(map[uuid.UUID][]model.Item, len(rows))
	for _, item := range itemRows {
		items[item.OrderID] = append(items[item.OrderID], model.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Size:      item.Size,
			Color:     item.Color,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	for _, row := range rows {
		order := fromOrderRow(row)
		order.Items = items[row.ID]
		orders = append(orders, order)
	}
	return orders, nil
}

func toOrderRow(o *model.Order) orderRow {
	row := orderRow{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		Address:          o.ShippingAddress.Address,
		City:             o.ShippingAddress.City,
		PostalCode:       o.ShippingAddress.PostalCode,
		Country:          o.ShippingAddress.Country,
		PaymentMethod:    string(o.PaymentMethod),
		ItemsPrice:       o.ItemsPrice,
		TaxPrice:         o.TaxPrice,
		ShippingPrice:    o.ShippingPrice,
		TotalPrice:       o.TotalPrice,
		PaymentState:     int(o.PaymentState),
		PaymentStatus:    o.PaymentStatus,
		FulfillmentState: int(o.FulfillmentState),
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.PaymentResult != nil {
		row.PaymentTransaction = sql.NullString{String: o.PaymentResult.TransactionID, Valid: true}
		row.PaymentResultState = sql.NullString{String: o.PaymentResult.Status, Valid: true}
		row.PaymentUpdateTime = sql.NullString{String: o.PaymentResult.UpdateTime, Valid: true}
		row.PaymentPayerEmail = sql.NullString{String: o.PaymentResult.PayerEmail, Valid: true}
	}
	if o.PaidAt != nil {
		row.PaidAt = sql.NullTime{Time: *o.PaidAt, Valid: true}
	}
	if o.DeliveredAt != nil {
		row.DeliveredAt = sql.NullTime{Time: *o.DeliveredAt, Valid: true}
	}
	return row
}

func fromOrderRow(row orderRow) model.Order {
	o := model.Order{
		ID:         row.ID,
		CustomerID: row.CustomerID,
		ShippingAddress: model.ShippingAddress{
			Address:    row.Address,
			City:       row.City,
			PostalCode: row.PostalCode,
			Country:    row.Country,
		},
		PaymentMethod:    model.PaymentMethod(row.PaymentMethod),
		ItemsPrice:       row.ItemsPrice,
		TaxPrice:         row.TaxPrice,
		ShippingPrice:    row.ShippingPrice,
		TotalPrice:       row.TotalPrice,
		PaymentState:     model.PaymentState(row.PaymentState),
		PaymentStatus:    row.PaymentStatus,
		FulfillmentState: model.FulfillmentState(row.FulfillmentState),
		Version:          row.Version,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.PaymentTransaction.Valid {
		o.PaymentResult = &model.PaymentResult{
			TransactionID: row.PaymentTransaction.String,
			Status:        row.PaymentResultState.String,
			UpdateTime:    row.PaymentUpdateTime.String,
			PayerEmail:    row.PaymentPayerEmail.String,
		}
	}
	if row.PaidAt.Valid {
		paidAt := row.PaidAt.Time
		o.PaidAt = &paidAt
	}
	if row.DeliveredAt.Valid {
		deliveredAt := row.DeliveredAt.Time
		o.DeliveredAt = &deliveredAt
	}
	return o
}
