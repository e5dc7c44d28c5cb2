package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/veo3store/internal/domain/errors"
	"github.com/polkiloo/veo3store/internal/domain/model"
)

const (
	orderColumns = `o.id, o.order_number, o.user_id, u.email, u.name, o.package_id, o.package_name, o.duration_months,
                    o.amount, o.currency, o.payment_method, o.transfer_content, o.status, o.user_confirmed_at,
                    o.approved_at, o.rejected_at, o.rejection_reason, o.license_id, o.license_key, o.license_ends_at,
                    o.max_devices, o.delivery_method, o.delivery_contact, o.delivered_at, o.admin_notes,
                    o.expires_at, o.created_at, o.updated_at`
	orderSource = ` FROM orders o JOIN users u ON u.id = o.user_id`
)

// errStatusMoved signals that a compare-and-swap update matched no row.
var errStatusMoved = errors.New("order status moved")

func scanOrder(row pgx.Row) (model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.UserEmail, &o.UserName, &o.PackageID, &o.PackageName,
		&o.DurationMonths, &o.Amount, &o.Currency, &o.PaymentMethod, &o.TransferContent, &o.Status,
		&o.UserConfirmedAt, &o.ApprovedAt, &o.RejectedAt, &o.RejectionReason, &o.LicenseID, &o.LicenseKey,
		&o.LicenseEndsAt, &o.MaxDevices, &o.DeliveryMethod, &o.DeliveryContact, &o.DeliveredAt, &o.AdminNotes,
		&o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, order_number, user_id, package_id, package_name, duration_months, amount,
                   currency, payment_method, transfer_content, status, max_devices, expires_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query, order.ID, order.OrderNumber, order.UserID, order.PackageID,
		order.PackageName, order.DurationMonths, order.Amount, order.Currency, order.PaymentMethod,
		order.TransferContent, order.Status, order.MaxDevices, order.ExpiresAt).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+orderSource+` WHERE o.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// likeEscaper makes search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderConditions(filter model.OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "o.status="+next(filter.Status))
	}
	if filter.UserID != 0 {
		conds = append(conds, "o.user_id="+next(filter.UserID))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := next("%" + likeEscaper.Replace(search) + "%")
		conds = append(conds, "(o.order_number ILIKE "+p+` ESCAPE '\' OR o.transfer_content ILIKE `+p+` ESCAPE '\' OR u.email ILIKE `+p+` ESCAPE '\')`)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter, page model.Page) (*model.OrderList, error) {
	page = page.Normalize()
	where, args := orderConditions(filter)

	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*)`+orderSource+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	n := len(args)
	query := `SELECT ` + orderColumns + orderSource + where +
		` ORDER BY o.created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.storage.pool.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &model.OrderList{Orders: orders, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func (r *orderRepository) Save(ctx context.Context, order *model.Order, expected model.OrderStatus) error {
	if !expected.CanTransitionTo(order.Status) {
		return fmt.Errorf("%s -> %s: %w", expected, order.Status, domainErrors.ErrInvalidState)
	}

	const query = `UPDATE orders SET status=$3, user_confirmed_at=$4, rejected_at=$5, rejection_reason=$6,
                   admin_notes=$7, updated_at=NOW()
                   WHERE id=$1 AND status=$2
                   RETURNING updated_at`
	err := r.storage.pool.QueryRow(ctx, query, order.ID, expected, order.Status, order.UserConfirmedAt,
		order.RejectedAt, order.RejectionReason, order.AdminNotes).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.lostRace(ctx, order.ID)
		}
		return err
	}
	return nil
}

func (r *orderRepository) Complete(ctx context.Context, order *model.Order, license *model.License) error {
	if order.Status != model.OrderStatusCompleted {
		return fmt.Errorf("complete with status %s: %w", order.Status, domainErrors.ErrInvalidState)
	}

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const update = `UPDATE orders SET status=$3, approved_at=$4, delivered_at=$5, license_id=$6, license_key=$7,
                        license_ends_at=$8, max_devices=$9, delivery_method=$10, delivery_contact=$11,
                        admin_notes=$12, updated_at=NOW()
                        WHERE id=$1 AND status=$2
                        RETURNING updated_at`
		err := tx.QueryRow(ctx, update, order.ID, model.OrderStatusProcessing, order.Status, order.ApprovedAt,
			order.DeliveredAt, order.LicenseID, order.LicenseKey, order.LicenseEndsAt, order.MaxDevices,
			order.DeliveryMethod, order.DeliveryContact, order.AdminNotes).Scan(&order.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errStatusMoved
			}
			return err
		}

		const insert = `INSERT INTO licenses (id, order_id, user_id, license_key, max_devices, starts_at, ends_at)
                        VALUES ($1, $2, $3, $4, $5, $6, $7)
                        ON CONFLICT (order_id) DO NOTHING`
		if _, err := tx.Exec(ctx, insert, license.ID, license.OrderID, license.UserID, license.Key,
			license.MaxDevices, license.StartsAt, license.EndsAt); err != nil {
			return fmt.Errorf("record license: %w", err)
		}
		return nil
	})
	if errors.Is(err, errStatusMoved) {
		return r.lostRace(ctx, order.ID)
	}
	return err
}

// lostRace reports why a compare-and-swap matched nothing.
func (r *orderRepository) lostRace(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("order %s is %s: %w", id, current.Status, domainErrors.ErrInvalidState)
}

func (r *orderRepository) TransferContentExists(ctx context.Context, memo string) (bool, error) {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE transfer_content=$1)`, memo).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + orderSource + `
              WHERE o.status=$1 AND o.expires_at <= $2
              ORDER BY o.expires_at
              LIMIT $3`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusPending, now, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int, len(model.OrderStatuses()))
	for rows.Next() {
		var (
			status model.OrderStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *orderRepository) RevenueSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM orders WHERE status=$1 AND approved_at >= $2`
	var sum int64
	if err := r.storage.pool.QueryRow(ctx, query, model.OrderStatusCompleted, since).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}
