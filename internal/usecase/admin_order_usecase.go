package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shop/internal/domain/model"
	repo "shop/internal/repository"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	events    OrderEventPublisher
	idGen     IDGenerator
	clock     Clock
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	events OrderEventPublisher,
	idGen IDGenerator,
	clock Clock,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, events: events, idGen: idGen, clock: clock}
}

// 一括操作の対象ID
type OrderIDsCommand struct {
	IDs []int64
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 一括確定/却下の結果
type BulkStatusResult struct {
	//状態が変わった注文
	Updated []int64 `json:"updated"`
	//既に同じ状態だった注文
	Unchanged []int64 `json:"unchanged"`
	//確定⇔却下になるので変えなかった注文
	Conflicts []int64 `json:"conflicts"`
	NotFound  []int64 `json:"not_found"`
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return AdminOrderListOutput{}, MalformedInput("invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderListOutput{}, MalformedInput("invalid limit")
	}
	switch model.OrderStatus(f.Status) {
	case "", model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusRejected:
	default:
		return AdminOrderListOutput{}, MalformedInput("invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return AdminOrderListOutput{}, MalformedInput("from must be before to")
	}

	out := AdminOrderListOutput{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return internal(err)
		}

		out.Total = total
		out.Items = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out.Items = append(out.Items, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

func (u *AdminOrderUsecase) Detail(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, MalformedInput("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("order not found")
		}
		if err != nil {
			return internal(err)
		}
		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// BulkConfirm はPENDINGの注文を確定する。confirmed_atは最初の1回だけ入る。
func (u *AdminOrderUsecase) BulkConfirm(ctx context.Context, actorAdminUserID int64, cmd OrderIDsCommand) (BulkStatusResult, error) {
	return u.bulkTransition(ctx, actorAdminUserID, cmd, model.AuditActionConfirmOrder, model.OrderEventConfirmed,
		func(o *model.Order, now time.Time) (bool, error) { return o.Confirm(now) })
}

// BulkReject はPENDINGの注文を却下する。
func (u *AdminOrderUsecase) BulkReject(ctx context.Context, actorAdminUserID int64, cmd OrderIDsCommand) (BulkStatusResult, error) {
	return u.bulkTransition(ctx, actorAdminUserID, cmd, model.AuditActionRejectOrder, model.OrderEventRejected,
		func(o *model.Order, now time.Time) (bool, error) { return o.Reject(now) })
}

type transitionFunc func(o *model.Order, now time.Time) (bool, error)

func (u *AdminOrderUsecase) bulkTransition(
	ctx context.Context,
	actorAdminUserID int64,
	cmd OrderIDsCommand,
	action model.AuditAction,
	evType model.OrderEventType,
	apply transitionFunc,
) (BulkStatusResult, error) {
	if actorAdminUserID <= 0 {
		return BulkStatusResult{}, unauthorized()
	}
	if len(cmd.IDs) == 0 {
		return BulkStatusResult{}, MalformedInput("ids is required")
	}

	res := BulkStatusResult{
		Updated:   []int64{},
		Unchanged: []int64{},
		Conflicts: []int64{},
		NotFound:  []int64{},
	}
	var changed []model.Order
	now := u.clock.Now()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().FindByIDs(ctx, cmd.IDs)
		if err != nil {
			return internal(err)
		}

		byID := make(map[int64]model.Order, len(orders))
		for _, o := range orders {
			byID[o.ID] = o
		}

		for _, id := range cmd.IDs {
			o, ok := byID[id]
			if !ok {
				res.NotFound = append(res.NotFound, id)
				continue
			}

			before := o.Status
			moved, err := apply(&o, now)
			if errors.Is(err, model.ErrInvalidTransition) {
				res.Conflicts = append(res.Conflicts, id)
				continue
			}
			if err != nil {
				return internal(err)
			}
			if !moved {
				res.Unchanged = append(res.Unchanged, id)
				continue
			}

			if err := r.Orders().SaveStatus(ctx, o); err != nil {
				return internal(err)
			}

			// 監査ログ
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorAdminUserID,
				Action:       action,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   id,
				BeforeJSON:   statusJSON(before, nil),
				AfterJSON:    statusJSON(o.Status, stampOf(o)),
				CreatedAt:    now,
			}); err != nil {
				return internal(err)
			}

			res.Updated = append(res.Updated, id)
			changed = append(changed, o)
		}
		return nil
	})
	if err != nil {
		return BulkStatusResult{}, err
	}

	for _, o := range changed {
		u.publish(ctx, evType, o)
	}
	return res, nil
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// UpdateStatus は1件だけ確定/却下する。確定⇔却下は409。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, MalformedInput("invalid id")
	}

	cmd := OrderIDsCommand{IDs: []int64{orderID}}
	var (
		res BulkStatusResult
		err error
	)
	switch model.OrderStatus(in.Status) {
	case model.OrderStatusConfirmed:
		res, err = u.BulkConfirm(ctx, actorAdminUserID, cmd)
	case model.OrderStatusRejected:
		res, err = u.BulkReject(ctx, actorAdminUserID, cmd)
	default:
		return OrderOutput{}, MalformedInput("status must be CONFIRMED or REJECTED")
	}
	if err != nil {
		return OrderOutput{}, err
	}
	if len(res.NotFound) > 0 {
		return OrderOutput{}, notFound("order not found")
	}
	if len(res.Conflicts) > 0 {
		return OrderOutput{}, invalidTransition("order is already " + oppositeOf(in.Status))
	}
	return u.Detail(ctx, orderID)
}

func oppositeOf(status string) string {
	if model.OrderStatus(status) == model.OrderStatusConfirmed {
		return string(model.OrderStatusRejected)
	}
	return string(model.OrderStatusConfirmed)
}

// Recalculate は管理者による合計の再計算（監査ログ付き）
func (u *AdminOrderUsecase) Recalculate(ctx context.Context, actorAdminUserID int64, orderID int64) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, unauthorized()
	}
	if orderID <= 0 {
		return OrderOutput{}, MalformedInput("invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("order not found")
		}
		if err != nil {
			return internal(err)
		}

		before := o.TotalPrice
		total, err := recalculateTotal(ctx, r, orderID)
		if err != nil {
			return internal(err)
		}
		o.TotalPrice = total

		if !before.Equal(total) {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorAdminUserID,
				Action:       model.AuditActionRecalculateOrder,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   fmt.Sprintf(`{"total_price":%q}`, before.String()),
				AfterJSON:    fmt.Sprintf(`{"total_price":%q}`, total.String()),
				CreatedAt:    u.clock.Now(),
			}); err != nil {
				return internal(err)
			}
		}

		out = toOrderOutput(o)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 監査ログ一覧
func (u *AdminOrderUsecase) AuditLogs(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

func stampOf(o model.Order) *time.Time {
	switch o.Status {
	case model.OrderStatusConfirmed:
		return o.ConfirmedAt
	case model.OrderStatusRejected:
		return o.RejectedAt
	}
	return nil
}

func statusJSON(status model.OrderStatus, at *time.Time) string {
	body := map[string]interface{}{"status": status}
	if at != nil {
		body["at"] = at.UTC().Format(time.RFC3339)
	}
	b, _ := json.Marshal(body)
	return string(b)
}

func (u *AdminOrderUsecase) publish(ctx context.Context, typ model.OrderEventType, o model.Order) {
	publishOrderEvent(ctx, u.events, u.idGen, u.clock, typ, o)
}
