package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shop/internal/domain/cart"
	"shop/internal/domain/model"
	"shop/internal/logging"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 明細にサイズが無いときの表示
const SizeNotSpecifiedLabel = "not specified"

type OrderUsecase struct {
	tx       repo.TransactionManager
	profiles repo.ProfileRepository
	sessions repo.SessionStore
	events   OrderEventPublisher
	idGen    IDGenerator
	clock    Clock
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	profiles repo.ProfileRepository,
	sessions repo.SessionStore,
	events OrderEventPublisher,
	idGen IDGenerator,
	clock Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		profiles: profiles,
		sessions: sessions,
		events:   events,
		idGen:    idGen,
		clock:    clock,
	}
}

// 連絡先（名前・電話・住所）
type ContactInfo struct {
	Name    string
	Phone   string
	Address string
}

type PlaceOrderCommand struct {
	UserID  int64
	Contact ContactInfo
	Comment string
}

type PlacedOrder struct {
	OrderID           int64           `json:"order_id"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalPriceDisplay string          `json:"total_price_display"`
}

type OrderItemOutput struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"product_id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	SizeID           *int64          `json:"size_id"`
	SizeLabel        string          `json:"size_label"`
	Quantity         int64           `json:"quantity"`
	LineTotal        decimal.Decimal `json:"line_total"`
	LineTotalDisplay string          `json:"line_total_display"`
}

type OrderOutput struct {
	ID                int64             `json:"id"`
	UserID            int64             `json:"user_id"`
	Name              string            `json:"name"`
	Phone             string            `json:"phone"`
	Address           string            `json:"address"`
	Comment           string            `json:"comment"`
	Status            string            `json:"status"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	TotalPriceDisplay string            `json:"total_price_display"`
	ConfirmedAt       *time.Time        `json:"confirmed_at"`
	RejectedAt        *time.Time        `json:"rejected_at"`
	CreatedAt         time.Time         `json:"created_at"`
	Items             []OrderItemOutput `json:"items"`
}

// PlaceOrder はセッションのカートを注文にする。
// 注文ヘッダ・明細・合計は1つのトランザクションで作り、成功したらカートを空にする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, sessionID string, cmd PlaceOrderCommand) (PlacedOrder, error) {
	if cmd.UserID <= 0 {
		return PlacedOrder{}, MalformedInput("user_id is required")
	}

	contact, err := u.resolveContact(ctx, cmd.UserID, cmd.Contact)
	if err != nil {
		return PlacedOrder{}, err
	}

	raw, err := u.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return PlacedOrder{}, internal(fmt.Errorf("load cart: %w", err))
	}
	c, _ := cart.Decode(raw)
	if c.IsEmpty() {
		return PlacedOrder{}, emptyCart()
	}

	var placed model.Order

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:     cmd.UserID,
			Name:       contact.Name,
			Phone:      contact.Phone,
			Address:    contact.Address,
			Comment:    strings.TrimSpace(cmd.Comment),
			Status:     model.OrderStatusPending,
			TotalPrice: decimal.Zero,
		})
		if err != nil {
			return placementFailed(err)
		}

		for _, l := range c.Lines() {
			if _, err := r.Products().FindByID(ctx, l.Key.ProductID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return notFound(fmt.Sprintf("product %d not found", l.Key.ProductID))
				}
				return placementFailed(err)
			}
			if l.Key.HasSize() {
				if _, err := r.Products().FindSizeByID(ctx, l.Key.SizeID); err != nil {
					if errors.Is(err, repo.ErrNotFound) {
						return notFound(fmt.Sprintf("size %d not found", l.Key.SizeID))
					}
					return placementFailed(err)
				}
			}

			if _, err := r.OrderItems().Create(ctx, model.OrderItem{
				OrderID:   orderID,
				ProductID: l.Key.ProductID,
				SizeID:    l.Key.SizePtr(),
				Quantity:  int64(l.Qty),
			}); err != nil {
				return placementFailed(err)
			}
		}

		//保存した明細から合計を出し直す
		total, err := recalculateTotal(ctx, r, orderID)
		if err != nil {
			return placementFailed(err)
		}

		placed = model.Order{ID: orderID, UserID: cmd.UserID, Status: model.OrderStatusPending, TotalPrice: total}
		return nil
	})
	if err != nil {
		//commit失敗などはHTTPErrorになっていない
		if _, ok := AsHTTPError(err); !ok {
			err = placementFailed(err)
		}
		logging.FromContext(ctx).Error("place order failed", zap.Int64("user_id", cmd.UserID), zap.Error(err))
		return PlacedOrder{}, err
	}

	//commit後なのでカートのクリア失敗では注文を失敗にしない
	if err := u.sessions.SetCart(ctx, sessionID, map[string]int{}); err != nil {
		logging.FromContext(ctx).Warn("clear cart failed", zap.Int64("order_id", placed.ID), zap.Error(err))
	}

	u.publish(ctx, model.OrderEventPlaced, placed)

	return PlacedOrder{
		OrderID:           placed.ID,
		TotalPrice:        placed.TotalPrice,
		TotalPriceDisplay: FormatPrice(placed.TotalPrice),
	}, nil
}

// プロフィールの値を優先し、空の項目だけ入力値で埋める。
func (u *OrderUsecase) resolveContact(ctx context.Context, userID int64, supplied ContactInfo) (ContactInfo, error) {
	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return ContactInfo{}, internal(err)
	}

	contact := ContactInfo{
		Name:    firstNonEmpty(profile.Name, supplied.Name),
		Phone:   firstNonEmpty(profile.PhoneNumber, supplied.Phone),
		Address: firstNonEmpty(profile.DeliveryAddress, supplied.Address),
	}

	var missing []string
	if contact.Name == "" {
		missing = append(missing, "name")
	}
	if contact.Phone == "" {
		missing = append(missing, "phone")
	}
	if contact.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return ContactInfo{}, incompleteContact("missing contact fields: " + strings.Join(missing, ", "))
	}
	return contact, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// RecalculateTotal は明細から合計を出し直して保存する。何度呼んでも同じ結果。
func (u *OrderUsecase) RecalculateTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	if orderID <= 0 {
		return decimal.Zero, MalformedInput("invalid id")
	}

	var total decimal.Decimal
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Orders().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return notFound("order not found")
			}
			return internal(err)
		}
		t, err := recalculateTotal(ctx, r, orderID)
		if err != nil {
			return internal(err)
		}
		total = t
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// トランザクション内で 数量×単価 を合計してヘッダに書く
func recalculateTotal(ctx context.Context, r repo.TxRepos, orderID int64) (decimal.Decimal, error) {
	items, err := r.OrderItems().ListByOrderID(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}

	if err := r.Orders().UpdateTotal(ctx, orderID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListMyOrders は購入者の注文を新しい順で返す。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "user ID not found")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return internal(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			outs = append(outs, toOrderOutput(o))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "user ID not found")
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
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return notFound("order not found")
		}

		out = toOrderOutput(o)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) publish(ctx context.Context, typ model.OrderEventType, o model.Order) {
	publishOrderEvent(ctx, u.events, u.idGen, u.clock, typ, o)
}

// 送信失敗は注文処理を止めない（ログだけ）
func publishOrderEvent(ctx context.Context, events OrderEventPublisher, idGen IDGenerator, clock Clock, typ model.OrderEventType, o model.Order) {
	if events == nil {
		return
	}
	ev := model.OrderEvent{
		ID:         idGen.NewID(),
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalPrice: o.TotalPrice,
		OccurredAt: clock.Now(),
	}
	if err := events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish order event failed",
			zap.String("type", string(typ)), zap.Int64("order_id", o.ID), zap.Error(err))
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		label := SizeNotSpecifiedLabel
		if it.Size != nil {
			label = it.Size.Label
		}
		lineTotal := it.Subtotal()
		items = append(items, OrderItemOutput{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Name:             it.Product.Name,
			Price:            it.Product.Price,
			SizeID:           it.SizeID,
			SizeLabel:        label,
			Quantity:         it.Quantity,
			LineTotal:        lineTotal,
			LineTotalDisplay: FormatPrice(lineTotal),
		})
	}

	return OrderOutput{
		ID:                o.ID,
		UserID:            o.UserID,
		Name:              o.Name,
		Phone:             o.Phone,
		Address:           o.Address,
		Comment:           o.Comment,
		Status:            string(o.Status),
		TotalPrice:        o.TotalPrice,
		TotalPriceDisplay: FormatPrice(o.TotalPrice),
		ConfirmedAt:       o.ConfirmedAt,
		RejectedAt:        o.RejectedAt,
		CreatedAt:         o.CreatedAt,
		Items:             items,
	}
}
