package usecase

import (
	"context"
	"errors"
	"fmt"

	"shop/internal/domain/cart"
	"shop/internal/domain/model"
	"shop/internal/logging"
	repo "shop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// サイズなし行の表示
const NoSizeLabel = "no size"

// CartUsecase はセッションカートの業務ロジック。
type CartUsecase struct {
	products repo.ProductRepository
	sessions repo.SessionStore
}

func NewCartUsecase(products repo.ProductRepository, sessions repo.SessionStore) *CartUsecase {
	return &CartUsecase{products: products, sessions: sessions}
}

// カートに入れる/数量を変える入力
type AddLineCommand struct {
	ProductID int64
	SizeID    *int64
	Delta     int
}

type RemoveLineCommand struct {
	ProductID int64
	SizeID    *int64
}

// 追加・削除のあとに返す合計
type CartTotal struct {
	TotalPrice        decimal.Decimal `json:"total_price"`
	TotalPriceDisplay string          `json:"total_price_display"`
	ItemCount         int             `json:"item_count"`
	CartEmpty         bool            `json:"cart_empty"`
}

type CartLineView struct {
	Key             string          `json:"key"`
	ProductID       int64           `json:"product_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	SizeID          *int64          `json:"size_id"`
	SizeLabel       string          `json:"size_label"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotal_display"`
}

type CartView struct {
	Items []CartLineView `json:"items"`
	CartTotal
}

// AddOrAdjust は数量にdeltaを足す。検証に失敗したらカートは変えない。
func (u *CartUsecase) AddOrAdjust(ctx context.Context, sessionID string, cmd AddLineCommand) (CartTotal, error) {
	p, err := u.products.FindByID(ctx, cmd.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartTotal{}, notFound("product not found")
	}
	if err != nil {
		return CartTotal{}, internal(err)
	}

	if cmd.SizeID != nil {
		if _, err := u.products.FindSizeByID(ctx, *cmd.SizeID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return CartTotal{}, notFound("size not found")
			}
			return CartTotal{}, internal(err)
		}
		ok, err := u.products.IsSizeEligible(ctx, p.ID, *cmd.SizeID)
		if err != nil {
			return CartTotal{}, internal(err)
		}
		if !ok {
			return CartTotal{}, invalidSelection("size is not available for this product")
		}
	} else if len(p.Sizes) > 0 {
		//サイズがある商品はサイズ必須
		return CartTotal{}, invalidSelection("size is required for this product")
	}

	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartTotal{}, err
	}

	c.Adjust(cart.NewLineKey(p.ID, cmd.SizeID), cmd.Delta)

	if err := u.sessions.SetCart(ctx, sessionID, c.Encode()); err != nil {
		return CartTotal{}, internal(err)
	}
	return u.summarize(ctx, c)
}

// Remove は行を消す。無くてもエラーにしない。
func (u *CartUsecase) Remove(ctx context.Context, sessionID string, cmd RemoveLineCommand) (CartTotal, error) {
	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartTotal{}, err
	}

	if c.Remove(cart.NewLineKey(cmd.ProductID, cmd.SizeID)) {
		if err := u.sessions.SetCart(ctx, sessionID, c.Encode()); err != nil {
			return CartTotal{}, internal(err)
		}
	}
	return u.summarize(ctx, c)
}

// ComputeTotal は 単価×数量 の合計。消えた商品の行は飛ばす。
func (u *CartUsecase) ComputeTotal(ctx context.Context, c *cart.Cart) (decimal.Decimal, error) {
	products, err := u.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return decimal.Zero, internal(err)
	}

	total := decimal.Zero
	for _, l := range c.Lines() {
		p, ok := products[l.Key.ProductID]
		if !ok {
			continue
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return total, nil
}

// Total はセッションのカート合計
func (u *CartUsecase) Total(ctx context.Context, sessionID string) (CartTotal, error) {
	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartTotal{}, err
	}
	return u.summarize(ctx, c)
}

// DisplayList は表示用に行を商品・サイズに解決する。
func (u *CartUsecase) DisplayList(ctx context.Context, sessionID string) (CartView, error) {
	c, err := u.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}

	products, err := u.products.FindByIDs(ctx, c.ProductIDs())
	if err != nil {
		return CartView{}, internal(err)
	}

	items := make([]CartLineView, 0, c.Len())
	total := decimal.Zero
	for _, l := range c.Lines() {
		p, ok := products[l.Key.ProductID]
		if !ok {
			logging.FromContext(ctx).Debug("skip stale cart line", zap.String("key", l.Key.String()))
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
		total = total.Add(subtotal)

		items = append(items, CartLineView{
			Key:             l.Key.String(),
			ProductID:       p.ID,
			Name:            p.Name,
			Price:           p.Price,
			SizeID:          l.Key.SizePtr(),
			SizeLabel:       u.sizeLabel(ctx, p, l.Key),
			Quantity:        l.Qty,
			Subtotal:        subtotal,
			SubtotalDisplay: FormatPrice(subtotal),
		})
	}

	return CartView{
		Items: items,
		CartTotal: CartTotal{
			TotalPrice:        total,
			TotalPriceDisplay: FormatPrice(total),
			ItemCount:         len(items),
			CartEmpty:         len(items) == 0,
		},
	}, nil
}

func (u *CartUsecase) sizeLabel(ctx context.Context, p model.Product, k cart.LineKey) string {
	if !k.HasSize() {
		return NoSizeLabel
	}
	for _, s := range p.Sizes {
		if s.ID == k.SizeID {
			return s.Label
		}
	}
	//対象外になったサイズ
	s, err := u.products.FindSizeByID(ctx, k.SizeID)
	if err != nil {
		return NoSizeLabel
	}
	return s.Label
}

func (u *CartUsecase) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	raw, err := u.sessions.GetCart(ctx, sessionID)
	if err != nil {
		return nil, internal(fmt.Errorf("load cart: %w", err))
	}
	c, skipped := cart.Decode(raw)
	if skipped > 0 {
		logging.FromContext(ctx).Warn("skipped malformed cart entries", zap.Int("count", skipped))
	}
	return c, nil
}

func (u *CartUsecase) summarize(ctx context.Context, c *cart.Cart) (CartTotal, error) {
	total, err := u.ComputeTotal(ctx, c)
	if err != nil {
		return CartTotal{}, err
	}
	return CartTotal{
		TotalPrice:        total,
		TotalPriceDisplay: FormatPrice(total),
		ItemCount:         c.Len(),
		CartEmpty:         c.IsEmpty(),
	}, nil
}
