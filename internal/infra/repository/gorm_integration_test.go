package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"shop/internal/domain/model"
	"shop/internal/infra/db"
	"shop/internal/infra/events"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/infra/session"
	repo "shop/internal/repository"
	"shop/internal/usecase"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return "ev-" + strconv.Itoa(g.n)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// テスト毎に一時ファイルのsqlite（外部キー有効）
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// dress(3): S(1)/M(2)、hat(5): サイズなし
func seedCatalog(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	sizes := []model.Size{{ID: 1, Label: "S"}, {ID: 2, Label: "M"}, {ID: 9, Label: "XL"}}
	require.NoError(t, gdb.Create(&sizes).Error)

	dress := model.Product{ID: 3, Name: "Summer dress", Description: "cotton", Price: decimal.NewFromInt(100000), Sizes: sizes[:2],
		Images: []model.ProductImage{
			{URL: "https://cdn.example/dress-back.webp", Position: 2},
			{URL: "https://cdn.example/dress-front.webp", Position: 1},
		}}
	hat := model.Product{ID: 5, Name: "Panama hat", Description: "straw", Price: decimal.NewFromInt(50000),
		Images: []model.ProductImage{{URL: "https://cdn.example/hat.webp"}}}
	require.NoError(t, gdb.Create(&dress).Error)
	require.NoError(t, gdb.Create(&hat).Error)
}

type placement struct {
	uc       *usecase.OrderUsecase
	sessions *session.MemoryStore
	profiles *infraRepo.ProfileGormRepository
}

func newPlacement(gdb *gorm.DB) placement {
	sessions := session.NewMemoryStore(time.Hour)
	profiles := infraRepo.NewProfileGormRepository(gdb)
	uc := usecase.NewOrderUsecase(
		infraRepo.NewTxManagerGorm(gdb),
		profiles,
		sessions,
		events.NoopPublisher{},
		&seqIDGen{},
		fixedClock{now: time.Now()},
	)
	return placement{uc: uc, sessions: sessions, profiles: profiles}
}

var contact = usecase.ContactInfo{Name: "Malika", Phone: "+998901234567", Address: "Tashkent, Chilonzor 5"}

func TestPlaceOrder_TwoLines(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	seedCatalog(t, gdb)
	p := newPlacement(gdb)

	require.NoError(t, p.sessions.SetCart(ctx, "sid", map[string]int{"3-1": 2, "5-": 1}))

	out, err := p.uc.PlaceOrder(ctx, "sid", usecase.PlaceOrderCommand{UserID: 77, Contact: contact, Comment: "gift wrap"})
	require.NoError(t, err)
	assert.True(t, out.TotalPrice.Equal(decimal.NewFromInt(250000)), out.TotalPrice.String())
	assert.Equal(t, "250 000", out.TotalPriceDisplay)

	orders := infraRepo.NewOrderGormRepository(gdb)
	o, err := orders.FindByID(ctx, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "gift wrap", o.Comment)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(250000)))
	require.Len(t, o.Items, 2)
	assert.Equal(t, "S", o.Items[0].Size.Label)
	assert.Nil(t, o.Items[1].Size)

	cart, err := p.sessions.GetCart(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestPlaceOrder_RollsBackOnMissingProduct(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	seedCatalog(t, gdb)
	p := newPlacement(gdb)

	require.NoError(t, p.sessions.SetCart(ctx, "sid", map[string]int{"3-1": 1, "42-": 1}))

	_, err := p.uc.PlaceOrder(ctx, "sid", usecase.PlaceOrderCommand{UserID: 77, Contact: contact})
	assert.True(t, errors.Is(err, usecase.ErrNotFound))

	var orderCount, itemCount int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&orderCount).Error)
	require.NoError(t, gdb.Model(&model.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)

	//カートはそのまま
	cart, err := p.sessions.GetCart(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"3-1": 1, "42-": 1}, cart)
}

func TestPlaceOrder_UsesProfileContact(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	seedCatalog(t, gdb)
	p := newPlacement(gdb)

	_, err := p.profiles.Upsert(ctx, model.UserProfile{UserID: 77, Name: "Profile name", PhoneNumber: "+998711112233", DeliveryAddress: "Bukhara"})
	require.NoError(t, err)
	require.NoError(t, p.sessions.SetCart(ctx, "sid", map[string]int{"5-": 1}))

	out, err := p.uc.PlaceOrder(ctx, "sid", usecase.PlaceOrderCommand{UserID: 77})
	require.NoError(t, err)

	o, err := infraRepo.NewOrderGormRepository(gdb).FindByID(ctx, out.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Profile name", o.Name)
	assert.Equal(t, "Bukhara", o.Address)
}

func TestOrderGormRepository_SaveStatus_KeepsFirstTimestamp(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	orders := infraRepo.NewOrderGormRepository(gdb)

	id, err := orders.Create(ctx, model.Order{UserID: 1, Name: "a", Phone: "1", Address: "x", Status: model.OrderStatusPending, TotalPrice: decimal.Zero})
	require.NoError(t, err)

	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	o, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	_, err = o.Confirm(first)
	require.NoError(t, err)
	require.NoError(t, orders.SaveStatus(ctx, o))

	//別の値で保存してもconfirmed_atは変わらない
	later := first.Add(48 * time.Hour)
	o.ConfirmedAt = &later
	require.NoError(t, orders.SaveStatus(ctx, o))

	got, err := orders.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.ConfirmedAt)
	assert.True(t, got.ConfirmedAt.Equal(first), got.ConfirmedAt.String())
	assert.Nil(t, got.RejectedAt)

	assert.True(t, errors.Is(orders.SaveStatus(ctx, model.Order{ID: 999, Status: model.OrderStatusConfirmed}), repo.ErrNotFound))
}

func TestOrderGormRepository_ListAdmin(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	orders := infraRepo.NewOrderGormRepository(gdb)

	mk := func(userID int64, name, phone string, status model.OrderStatus) {
		_, err := orders.Create(ctx, model.Order{UserID: userID, Name: name, Phone: phone, Address: "Tashkent", Status: status, TotalPrice: decimal.Zero})
		require.NoError(t, err)
	}
	mk(10, "Dilnoza", "+998900000001", model.OrderStatusPending)
	mk(11, "Bekzod", "+998900000002", model.OrderStatusConfirmed)
	mk(10, "Dilnoza", "+998900000001", model.OrderStatusConfirmed)

	items, total, err := orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 10, Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	//新しい順
	assert.Greater(t, items[0].ID, items[1].ID)

	_, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 10, Q: "dilnoza"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	uid := int64(11)
	_, total, err = orders.ListAdmin(ctx, repo.AdminOrderListFilter{Page: 1, Limit: 10, UserID: &uid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestProductGormRepository(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	seedCatalog(t, gdb)
	products := infraRepo.NewProductGormRepository(gdb)

	ok, err := products.IsSizeEligible(ctx, 3, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = products.IsSizeEligible(ctx, 3, 9)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := products.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, p.Sizes, 2)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "https://cdn.example/dress-front.webp", p.Images[0].URL)

	_, err = products.FindByID(ctx, 404)
	assert.True(t, errors.Is(err, repo.ErrNotFound))

	list, total, err := products.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 10, Q: "HAT"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(5), list[0].ID)
	require.Len(t, list[0].Images, 1)
	assert.Equal(t, "https://cdn.example/hat.webp", list[0].Images[0].URL)

	byID, err := products.FindByIDs(ctx, []int64{3, 5, 404})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
}

func TestOrderItems_RestrictProductDelete(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	seedCatalog(t, gdb)
	p := newPlacement(gdb)

	require.NoError(t, p.sessions.SetCart(ctx, "sid", map[string]int{"5-": 1}))
	_, err := p.uc.PlaceOrder(ctx, "sid", usecase.PlaceOrderCommand{UserID: 1, Contact: contact})
	require.NoError(t, err)

	//注文済みの商品は消せない
	err = gdb.Delete(&model.Product{}, 5).Error
	assert.Error(t, err)
}

func TestProductImages_CascadeOnProductDelete(t *testing.T) {
	gdb := openTestDB(t)
	seedCatalog(t, gdb)

	require.NoError(t, gdb.Delete(&model.Product{}, 5).Error)

	var n int64
	require.NoError(t, gdb.Model(&model.ProductImage{}).Where("product_id = ?", 5).Count(&n).Error)
	assert.Equal(t, int64(0), n)

	//他の商品の写真は残る
	require.NoError(t, gdb.Model(&model.ProductImage{}).Where("product_id = ?", 3).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestProfileGormRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	gdb := openTestDB(t)
	profiles := infraRepo.NewProfileGormRepository(gdb)

	_, err := profiles.FindByUserID(ctx, 5)
	assert.True(t, errors.Is(err, repo.ErrNotFound))

	_, err = profiles.Upsert(ctx, model.UserProfile{UserID: 5, Name: "A"})
	require.NoError(t, err)
	got, err := profiles.Upsert(ctx, model.UserProfile{ID: 1, UserID: 5, Name: "B", PhoneNumber: "+1"})
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	var n int64
	require.NoError(t, gdb.Model(&model.UserProfile{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestAuditLogGormRepository_List(t *testing.T) {
	gdb := openTestDB(t)
	r := infraRepo.NewAuditLogGormRepository(gdb)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := []model.AuditLog{
		{ActorUserID: 1, Action: model.AuditActionConfirmOrder, ResourceType: model.AuditResourceOrder, ResourceID: 10, CreatedAt: base},
		{ActorUserID: 1, Action: model.AuditActionRejectOrder, ResourceType: model.AuditResourceOrder, ResourceID: 11, CreatedAt: base.Add(time.Hour)},
		{ActorUserID: 2, Action: model.AuditActionRecalculateOrder, ResourceType: model.AuditResourceOrder, ResourceID: 10, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, l := range rows {
		require.NoError(t, r.Create(ctx, l))
	}

	all, err := r.List(ctx, repo.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.AuditActionRecalculateOrder, all[0].Action)

	id := int64(10)
	byOrder, err := r.List(ctx, repo.AuditLogFilter{ResourceID: &id})
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	action := model.AuditActionRejectOrder
	rejected, err := r.List(ctx, repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(11), rejected[0].ResourceID)

	from := base.Add(30 * time.Minute)
	recent, err := r.List(ctx, repo.AuditLogFilter{CreatedFrom: &from, Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, int64(10), recent[0].ResourceID)
}

func TestUserGormRepository(t *testing.T) {
	gdb := openTestDB(t)
	r := infraRepo.NewUserGormRepository(gdb)
	ctx := context.Background()

	u := &model.User{Email: " Admin@Shop.Example ", PasswordHash: "x", Role: model.RoleAdmin, IsActive: true}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.FindByEmail(ctx, "admin@shop.example")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got.TokenVersion++
	got.IsActive = false
	require.NoError(t, r.Update(ctx, got))

	again, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.TokenVersion)
	assert.False(t, again.IsActive)

	missing, err := r.FindByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
