package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"shop/internal/usecase"
)

const (
	//1回で動かせる数量の上限
	MaxQuantityDelta = 10000
	MaxPhoneLen      = 20
	MaxNameLen       = 255
	MaxCommentLen    = 2000
	//一括操作の上限
	MaxBulkIDs = 500
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AddLineRequest struct {
	ProductID Raw `json:"product_id" form:"product_id"`
	SizeID    Raw `json:"size_id" form:"size_id"`
	Quantity  Raw `json:"quantity" form:"quantity"`
}

type RemoveLineRequest struct {
	ProductID Raw `json:"product_id" form:"product_id"`
	SizeID    Raw `json:"size_id" form:"size_id"`
}

type PlaceOrderRequest struct {
	UserID  Raw    `json:"user_id" form:"user_id"`
	Name    string `json:"name" form:"name"`
	Phone   string `json:"phone" form:"phone"`
	Address string `json:"address" form:"address"`
	Comment string `json:"comment" form:"comment"`
}

type OrderIDsRequest struct {
	IDs []int64 `json:"ids"`
}

// nilは「変更しない」
type ProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParseAddLine はquantity省略時に1として扱う。負の値は減らす。
func ParseAddLine(req AddLineRequest) (usecase.AddLineCommand, error) {
	productID, err := requiredID(req.ProductID, "product_id")
	if err != nil {
		return usecase.AddLineCommand{}, err
	}
	sizeID, err := optionalID(req.SizeID, "size_id")
	if err != nil {
		return usecase.AddLineCommand{}, err
	}

	delta := int64(1)
	if req.Quantity.Present() {
		delta, err = req.Quantity.Int64()
		if err != nil {
			return usecase.AddLineCommand{}, usecase.MalformedInput("quantity must be an integer")
		}
	}
	if delta > MaxQuantityDelta || delta < -MaxQuantityDelta {
		return usecase.AddLineCommand{}, usecase.MalformedInput("quantity is out of range")
	}

	return usecase.AddLineCommand{ProductID: productID, SizeID: sizeID, Delta: int(delta)}, nil
}

func ParseRemoveLine(req RemoveLineRequest) (usecase.RemoveLineCommand, error) {
	productID, err := requiredID(req.ProductID, "product_id")
	if err != nil {
		return usecase.RemoveLineCommand{}, err
	}
	sizeID, err := optionalID(req.SizeID, "size_id")
	if err != nil {
		return usecase.RemoveLineCommand{}, err
	}
	return usecase.RemoveLineCommand{ProductID: productID, SizeID: sizeID}, nil
}

// ParsePlaceOrder は注文者を署名済みで紐づいたセッションの購入者にする。
// bodyのuser_idは一致確認だけ。連絡先の不足はusecase側でプロフィールと合わせて判断する。
func ParsePlaceOrder(req PlaceOrderRequest, sessionUserID int64) (usecase.PlaceOrderCommand, error) {
	if sessionUserID <= 0 {
		return usecase.PlaceOrderCommand{}, usecase.UserNotLinked()
	}
	userID := sessionUserID
	if req.UserID.Present() {
		id, err := req.UserID.Int64()
		if err != nil || id <= 0 {
			return usecase.PlaceOrderCommand{}, usecase.MalformedInput("invalid user_id")
		}
		if id != userID {
			return usecase.PlaceOrderCommand{}, usecase.Forbidden("user_id does not match the linked user")
		}
	}

	contact := usecase.ContactInfo{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if err := checkContactLen(contact.Name, contact.Phone); err != nil {
		return usecase.PlaceOrderCommand{}, err
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return usecase.PlaceOrderCommand{}, usecase.MalformedInput("comment too long")
	}

	return usecase.PlaceOrderCommand{UserID: userID, Contact: contact, Comment: comment}, nil
}

// ParseOrderIDs は重複を落として順序を保つ。
func ParseOrderIDs(req OrderIDsRequest) (usecase.OrderIDsCommand, error) {
	if len(req.IDs) == 0 {
		return usecase.OrderIDsCommand{}, usecase.MalformedInput("ids is required")
	}
	if len(req.IDs) > MaxBulkIDs {
		return usecase.OrderIDsCommand{}, usecase.MalformedInput("too many ids")
	}

	seen := make(map[int64]struct{}, len(req.IDs))
	ids := make([]int64, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id <= 0 {
			return usecase.OrderIDsCommand{}, usecase.MalformedInput("ids must be positive")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return usecase.OrderIDsCommand{IDs: ids}, nil
}

func ParseProfile(req ProfileRequest, userID int64) (usecase.SaveProfileCommand, error) {
	cmd := usecase.SaveProfileCommand{
		UserID:  userID,
		Name:    trimmed(req.Name),
		Phone:   trimmed(req.Phone),
		Address: trimmed(req.Address),
	}

	var name, phone string
	if cmd.Name != nil {
		name = *cmd.Name
	}
	if cmd.Phone != nil {
		phone = *cmd.Phone
	}
	if err := checkContactLen(name, phone); err != nil {
		return usecase.SaveProfileCommand{}, err
	}
	return cmd, nil
}

func ParseLogin(req LoginRequest) (usecase.LoginInput, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return usecase.LoginInput{}, usecase.MalformedInput("email and password are required")
	}
	if !emailRe.MatchString(email) {
		return usecase.LoginInput{}, usecase.MalformedInput("invalid email")
	}
	return usecase.LoginInput{Email: email, Password: req.Password}, nil
}

func requiredID(r Raw, field string) (int64, error) {
	if !r.Present() {
		return 0, usecase.MalformedInput(field + " is required")
	}
	id, err := r.Int64()
	if err != nil || id <= 0 {
		return 0, usecase.MalformedInput("invalid " + field)
	}
	return id, nil
}

func optionalID(r Raw, field string) (*int64, error) {
	if !r.Present() {
		return nil, nil
	}
	id, err := r.Int64()
	if err != nil || id <= 0 {
		return nil, usecase.MalformedInput("invalid " + field)
	}
	return &id, nil
}

func checkContactLen(name, phone string) error {
	if utf8.RuneCountInString(name) > MaxNameLen {
		return usecase.MalformedInput("name too long")
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLen {
		return usecase.MalformedInput("phone too long")
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
