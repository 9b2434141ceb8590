package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"shop/internal/domain/model"
)

var (
	//参照先（商品/サイズ/注文）が無い
	ErrNotFound = errors.New("not found")
	//商品で選べないサイズ
	ErrInvalidSelection = errors.New("invalid selection")
	//注文時に連絡先が足りない
	ErrIncompleteContact = errors.New("incomplete contact")
	//空のカートで注文
	ErrEmptyCart = errors.New("empty cart")
	//境界で読めない入力
	ErrMalformedInput = errors.New("malformed input")
	//注文作成中のDB失敗（rollback済み）
	ErrOrderPlacementFailed = errors.New("order placement failed")
	//CONFIRMEDとREJECTEDの行き来
	ErrInvalidTransition = model.ErrInvalidTransition
	//401
	ErrUnauthorized = errors.New("unauthorized")
	//403
	ErrForbidden = errors.New("forbidden")
	//500
	ErrInternal = errors.New("internal error")
)

// HTTPError はhandlerでそのままレスポンスにできるエラー。
// Errに分類用のsentinelと原因を持つ。
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// kindとcauseの両方でerrors.Isできるようにする
func newKindError(status int, kind error, message string, cause error) error {
	err := kind
	if cause != nil {
		err = errors.Join(kind, cause)
	}
	return &HTTPError{Status: status, Message: message, Err: err}
}

func notFound(message string) error {
	return newKindError(http.StatusNotFound, ErrNotFound, message, nil)
}

func invalidSelection(message string) error {
	return newKindError(http.StatusBadRequest, ErrInvalidSelection, message, nil)
}

func incompleteContact(message string) error {
	return newKindError(http.StatusBadRequest, ErrIncompleteContact, message, nil)
}

func emptyCart() error {
	return newKindError(http.StatusBadRequest, ErrEmptyCart, "cart is empty", nil)
}

// MalformedInput はvalidatorからも使う
func MalformedInput(message string) error {
	return newKindError(http.StatusBadRequest, ErrMalformedInput, message, nil)
}

func placementFailed(cause error) error {
	return newKindError(http.StatusInternalServerError, ErrOrderPlacementFailed, "order placement failed", cause)
}

func invalidTransition(message string) error {
	return newKindError(http.StatusConflict, ErrInvalidTransition, message, nil)
}

// UserNotLinked は購入者がセッションに紐づいていないとき
func UserNotLinked() error {
	return newKindError(http.StatusUnauthorized, ErrUnauthorized, "user is not linked", nil)
}

func Forbidden(message string) error {
	return newKindError(http.StatusForbidden, ErrForbidden, message, nil)
}

func unauthorized() error {
	return newKindError(http.StatusUnauthorized, ErrUnauthorized, "unauthorized", nil)
}

func internal(cause error) error {
	return newKindError(http.StatusInternalServerError, ErrInternal, "internal error", cause)
}
