package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDuplicatePhone       = errors.New("phone already registered")
	ErrCodeNotFound         = errors.New("registration code not found or expired")
	ErrNotVerified          = errors.New("registration code not verified yet")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidCredentials   = errors.New("invalid phone or password")
	ErrWrongPassword        = errors.New("current password is wrong")
	ErrUserNotFound         = errors.New("user not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrCourseUnavailable    = errors.New("course is not active")
	ErrAlreadyEnrolled      = errors.New("already enrolled")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrAmountTooSmall       = errors.New("amount below minimum")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid course status")
	ErrInvalidLevel         = errors.New("invalid course level")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrInvalidPrice         = errors.New("price cannot be negative")
)

// BalanceError carries the amounts behind ErrInsufficientBalance.
type BalanceError struct {
	Required int64
	Current  int64
}

func (e *BalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d, current %d", e.Required, e.Current)
}

func (e *BalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
