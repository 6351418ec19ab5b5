package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth       = errors.New("missing authorization")
	ErrEmptySubject    = errors.New("missing subject")
	ErrTokenInvalid    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("not allowed")

	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryInUse     = errors.New("category is still referenced by products")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrPasswordMismatch  = errors.New("password mismatch")

	ErrTxConflict              = errors.New("transaction conflict")
	ErrStoreUnavailable        = errors.New("store unavailable")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
)

// InsufficientStockError reports which product failed the stock check and how
// many units were still available at the time of the check.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Available int32
	Requested int32
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %q (%s): requested %d, available %d",
		e.Name,
		e.ProductID,
		e.Requested,
		e.Available,
	)
}

func (e InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type ProductNotFoundError struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %q (%s) no longer exists", e.Name, e.ProductID)
}

func (e ProductNotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// UpstreamError preserves the status a downstream service already assigned to
// a failure, so proxied rejections keep their original HTTP mapping.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status=%d message=%s", e.StatusCode, e.Message)
}

// StatusCode maps service errors to the HTTP status reported to clients.
func StatusCode(err error) int {
	var upstream UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode
	}
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrEmptyAuth),
		errors.Is(err, ErrEmptySubject),
		errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrCategoryInUse),
		errors.Is(err, ErrInvalidStatusTransition),
		errors.Is(err, ErrTxConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrInvalidOrderStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
