// cart/checkout.go
package cart

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	shell_errors "github.com/jeevanhealth/shell/errors"
	logger "github.com/jeevanhealth/shell/logging"
	"github.com/jeevanhealth/shell/model"
	"github.com/jeevanhealth/shell/queries"
	"github.com/jeevanhealth/shell/util"
)

// CheckoutDetails is the customer-supplied part of a booking.
type CheckoutDetails struct {
	CustomerName string
	Phone        string
	Address      string
	PatientID    string
}

// Checkout submits the cart as a booking mutation. On success the cart is
// cleared; on failure it is left untouched and no caches are invalidated
// (the queries layer only invalidates after the gateway confirms).
func (s *Store) Checkout(ctx context.Context, q *queries.Client, details CheckoutDetails) (string, error) {
	items := s.Items()
	if len(items) == 0 {
		return "", shell_errors.ErrEmptyCart
	}

	req := model.BookingRequest{
		Reference:    uuid.NewString(),
		CustomerName: details.CustomerName,
		Phone:        details.Phone,
		Address:      details.Address,
		PatientID:    details.PatientID,
		Items:        items,
		TotalPrice:   s.TotalPrice(),
	}

	ref, err := q.SubmitBooking(ctx, req)
	if err != nil {
		return "", err
	}

	if err := s.Clear(); err != nil {
		// The booking went through; a failed persist only delays the empty
		// cart until the next mutation.
		logger.Warn("Cart clear after checkout failed", zap.Error(err))
	}
	if s.bus != nil {
		s.bus.Publish(ctx, util.EventCartCheckedOut, ref)
	}
	return ref, nil
}
