package orders

import (
	"fmt"

	"github.com/hoshigrove/chasen-backend/pkg/enums"
	pkgerrors "github.com/hoshigrove/chasen-backend/pkg/errors"
)

// allowedTransitions is the closed order state machine. Terminal states
// (completed, cancelled, refunded) have no outbound edges.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPendingPayment: {enums.OrderStatusPaid, enums.OrderStatusCancelled},
	enums.OrderStatusPaid:           {enums.OrderStatusProcessing, enums.OrderStatusCancelled, enums.OrderStatusRefunded},
	enums.OrderStatusProcessing:     {enums.OrderStatusShipped},
	enums.OrderStatusShipped:        {enums.OrderStatusInTransit},
	enums.OrderStatusInTransit:      {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:      {enums.OrderStatusCompleted},
	enums.OrderStatusCompleted:      {},
	enums.OrderStatusCancelled:      {},
	enums.OrderStatusRefunded:       {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func transitionError(from, to enums.OrderStatus) error {
	return pkgerrors.New(
		pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot transition order from %s to %s", from, to),
	).WithDetails(map[string]any{"from": from, "to": to})
}
