package matching

import "nexusbook/domain"

// The Reject* constants are the human-readable reason strings attached to a
// rejected SubmissionResult. The core never returns a Go error for a business
// rejection; these strings are what transport/httpapi surfaces.
const (
	RejectBadQuantity     = "quantity must be positive"
	RejectBadPrice        = "price must be positive for limit, ioc and fok orders"
	RejectUnknownType     = "unknown order type"
	RejectUnknownSide     = "unknown order side"
	RejectInsufficientFOK = "insufficient resting liquidity to fill the order"
)

// Validate checks an incoming order against the taxonomy in spec §4.3.4,
// before any book mutation is attempted. An empty return means the order is
// admissible; matching may proceed.
func Validate(order *domain.Order) string {
	switch order.Side {
	case domain.SideBuy, domain.SideSell:
	default:
		return RejectUnknownSide
	}

	switch order.Type {
	case domain.OrderTypeLimit, domain.OrderTypeMarket, domain.OrderTypeIOC, domain.OrderTypeFOK:
	default:
		return RejectUnknownType
	}

	if order.Quantity <= 0 {
		return RejectBadQuantity
	}

	if order.Type != domain.OrderTypeMarket && order.Price <= 0 {
		return RejectBadPrice
	}

	return ""
}
