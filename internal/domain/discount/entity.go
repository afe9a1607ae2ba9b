package discount

import (
	"github.com/shopspring/decimal"
)

// Rule is one redeemable discount code. Percentage applies to the booking subtotal;
// MaxAmount, when positive, caps the resulting discount. MinSubtotal gates eligibility.
type Rule struct {
	Code        string          `db:"code" json:"code"`
	Percentage  decimal.Decimal `db:"percentage" json:"percentage"`
	MaxAmount   decimal.Decimal `db:"max_amount" json:"max_amount"`
	MinSubtotal decimal.Decimal `db:"min_subtotal" json:"min_subtotal"`
	Active      bool            `db:"active" json:"active"`
}
