package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qasr/qasr-api/internal/domain/discount"
	"github.com/qasr/qasr-api/internal/domain/hall"
	"github.com/qasr/qasr-api/internal/domain/vendor"
)

// VATRate is the fixed 15% Saudi VAT. It is a property of the jurisdiction this
// system operates in, not a per-booking setting.
var VATRate = decimal.RequireFromString("0.15")

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// TariffSource resolves hall rate cards
type TariffSource interface {
	GetTariff(ctx context.Context, hallID uuid.UUID, segment hall.Segment) (*hall.Tariff, error)
}

// ServiceItemSource resolves vendor service items by id
type ServiceItemSource interface {
	ListServiceItems(ctx context.Context, ids []uuid.UUID) ([]vendor.ServiceItem, error)
}

// DiscountSource resolves discount codes; unknown codes yield (nil, nil)
type DiscountSource interface {
	GetRule(ctx context.Context, code string) (*discount.Rule, error)
}

// PricingEngine derives a deterministic price breakdown from tariffs, selected
// services, discount codes and the fixed VAT rate. All monetary math is decimal
// and every intermediate result is rounded to 2 places before the next step.
type PricingEngine struct {
	tariffs   TariffSource
	items     ServiceItemSource
	discounts DiscountSource
	currency  string
}

func NewPricingEngine(tariffs TariffSource, items ServiceItemSource, discounts DiscountSource, currency string) *PricingEngine {
	return &PricingEngine{tariffs: tariffs, items: items, discounts: discounts, currency: currency}
}

// isWeekend follows the Saudi week: Friday and Saturday
func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// CalculateHallCost prices the hall window: segment rate per hour times duration,
// weekend rate on Friday/Saturday. Fails with ErrTariffUnavailable when the
// segment has no active rate card.
func (p *PricingEngine) CalculateHallCost(ctx context.Context, hallID uuid.UUID, segment hall.Segment, start, end time.Time) (decimal.Decimal, error) {
	tariff, err := p.tariffs.GetTariff(ctx, hallID, segment)
	if err != nil {
		return decimal.Zero, err
	}
	if !tariff.Active {
		return decimal.Zero, fmt.Errorf("%w: segment %s of hall %s", ErrTariffUnavailable, segment, hallID)
	}

	rate := tariff.WeekdayRate
	if isWeekend(start) {
		rate = tariff.WeekendRate
	}

	minutes := decimal.NewFromInt(int64(end.Sub(start) / time.Minute))
	hours := minutes.Div(sixty)
	return rate.Mul(hours).Round(2), nil
}

// ResolveServiceItems returns the available service items among the requested
// ids. Unknown and unavailable ids are silently dropped, not errored.
func (p *PricingEngine) ResolveServiceItems(ctx context.Context, ids []uuid.UUID) ([]vendor.ServiceItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	items, err := p.items.ListServiceItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	available := items[:0]
	for _, it := range items {
		if it.IsAvailable {
			available = append(available, it)
		}
	}
	return available, nil
}

// CalculateVendorServicesCost sums the effective prices of the resolved items
func (p *PricingEngine) CalculateVendorServicesCost(items []vendor.ServiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.EffectivePrice())
	}
	return total.Round(2)
}

// ApplyDiscount resolves a code against the injected rule lookup and returns
// the discount amount. Unknown codes and unmet eligibility yield zero, never
// an error; the discount can never exceed the amount itself.
func (p *PricingEngine) ApplyDiscount(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	if code == "" {
		return decimal.Zero, nil
	}
	rule, err := p.discounts.GetRule(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	if rule == nil {
		return decimal.Zero, nil
	}
	if rule.MinSubtotal.IsPositive() && amount.LessThan(rule.MinSubtotal) {
		return decimal.Zero, nil
	}

	discounted := amount.Mul(rule.Percentage).Div(hundred).Round(2)
	if rule.MaxAmount.IsPositive() && discounted.GreaterThan(rule.MaxAmount) {
		discounted = rule.MaxAmount
	}
	if discounted.GreaterThan(amount) {
		discounted = amount
	}
	return discounted, nil
}

// CalculateVat returns the flat 15% VAT of the input amount
func (p *PricingEngine) CalculateVat(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(VATRate).Round(2)
}

// QuoteInput identifies what is being priced
type QuoteInput struct {
	HallID           uuid.UUID
	GenderPreference hall.Segment
	Start            time.Time
	End              time.Time
	ServiceItemIDs   []uuid.UUID
	DiscountCode     string
}

// Quote composes the full breakdown in contract order:
// hall cost, services cost, subtotal, discount, taxable amount, VAT, total.
// Discount applies before tax.
func (p *PricingEngine) Quote(ctx context.Context, in QuoteInput) (*PriceBreakdown, error) {
	if !in.Start.Before(in.End) {
		return nil, fmt.Errorf("%w: start time must be before end time", ErrValidation)
	}

	hallCost, err := p.CalculateHallCost(ctx, in.HallID, in.GenderPreference, in.Start, in.End)
	if err != nil {
		return nil, err
	}

	items, err := p.ResolveServiceItems(ctx, in.ServiceItemIDs)
	if err != nil {
		return nil, err
	}
	servicesCost := p.CalculateVendorServicesCost(items)

	return p.Compose(ctx, hallCost, servicesCost, in.DiscountCode)
}

// Compose builds a breakdown from already-computed hall and services costs.
// Used by Quote and by re-quoting after vendor replacement.
func (p *PricingEngine) Compose(ctx context.Context, hallCost, servicesCost decimal.Decimal, discountCode string) (*PriceBreakdown, error) {
	subtotal := hallCost.Add(servicesCost).Round(2)

	discountAmount, err := p.ApplyDiscount(ctx, subtotal, discountCode)
	if err != nil {
		return nil, err
	}

	taxable := subtotal.Sub(discountAmount).Round(2)
	taxAmount := p.CalculateVat(taxable)
	total := taxable.Add(taxAmount).Round(2)

	return &PriceBreakdown{
		HallCost:           hallCost,
		VendorServicesCost: servicesCost,
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		TaxableAmount:      taxable,
		TaxRate:            VATRate,
		TaxAmount:          taxAmount,
		TotalAmount:        total,
		Currency:           p.currency,
	}, nil
}
