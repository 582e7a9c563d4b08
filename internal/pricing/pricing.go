package pricing

import (
	"math"
	"strings"
	"time"
)

const (
	weekendRate         = 0.15
	durationDiscountPct = 0.10
	dynamicFactorScarce = 1.15
	insurancePerDay     = 20.00
	scarcityThreshold   = 2
	minDurationDays     = 7
)

// Coupons is the fixed coupon -> discount percent table. It is built once at
// startup and injected read-only.
type Coupons map[string]float64

func DefaultCoupons() Coupons {
	return Coupons{
		"WELCOME10": 0.10,
		"LONGTRIP5": 0.05,
	}
}

// Percent resolves a coupon code; blank and unknown codes are worth nothing.
func (c Coupons) Percent(code string) float64 {
	if code == "" {
		return 0
	}
	return c[strings.ToUpper(code)]
}

type Quote struct {
	RentalDays       int     `json:"rental_days"`
	BaseAmount       float64 `json:"base_amount"`
	WeekendSurcharge float64 `json:"weekend_surcharge"`
	DurationDiscount float64 `json:"duration_discount"`
	DynamicFactor    float64 `json:"dynamic_factor"`
	DynamicSurcharge float64 `json:"dynamic_surcharge"`
	InsuranceFee     float64 `json:"insurance_fee"`
	CouponDiscount   float64 `json:"coupon_discount"`
	Total            float64 `json:"total"`
}

type Engine struct {
	coupons Coupons
}

func NewEngine(coupons Coupons) *Engine {
	return &Engine{coupons: coupons}
}

// Quote prices a rental window. Pure and deterministic: the caller guarantees
// end > start and supplies the category scarcity count. Every component field
// is rounded half-up to 2 decimals independently; the total is rounded once
// from the unrounded subtotal and discount so rounding errors do not compound.
func (e *Engine) Quote(dailyRate float64, start, end time.Time, insuranceSelected bool, couponCode string, availableInCategory int64) Quote {
	days := rentalDays(start, end)

	base := dailyRate * float64(days)

	weekendSurcharge := dailyRate * float64(weekendDays(start, end)) * weekendRate

	durationDiscount := 0.0
	if days >= minDurationDays {
		durationDiscount = base * durationDiscountPct
	}

	dynamicFactor := 1.0
	if availableInCategory <= scarcityThreshold {
		dynamicFactor = dynamicFactorScarce
	}
	dynamicSurcharge := base * (dynamicFactor - 1)

	insuranceFee := 0.0
	if insuranceSelected {
		insuranceFee = insurancePerDay * float64(days)
	}

	subtotal := base + weekendSurcharge + dynamicSurcharge + insuranceFee - durationDiscount
	couponDiscount := subtotal * e.coupons.Percent(couponCode)

	return Quote{
		RentalDays:       days,
		BaseAmount:       Round2(base),
		WeekendSurcharge: Round2(weekendSurcharge),
		DurationDiscount: Round2(durationDiscount),
		DynamicFactor:    dynamicFactor,
		DynamicSurcharge: Round2(dynamicSurcharge),
		InsuranceFee:     Round2(insuranceFee),
		CouponDiscount:   Round2(couponDiscount),
		Total:            Round2(subtotal - couponDiscount),
	}
}

// rentalDays bills whole days: whole hours divided by 24, ceiled, never less
// than one, so a sub-24h window is still a full day.
func rentalDays(start, end time.Time) int {
	hours := int64(end.Sub(start) / time.Hour)
	days := (hours + 23) / 24
	if days < 1 {
		days = 1
	}
	return int(days)
}

// weekendDays counts Saturdays and Sundays among the UTC calendar days from
// start's date through end's date inclusive.
func weekendDays(start, end time.Time) int {
	cursor := midnightUTC(start)
	limit := midnightUTC(end).AddDate(0, 0, 1)

	count := 0
	for cursor.Before(limit) {
		if wd := cursor.Weekday(); wd == time.Saturday || wd == time.Sunday {
			count++
		}
		cursor = cursor.AddDate(0, 0, 1)
	}
	return count
}

func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Round2 rounds half-up to 2 decimal places. Amounts are never negative here,
// so rounding half away from zero is the same thing.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
