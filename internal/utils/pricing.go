package utils

import (
	"time"

	"drivehub-backend/internal/domain"
)

// Pricing rates. Percentages are carried as integer numerators over 100 so
// every intermediate step stays in exact integer cents; rounding happens only
// once, when a final amount is produced (half-up, to the currency minor unit).
const (
	platformFeePercent       = 10
	earlyReturnRefundPercent = 30
	excessFeePercent         = 120
	rejectionRefundPercent   = 90

	hoursPerDay = 24
)

// PriceQuote is the creation-time price breakdown for a rental window.
type PriceQuote struct {
	Days             int32
	BasePriceCents   int64
	PlatformFeeCents int64
	TotalCents       int64
}

// applyRate multiplies cents by percent/100 rounding half-up at the end.
func applyRate(cents int64, percent int64) int64 {
	raw := cents * percent
	if raw >= 0 {
		return (raw + 50) / 100
	}
	return (raw - 50) / 100
}

// RentalDays returns the chargeable duration units for a window: the number
// of started 24-hour periods, minimum 1.
func RentalDays(start, end time.Time) int32 {
	if !end.After(start) {
		return 1
	}
	hours := end.Sub(start).Hours()
	days := int32(hours / hoursPerDay)
	if hours > float64(days)*hoursPerDay {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// QuoteRental computes base price, platform fee and total for a window.
func QuoteRental(dailyRateCents int64, start, end time.Time) PriceQuote {
	days := RentalDays(start, end)
	base := dailyRateCents * int64(days)
	fee := applyRate(base, platformFeePercent)
	return PriceQuote{
		Days:             days,
		BasePriceCents:   base,
		PlatformFeeCents: fee,
		TotalCents:       base + fee,
	}
}

// ExtensionDays returns the number of additional chargeable days when the end
// of an ongoing booking moves from currentEnd to newEnd (ceiling, zero when
// newEnd does not extend the window).
func ExtensionDays(currentEnd, newEnd time.Time) int32 {
	if !newEnd.After(currentEnd) {
		return 0
	}
	hours := newEnd.Sub(currentEnd).Hours()
	days := int32(hours / hoursPerDay)
	if hours > float64(days)*hoursPerDay {
		days++
	}
	return days
}

// QuoteExtension prices the added days the same way as creation.
func QuoteExtension(dailyRateCents int64, currentEnd, newEnd time.Time) PriceQuote {
	days := ExtensionDays(currentEnd, newEnd)
	base := dailyRateCents * int64(days)
	fee := applyRate(base, platformFeePercent)
	return PriceQuote{
		Days:             days,
		BasePriceCents:   base,
		PlatformFeeCents: fee,
		TotalCents:       base + fee,
	}
}

// CancellationRefundPercent is the refund step function for a paid booking
// cancelled before its start: >=7 days out 100%, >=5 days 50%, >=3 days 30%,
// otherwise nothing. Boundaries are inclusive on the higher tier.
func CancellationRefundPercent(now, start time.Time) int64 {
	until := start.Sub(now)
	switch {
	case until >= 7*hoursPerDay*time.Hour:
		return 100
	case until >= 5*hoursPerDay*time.Hour:
		return 50
	case until >= 3*hoursPerDay*time.Hour:
		return 30
	default:
		return 0
	}
}

// CancellationRefund returns the refundable amount for cancelling a paid
// booking at time now.
func CancellationRefund(totalAmountCents int64, now, start time.Time) int64 {
	return applyRate(totalAmountCents, CancellationRefundPercent(now, start))
}

// UnusedDays counts whole unused days when the car comes back before the
// agreed end. Partial days are not refunded.
func UnusedDays(agreedEnd, actualReturn time.Time) int32 {
	if !agreedEnd.After(actualReturn) {
		return 0
	}
	return int32(agreedEnd.Sub(actualReturn).Hours() / hoursPerDay)
}

// ExcessDays counts started days past the agreed end on a late return.
func ExcessDays(agreedEnd, actualReturn time.Time) int32 {
	if !actualReturn.After(agreedEnd) {
		return 0
	}
	hours := actualReturn.Sub(agreedEnd).Hours()
	days := int32(hours / hoursPerDay)
	if hours > float64(days)*hoursPerDay {
		days++
	}
	return days
}

// EarlyReturnRefund refunds 30% of the daily rate per unused day.
func EarlyReturnRefund(dailyRateCents int64, unusedDays int32) int64 {
	return applyRate(dailyRateCents*int64(unusedDays), earlyReturnRefundPercent)
}

// ExcessFee charges 120% of the daily rate per excess day.
func ExcessFee(dailyRateCents int64, excessDays int32) int64 {
	return applyRate(dailyRateCents*int64(excessDays), excessFeePercent)
}

// RejectionRefund is the renter's share when the owner rejects an already
// paid booking. The remaining 10% stays with the platform.
func RejectionRefund(totalAmountCents int64) int64 {
	return applyRate(totalAmountCents, rejectionRefundPercent)
}

// UnlockTime is when an owner's locked earnings become releasable: the later
// of the cancellation-risk window (start minus 3 days) and the early-return
// refund window (start plus half the rental, rounded up to whole days).
func UnlockTime(start time.Time, rentalDays int32) time.Time {
	halfDays := (rentalDays + 1) / 2
	a := start.Add(-3 * hoursPerDay * time.Hour)
	b := start.Add(time.Duration(halfDays) * hoursPerDay * time.Hour)
	if a.After(b) {
		return a
	}
	return b
}

// ReturnSettlement resolves the early/late arithmetic for a confirmed return.
// Exactly one of refund and excess fee is non-zero for a single return event.
func ReturnSettlement(b *domain.Booking, actualReturn time.Time) (refundCents int64, excessDays int32, excessFeeCents int64) {
	if unused := UnusedDays(b.EndTime, actualReturn); unused > 0 {
		return EarlyReturnRefund(b.DailyRateCents, unused), 0, 0
	}
	excessDays = ExcessDays(b.EndTime, actualReturn)
	if excessDays > 0 {
		excessFeeCents = ExcessFee(b.DailyRateCents, excessDays)
	}
	return 0, excessDays, excessFeeCents
}
