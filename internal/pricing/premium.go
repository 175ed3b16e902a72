// Package pricing computes the post-expiry premium price curve for domain
// names. The oracle is a pure function of its parameters and the timestamps
// it is given: repeated calls with the same inputs are bit-identical, so
// input-bound checks, chart plotting, and transaction-time validation always
// agree.
package pricing

import (
	"math"
	"time"
)

// Oracle holds the fixed curve parameters. The premium opens a grace period
// after expiry, starts at StartPremiumUSD, halves every 24 hours, and is
// offset so it reaches exactly zero when the premium period closes.
type Oracle struct {
	GracePeriod     time.Duration
	PremiumPeriod   time.Duration
	StartPremiumUSD float64
}

// Default returns the production curve: 90 days of grace, a 21-day premium
// window, and a 100M USD starting premium.
func Default() Oracle {
	return Oracle{
		GracePeriod:     90 * 24 * time.Hour,
		PremiumPeriod:   21 * 24 * time.Hour,
		StartPremiumUSD: 100_000_000,
	}
}

// ReleasedDate is the instant the domain becomes claimable and the premium
// window opens.
func (o Oracle) ReleasedDate(expiry time.Time) time.Time {
	return expiry.Add(o.GracePeriod)
}

// ZeroPremiumDate is the instant the premium reaches zero.
func (o Oracle) ZeroPremiumDate(expiry time.Time) time.Time {
	return o.ReleasedDate(expiry).Add(o.PremiumPeriod)
}

// InPremiumPeriod reports whether at falls inside the half-open window
// [ReleasedDate, ZeroPremiumDate).
func (o Oracle) InPremiumPeriod(expiry, at time.Time) bool {
	return !at.Before(o.ReleasedDate(expiry)) && at.Before(o.ZeroPremiumDate(expiry))
}

// PremiumUSD returns the instantaneous premium at the given time. Before the
// window opens it returns the full starting value; at or after the window
// close it returns zero.
func (o Oracle) PremiumUSD(expiry, at time.Time) float64 {
	released := o.ReleasedDate(expiry)
	elapsedDays := at.Sub(released).Hours() / 24
	if elapsedDays < 0 {
		elapsedDays = 0
	}
	totalDays := o.PremiumPeriod.Hours() / 24
	if elapsedDays >= totalDays {
		return 0
	}

	// The raw halving curve never quite reaches zero, so the end value is
	// subtracted out to pin the close of the window at exactly zero.
	endOffset := o.StartPremiumUSD * math.Pow(0.5, totalDays)
	premium := o.StartPremiumUSD*math.Pow(0.5, elapsedDays) - endOffset
	if premium < 0 {
		return 0
	}
	return premium
}

// PricePoint is one sample of the premium curve.
type PricePoint struct {
	Time time.Time
	USD  float64
}

// CurvePoints samples the premium curve from the released date through the
// zero-premium date at the given step. Chart plotting and date-picker bounds
// consume these samples so they agree exactly with PremiumUSD.
func (o Oracle) CurvePoints(expiry time.Time, step time.Duration) []PricePoint {
	if step <= 0 {
		return nil
	}
	released := o.ReleasedDate(expiry)
	end := o.ZeroPremiumDate(expiry)

	var points []PricePoint
	for t := released; !t.After(end); t = t.Add(step) {
		points = append(points, PricePoint{Time: t, USD: o.PremiumUSD(expiry, t)})
	}
	if last := points[len(points)-1]; last.Time.Before(end) {
		points = append(points, PricePoint{Time: end, USD: 0})
	}
	return points
}
