// Package timecalc holds the elapsed-time arithmetic shared by the event
// engine and the live session tracker. Every function is pure.
package timecalc

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// LunchDuration returns end-start, or zero when either end is missing.
func LunchDuration(start, end *time.Time) time.Duration {
	if start == nil || end == nil {
		return 0
	}
	return end.Sub(*start)
}

// NetWorked is the time between entry and until with the lunch taken out.
func NetWorked(entry, until time.Time, lunch time.Duration) time.Duration {
	return until.Sub(entry) - lunch
}

// WorkedHours converts net worked time to hours rounded to two decimals.
// The rounding applies to the exact binary value of the quotient, so a
// quotient stored just above or below a half cent rounds the way it lies.
func WorkedHours(net time.Duration) float64 {
	h := net.Seconds() / 3600
	exact, err := decimal.NewFromString(strconv.FormatFloat(h, 'f', 40, 64))
	if err != nil {
		return math.RoundToEven(h*100) / 100
	}
	return exact.RoundBank(2).InexactFloat64()
}

// OvertimeMinutes is the whole number of minutes worked beyond the shift, never negative.
func OvertimeMinutes(net time.Duration, shiftHours float64) int {
	extra := math.Max(0, net.Seconds()-shiftHours*3600)
	return RoundMinutes(time.Duration(extra * float64(time.Second)))
}

// RoundMinutes rounds a duration to whole minutes, ties to even.
func RoundMinutes(d time.Duration) int {
	return int(math.RoundToEven(d.Seconds() / 60))
}

// ShiftDuration converts a shift length in hours to a duration.
func ShiftDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// FloorZero clamps d at zero and reports whether d had run out (d <= 0).
func FloorZero(d time.Duration) (time.Duration, bool) {
	if d <= 0 {
		return 0, true
	}
	return d, false
}

// Clock formats a duration as HH:MM:SS for display, ignoring its sign.
func Clock(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
