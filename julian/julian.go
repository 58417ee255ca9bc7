// Package julian converts between calendar dates and Julian Day numbers.
//
// The calendar is proleptic Gregorian over the whole supported range;
// there is no Julian-calendar cutover.  JD is a continuous count of days
// since -4713 November 24, 12h (proleptic Gregorian); half-integer values
// fall on civil midnight.
package julian

import (
	"fmt"
	"math"
	"time"

	"github.com/stotz/sweph/internal/apperr"
)

// Epochs.
const (
	J2000 = 2451545.0 // 2000 January 1, 12h TT
	J1900 = 2415020.0 // 1900 January 0, 12h
	B1950 = 2433282.4235

	DaysPerCentury = 36525.0
)

// Date is a calendar date with time of day as a decimal hour.  Year is
// the signed astronomical year, 0 meaning 1 BCE.
type Date struct {
	Year  int
	Month int
	Day   int
	Hour  float64
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether y is a leap year under proleptic Gregorian
// rules.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	if m == 2 && IsLeapYear(y) {
		return 29
	}
	return monthDays[m]
}

// Validate checks the calendar fields of d.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: month %d", apperr.ErrInvalidDate, d.Month)
	}
	if d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return fmt.Errorf("%w: day %d of %d-%02d",
			apperr.ErrInvalidDate, d.Day, d.Year, d.Month)
	}
	if d.Hour < 0 || d.Hour >= 24 {
		return fmt.Errorf("%w: hour %g", apperr.ErrInvalidDate, d.Hour)
	}
	return nil
}

// FromGregorian returns the Julian Day for a proleptic Gregorian date.
func FromGregorian(y, m, d int, hour float64) float64 {
	yf, mf := float64(y), float64(m)
	if m <= 2 {
		yf--
		mf += 12
	}
	a := math.Floor(yf / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*(yf+4716)) +
		math.Floor(30.6001*(mf+1)) + float64(d) + hour/24 + b - 1524.5
}

// FromDate is FromGregorian on a Date value, with validation.
func FromDate(d Date) (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return FromGregorian(d.Year, d.Month, d.Day, d.Hour), nil
}

// ToGregorian inverts FromGregorian.
func ToGregorian(jd float64) Date {
	z, f := math.Modf(jd + .5)
	alpha := math.Floor((z - 1867216.25) / 36524.25)
	a := z + 1 + alpha - math.Floor(alpha/4)
	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)
	day := b - d - math.Floor(30.6001*e)
	m := int(e) - 1
	if e >= 14 {
		m = int(e) - 13
	}
	y := int(c) - 4716
	if m <= 2 {
		y++
	}
	return Date{Year: y, Month: m, Day: int(day), Hour: f * 24}
}

// FromTime converts a UTC time.Time to a Julian Day.
func FromTime(t time.Time) float64 {
	return 2440587.5 + float64(t.UnixNano())/8.64e13
}

// Centuries returns Julian centuries since J2000.0.
func Centuries(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

// DayOfYear returns the ordinal day of the year, 1 for January 1.
func DayOfYear(y, m, d int) int {
	k := 2
	if IsLeapYear(y) {
		k = 1
	}
	return 275*m/9 - k*((m+9)/12) + d - 30
}

// DecimalYear returns the calendar year of jd as a fraction, using the
// actual year length.
func DecimalYear(jd float64) float64 {
	d := ToGregorian(jd)
	yearLen := 365.0
	if IsLeapYear(d.Year) {
		yearLen = 366
	}
	doy := float64(DayOfYear(d.Year, d.Month, d.Day)-1) + d.Hour/24
	return float64(d.Year) + doy/yearLen
}
