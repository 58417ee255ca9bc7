// Package timescale converts between the time scales used in ephemeris
// work: UT1, TT, TDB, UTC and TAI.
//
// Delta T (TT - UT1) follows a piecewise polynomial model.  From 1972 on
// it is derived from the leap second table as TAI-UTC + 32.184 s; the
// UT1-UTC difference (under 0.9 s) is not modelled.
package timescale

import (
	"fmt"
	"math"

	"github.com/stotz/sweph/internal/apperr"
	"github.com/stotz/sweph/julian"
)

// TT - TAI in seconds, fixed by definition.
const TTMinusTAI = 32.184

const secPerDay = 86400.0

// leapSeconds maps the UTC Julian Day a leap second took effect to the
// cumulative TAI-UTC offset from that instant.  Ascending order.
var leapSeconds = []struct {
	jd  float64
	off float64
}{
	{2441317.5, 10}, // 1972-01-01
	{2441499.5, 11}, // 1972-07-01
	{2441683.5, 12}, // 1973-01-01
	{2442048.5, 13}, // 1974-01-01
	{2442413.5, 14}, // 1975-01-01
	{2442778.5, 15}, // 1976-01-01
	{2443144.5, 16}, // 1977-01-01
	{2443509.5, 17}, // 1978-01-01
	{2443874.5, 18}, // 1979-01-01
	{2444239.5, 19}, // 1980-01-01
	{2444786.5, 20}, // 1981-07-01
	{2445151.5, 21}, // 1982-07-01
	{2445516.5, 22}, // 1983-07-01
	{2446247.5, 23}, // 1985-07-01
	{2447161.5, 24}, // 1988-01-01
	{2447892.5, 25}, // 1990-01-01
	{2448257.5, 26}, // 1991-01-01
	{2448804.5, 27}, // 1992-07-01
	{2449169.5, 28}, // 1993-07-01
	{2449534.5, 29}, // 1994-07-01
	{2450083.5, 30}, // 1996-01-01
	{2450630.5, 31}, // 1997-07-01
	{2451179.5, 32}, // 1999-01-01
	{2453736.5, 33}, // 2006-01-01
	{2454832.5, 34}, // 2009-01-01
	{2456109.5, 35}, // 2012-07-01
	{2457204.5, 36}, // 2015-07-01
	{2457754.5, 37}, // 2017-01-01
}

// TAIMinusUTC returns the cumulative leap second count at the given UTC
// Julian Day.  Before 1972 it returns the initial 10 s offset.
func TAIMinusUTC(jdUTC float64) float64 {
	off := leapSeconds[0].off
	for _, ls := range leapSeconds {
		if jdUTC < ls.jd {
			break
		}
		off = ls.off
	}
	return off
}

func checkRange(jd float64) error {
	if jd < -2e6 || jd > 1e8 {
		return fmt.Errorf("%w: jd %g", apperr.ErrJDOutOfRange, jd)
	}
	return nil
}

// DeltaT returns TT - UT1 in seconds at the given Julian Day (UT).
func DeltaT(jd float64) float64 {
	y := julian.DecimalYear(jd)
	switch {
	case y >= 1972:
		return TAIMinusUTC(jd) + TTMinusTAI
	case y >= 1955:
		t := y - 1955
		return 31.1 + 0.4063*t + 0.01466*t*t
	case y >= 1900:
		t := y - 1900
		return -2.7 + 2.217094*t - 0.0636571*t*t + 0.00062762*t*t*t
	case y >= 1860:
		t := y - 1860
		return 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*t*t*t -
			0.0004473624*t*t*t*t + t*t*t*t*t/233174
	case y >= 1800:
		t := y - 1800
		return 13.72 - 0.332447*t + 0.0068612*t*t + 0.0041116*t*t*t -
			0.00037436*t*t*t*t + 0.0000121272*t*t*t*t*t -
			0.0000001699*t*t*t*t*t*t + 0.000000000875*t*t*t*t*t*t*t
	case y >= 1700:
		t := y - 1700
		return 8.83 + 0.1603*t - 0.0059285*t*t + 0.00013336*t*t*t -
			t*t*t*t/1174000
	case y >= 1600:
		t := y - 1600
		return 120 - 0.9808*t - 0.01532*t*t + t*t*t/7129
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// UTToTT converts a UT1 Julian Day to TT.
func UTToTT(jdUT float64) (float64, error) {
	if err := checkRange(jdUT); err != nil {
		return 0, err
	}
	return jdUT + DeltaT(jdUT)/secPerDay, nil
}

// TTToUT converts a TT Julian Day to UT1.  Delta T is tabulated against
// UT, so the inverse is found by iteration.
func TTToUT(jdTT float64) (float64, error) {
	if err := checkRange(jdTT); err != nil {
		return 0, err
	}
	ut := jdTT - DeltaT(jdTT)/secPerDay
	for i := 0; i < 5; i++ {
		next := jdTT - DeltaT(ut)/secPerDay
		if math.Abs(next-ut) < 1e-8 {
			return next, nil
		}
		ut = next
	}
	return ut, nil
}

// tdbArg returns the dominant periodic argument g, the Earth's mean
// anomaly, in radians.
func tdbArg(jd float64) float64 {
	g := 357.53 + 0.98560028*(jd-julian.J2000)
	g = math.Mod(g, 360)
	return g * math.Pi / 180
}

// TTToTDB converts TT to TDB.  The difference stays under 2 ms.
func TTToTDB(jdTT float64) float64 {
	g := tdbArg(jdTT)
	return jdTT + (0.001658*math.Sin(g)+0.000014*math.Sin(2*g))/secPerDay
}

// TDBToTT converts TDB to TT.  The argument difference is far below the
// size of the periodic term, so one evaluation suffices.
func TDBToTT(jdTDB float64) float64 {
	g := tdbArg(jdTDB)
	return jdTDB - (0.001658*math.Sin(g)+0.000014*math.Sin(2*g))/secPerDay
}

// UTCToTAI converts a UTC Julian Day to TAI.
func UTCToTAI(jdUTC float64) float64 {
	return jdUTC + TAIMinusUTC(jdUTC)/secPerDay
}

// TAIToUTC converts a TAI Julian Day to UTC.
func TAIToUTC(jdTAI float64) float64 {
	utc := jdTAI - TAIMinusUTC(jdTAI)/secPerDay
	// Re-evaluate in case the first guess crossed a leap boundary.
	return jdTAI - TAIMinusUTC(utc)/secPerDay
}

// TAIToTT converts TAI to TT.
func TAIToTT(jdTAI float64) float64 {
	return jdTAI + TTMinusTAI/secPerDay
}

// TTToTAI converts TT to TAI.
func TTToTAI(jdTT float64) float64 {
	return jdTT - TTMinusTAI/secPerDay
}
