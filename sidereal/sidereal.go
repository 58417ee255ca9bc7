// Package sidereal computes Greenwich and local sidereal time.
package sidereal

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/julian"
	"github.com/stotz/sweph/timescale"
)

// GMST returns Greenwich mean sidereal time at the given UT Julian Day,
// wrapped to one day.
//
// The polynomial is evaluated at the preceding 0h and propagated with
// the mean-solar-to-sidereal rate, following the IAU 2006 expression
// with both UT1 and TT century arguments.
func GMST(jdUT float64) unit.Time {
	jd0 := math.Floor(jdUT-0.5) + 0.5
	secs := (jdUT - jd0) * 86400
	tu := (jd0 - julian.J2000) / julian.DaysPerCentury
	tt := (jd0 + timescale.DeltaT(jd0)/86400 - julian.J2000) / julian.DaysPerCentury

	gmst := 24110.5493771 +
		8640184.79447825*tu +
		307.4771013*(tt-tu) +
		tt*tt*(0.092772110+tt*(-0.0000002926+tt*(-0.00000199708+tt*(-0.000000002454))))
	msday := 1 + (8640184.79447825+
		tt*(0.185544220+tt*(-0.0000008778+tt*(-0.00000798832+tt*(-0.00000001227)))))/
		(86400 * julian.DaysPerCentury)
	return unit.Time(gmst + msday*secs).Mod1()
}

// eqEquinoxes returns the equation of the equinoxes in seconds of time,
// using the dominant nutation term only.
func eqEquinoxes(jdUT float64) float64 {
	d := jdUT - julian.J2000
	t := d / julian.DaysPerCentury
	omega := (125.04 - 0.052954*d) * math.Pi / 180
	dpsi := -17.20 * math.Sin(omega) // arcsec
	eps := (23.439291 - 0.0130042*t) * math.Pi / 180
	return dpsi * math.Cos(eps) / 15
}

// GAST returns Greenwich apparent sidereal time.
func GAST(jdUT float64) unit.Time {
	return (GMST(jdUT) + unit.Time(eqEquinoxes(jdUT))).Mod1()
}

// LST returns local mean sidereal time for an east-positive longitude.
func LST(jdUT float64, lon unit.Angle) unit.Time {
	return (GMST(jdUT) + unit.TimeFromHour(lon.Deg()/15)).Mod1()
}

// LAST returns local apparent sidereal time for an east-positive
// longitude.
func LAST(jdUT float64, lon unit.Angle) unit.Time {
	return (GAST(jdUT) + unit.TimeFromHour(lon.Deg()/15)).Mod1()
}

// HoursToDegrees converts hours of time to degrees of arc.
func HoursToDegrees(h float64) float64 { return h * 15 }

// DegreesToHours converts degrees of arc to hours of time.
func DegreesToHours(d float64) float64 { return d / 15 }

// HMSToHours converts a sexagesimal time to decimal hours.
func HMSToHours(h, m int, s float64) float64 {
	return float64(h) + float64(m)/60 + s/3600
}
