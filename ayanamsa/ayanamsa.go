// Package ayanamsa converts tropical longitudes to the sidereal zodiac
// and indexes the 27-fold nakshatra division.
package ayanamsa

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/julian"
)

// System names an ayanamsa convention.
type System int

const (
	FaganBradley System = iota
	Lahiri
	Raman
	Krishnamurti
)

var systemNames = []string{"FaganBradley", "Lahiri", "Raman", "Krishnamurti"}

func (s System) String() string {
	if s < 0 || int(s) >= len(systemNames) {
		return fmt.Sprintf("System(%d)", int(s))
	}
	return systemNames[s]
}

// SystemFromName resolves a case-insensitive system name.  "KP" is an
// accepted alias for Krishnamurti.  Unknown names resolve to Lahiri,
// the conventional default of sidereal practice.
func SystemFromName(name string) System {
	if strings.EqualFold(name, "KP") {
		return Krishnamurti
	}
	for i, n := range systemNames {
		if strings.EqualFold(n, name) {
			return System(i)
		}
	}
	return Lahiri
}

// Degrees returns the ayanamsa in degrees at a TT Julian Day.  Each
// system is a low-order polynomial in Julian centuries from J2000.
func Degrees(jdTT float64, sys System) float64 {
	t := (jdTT - julian.J2000) / 36525
	switch sys {
	case FaganBradley:
		return 24.042506 + 0.000222*t
	case Raman:
		return 22.460148 + 0.013888888*(t*36525-6553.5)
	case Krishnamurti:
		return 23.743056 + 0.013888888*(t*36525-6553.5)
	}
	return 23.85 + 0.013888888*(t*36525-6553.5)
}

// Angle is Degrees wrapped as a unit.Angle.
func Angle(jdTT float64, sys System) unit.Angle {
	return unit.AngleFromDeg(Degrees(jdTT, sys))
}

// TropicalToSidereal shifts a tropical ecliptic longitude into the
// sidereal zodiac of the given system.
func TropicalToSidereal(lon unit.Angle, jdTT float64, sys System) unit.Angle {
	return unit.AngleFromDeg(wrap(lon.Deg() - Degrees(jdTT, sys)))
}

// SiderealToTropical is the inverse of TropicalToSidereal.
func SiderealToTropical(lon unit.Angle, jdTT float64, sys System) unit.Angle {
	return unit.AngleFromDeg(wrap(lon.Deg() + Degrees(jdTT, sys)))
}

func wrap(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// nakshatraSpan is 13 degrees 20 minutes, a 27th of the circle.
const nakshatraSpan = 40.0 / 3

var nakshatraNames = []string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "PurvaPhalguni",
	"UttaraPhalguni", "Hasta", "Chitra", "Swati", "Vishakha", "Anuradha",
	"Jyeshtha", "Mula", "PurvaAshadha", "UttaraAshadha", "Shravana",
	"Dhanishta", "Shatabhisha", "PurvaBhadrapada", "UttaraBhadrapada",
	"Revati",
}

// Nakshatra returns the zero-based index of the lunar mansion holding a
// sidereal longitude.
func Nakshatra(lonSidereal unit.Angle) int {
	return int(wrap(lonSidereal.Deg())/nakshatraSpan) % 27
}

// NakshatraName returns the traditional name of a mansion index.
func NakshatraName(i int) string {
	if i < 0 || i >= len(nakshatraNames) {
		return fmt.Sprintf("Nakshatra(%d)", i)
	}
	return nakshatraNames[i]
}

// NakshatraPada returns the quarter of the mansion, 1 through 4.
func NakshatraPada(lonSidereal unit.Angle) int {
	return int(wrap(lonSidereal.Deg())/(nakshatraSpan/4))%4 + 1
}
