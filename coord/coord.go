// Package coord transforms positions between cartesian, ecliptic,
// equatorial and horizontal frames.  All transforms are pure functions.
package coord

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/julian"
)

// ObliquityJ2000 is the mean obliquity of the ecliptic at J2000.0.
var ObliquityJ2000 = unit.AngleFromDeg(23.439281)

// Cart is a cartesian vector.  Units are the caller's.
type Cart struct {
	X, Y, Z float64
}

func (c Cart) Add(d Cart) Cart { return Cart{c.X + d.X, c.Y + d.Y, c.Z + d.Z} }

func (c Cart) Sub(d Cart) Cart { return Cart{c.X - d.X, c.Y - d.Y, c.Z - d.Z} }

func (c Cart) Scale(k float64) Cart { return Cart{k * c.X, k * c.Y, k * c.Z} }

func (c Cart) Dot(d Cart) float64 { return c.X*d.X + c.Y*d.Y + c.Z*d.Z }

func (c Cart) Cross(d Cart) Cart {
	return Cart{
		c.Y*d.Z - c.Z*d.Y,
		c.Z*d.X - c.X*d.Z,
		c.X*d.Y - c.Y*d.X,
	}
}

// Square returns the squared length.
func (c Cart) Square() float64 { return c.Dot(c) }

func (c Cart) Norm() float64 { return math.Sqrt(c.Square()) }

// Ecliptic is a spherical position in the ecliptic frame.
type Ecliptic struct {
	Lon unit.Angle
	Lat unit.Angle
	R   float64
}

// Equatorial is a spherical position in the equatorial frame.
type Equatorial struct {
	RA  unit.RA
	Dec unit.Angle
	R   float64
}

// Horizontal is a local direction; azimuth is measured from north
// through east.
type Horizontal struct {
	Az  unit.Angle
	Alt unit.Angle
}

func toSpherical(c Cart) (lon, lat, r float64) {
	r = c.Norm()
	lon = math.Atan2(c.Y, c.X)
	if r > 0 {
		lat = math.Asin(c.Z / r)
	}
	return lon, lat, r
}

func fromSpherical(lon, lat, r float64) Cart {
	cl := math.Cos(lat)
	return Cart{
		r * cl * math.Cos(lon),
		r * cl * math.Sin(lon),
		r * math.Sin(lat),
	}
}

// CartToEcliptic reads c as ecliptic-frame cartesian.
func CartToEcliptic(c Cart) Ecliptic {
	lon, lat, r := toSpherical(c)
	return Ecliptic{
		Lon: unit.Angle(lon).Mod1(),
		Lat: unit.Angle(lat),
		R:   r,
	}
}

// Cart projects back to ecliptic-frame cartesian.
func (e Ecliptic) Cart() Cart {
	return fromSpherical(e.Lon.Rad(), e.Lat.Rad(), e.R)
}

// CartToEquatorial reads c as equatorial-frame cartesian.
func CartToEquatorial(c Cart) Equatorial {
	lon, lat, r := toSpherical(c)
	return Equatorial{
		RA:  unit.RAFromRad(lon),
		Dec: unit.Angle(lat),
		R:   r,
	}
}

// Cart projects back to equatorial-frame cartesian.
func (eq Equatorial) Cart() Cart {
	return fromSpherical(eq.RA.Rad(), eq.Dec.Rad(), eq.R)
}

// EclToEq rotates an ecliptic position to the equator by obliquity eps.
func EclToEq(ec Ecliptic, eps unit.Angle) Equatorial {
	sl, cl := math.Sincos(ec.Lon.Rad())
	sb, cb := math.Sincos(ec.Lat.Rad())
	se, ce := math.Sincos(eps.Rad())
	ra := math.Atan2(sl*ce-(sb/cb)*se, cl)
	dec := math.Asin(sb*ce + cb*se*sl)
	return Equatorial{RA: unit.RAFromRad(ra), Dec: unit.Angle(dec), R: ec.R}
}

// EqToEcl is the inverse rotation.
func EqToEcl(eq Equatorial, eps unit.Angle) Ecliptic {
	sa, ca := math.Sincos(eq.RA.Rad())
	sd, cd := math.Sincos(eq.Dec.Rad())
	se, ce := math.Sincos(eps.Rad())
	lon := math.Atan2(sa*ce+(sd/cd)*se, ca)
	lat := math.Asin(sd*ce - cd*se*sa)
	return Ecliptic{Lon: unit.Angle(lon).Mod1(), Lat: unit.Angle(lat), R: eq.R}
}

// EclToEqCart rotates an ecliptic cartesian vector to the equator by
// obliquity eps.
func EclToEqCart(c Cart, eps unit.Angle) Cart {
	s, co := math.Sincos(eps.Rad())
	return Cart{c.X, co*c.Y - s*c.Z, s*c.Y + co*c.Z}
}

// EqToEclCart is the inverse rotation.
func EqToEclCart(c Cart, eps unit.Angle) Cart {
	s, co := math.Sincos(eps.Rad())
	return Cart{c.X, co*c.Y + s*c.Z, -s*c.Y + co*c.Z}
}

// EqToHz converts to the local horizon of an observer at latitude lat
// with local sidereal time lst.  North is azimuth 0, east 90.
func EqToHz(eq Equatorial, lat unit.Angle, lst unit.Time) Horizontal {
	h := lst.Rad() - eq.RA.Rad() // hour angle
	sh, ch := math.Sincos(h)
	sp, cp := math.Sincos(lat.Rad())
	sd, cd := math.Sincos(eq.Dec.Rad())
	alt := math.Asin(sp*sd + cp*cd*ch)
	az := math.Atan2(sh, ch*sp-(sd/cd)*cp) + math.Pi
	return Horizontal{
		Az:  unit.Angle(az).Mod1(),
		Alt: unit.Angle(alt),
	}
}

// MeanObliquity returns the mean obliquity of date, IAU 1980 polynomial.
func MeanObliquity(jd float64) unit.Angle {
	t := julian.Centuries(jd)
	sec := 21.448 - t*(46.815+t*(0.00059-t*0.001813))
	return unit.AngleFromDeg(23 + 26.0/60 + sec/3600)
}

// precessionAngles returns the IAU 1976 equatorial precession angles
// zeta, z, theta from J2000 to the date, in radians.
func precessionAngles(jd float64) (zeta, z, theta float64) {
	t := julian.Centuries(jd)
	const s = math.Pi / 180 / 3600
	zeta = (2306.2181*t + 0.30188*t*t + 0.017998*t*t*t) * s
	z = (2306.2181*t + 1.09468*t*t + 0.018203*t*t*t) * s
	theta = (2004.3109*t - 0.42665*t*t - 0.041833*t*t*t) * s
	return
}

func rotZ(c Cart, a float64) Cart {
	s, co := math.Sincos(a)
	return Cart{co*c.X + s*c.Y, -s*c.X + co*c.Y, c.Z}
}

func rotY(c Cart, a float64) Cart {
	s, co := math.Sincos(a)
	return Cart{co*c.X - s*c.Z, c.Y, s*c.X + co*c.Z}
}

// PrecessJ2000ToDate rotates an equatorial cartesian vector from the
// J2000 frame to the mean equator and equinox of date.
func PrecessJ2000ToDate(c Cart, jd float64) Cart {
	zeta, z, theta := precessionAngles(jd)
	return rotZ(rotY(rotZ(c, -zeta), theta), -z)
}

// PrecessDateToJ2000 is the inverse rotation.
func PrecessDateToJ2000(c Cart, jd float64) Cart {
	zeta, z, theta := precessionAngles(jd)
	return rotZ(rotY(rotZ(c, z), -theta), zeta)
}
