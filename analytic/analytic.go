// Package analytic computes Sun, Moon and lunar node positions from
// truncated series.  It backs the ephemeris engine when no binary data
// file covers the requested instant.  Accuracy is about 0.01 degrees
// for the Sun and 0.17 degrees for the Moon.
package analytic

import (
	"math"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/julian"
)

// AUKm is the astronomical unit in kilometers.
const AUKm = 149597870.7

// Position is a geocentric ecliptic position with speeds.  Speeds are
// degrees per day for the angles and AU per day for the distance.
type Position struct {
	Lon       unit.Angle
	Lat       unit.Angle
	Dist      float64
	LonSpeed  float64
	LatSpeed  float64
	DistSpeed float64
}

// sunLonSpeed and moonLonSpeed are the mean daily motions reported as
// longitude speeds.  The truncated series do not support differencing.
const (
	sunLonSpeed  = 0.9856474
	moonLonSpeed = 13.176358
	nodeLonSpeed = -0.0529539
)

func wrapDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func sinDeg(d float64) float64 { return math.Sin(d * math.Pi / 180) }

func cosDeg(d float64) float64 { return math.Cos(d * math.Pi / 180) }

// Sun returns the geocentric position of the Sun at a TT Julian Day.
func Sun(jdTT float64) Position {
	T := julian.Centuries(jdTT)

	L0 := 280.46646 + T*(36000.76983+T*0.0003032)
	M := 357.52911 + T*(35999.05029-T*0.0001537)
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)

	C := (1.914602-T*(0.004817+T*0.000014))*sinDeg(M) +
		(0.019993-T*0.000101)*sinDeg(2*M) +
		0.000289*sinDeg(3*M)

	lon := wrapDeg(L0 + C)
	v := M + C
	r := 1.000001018 * (1 - e*e) / (1 + e*cosDeg(v))

	return Position{
		Lon:      unit.AngleFromDeg(lon),
		Dist:     r,
		LonSpeed: sunLonSpeed,
	}
}

// moonArgs returns the fundamental lunar arguments in degrees and the
// eccentricity factor applied to terms involving the solar anomaly.
func moonArgs(T float64) (lp, d, m, mp, f, e float64) {
	lp = 218.3164477 + T*(481267.88123421+T*(-0.0015786+T*(1/538841.0-T/65194000)))
	d = 297.8501921 + T*(445267.1114034+T*(-0.0018819+T*(1/545868.0-T/113065000)))
	m = 357.5291092 + T*(35999.0502909+T*(-0.0001536+T/24490000))
	mp = 134.9633964 + T*(477198.8675055+T*(0.0087414+T*(1/69699.0-T/14712000)))
	f = 93.2720950 + T*(483202.0175233+T*(-0.0036539+T*(-1/3526000.0+T/863310000)))
	e = 1 - T*(0.002516+T*0.0000074)
	return
}

// moonTerm is one periodic term.  The argument is d·D + m·M + mp·M' + f·F
// and the coefficient carries the table's native scale.
type moonTerm struct {
	d, m, mp, f int
	coeff       float64
}

// The largest terms of the lunar theory.  Longitude and latitude
// coefficients are 1e-6 degrees, distance coefficients 1e-3 km.
var moonLonTerms = []moonTerm{
	{0, 0, 1, 0, 6288774},
	{2, 0, -1, 0, 1274027},
	{2, 0, 0, 0, 658314},
	{0, 0, 2, 0, 213618},
	{0, 1, 0, 0, -185116},
	{0, 0, 0, 2, -114332},
	{2, 0, -2, 0, 58793},
	{2, -1, -1, 0, 57066},
	{2, 0, 1, 0, 53322},
	{2, -1, 0, 0, 45758},
}

var moonLatTerms = []moonTerm{
	{0, 0, 0, 1, 5128122},
	{0, 0, 1, 1, 280602},
	{0, 0, 1, -1, 277693},
	{2, 0, 0, -1, 173237},
	{2, 0, -1, 1, 55413},
	{2, 0, -1, -1, 46271},
	{2, 0, 0, 1, 32573},
}

var moonDistTerms = []moonTerm{
	{0, 0, 1, 0, -20905355},
	{2, 0, -1, 0, -3699111},
	{2, 0, 0, 0, -2955968},
	{0, 0, 2, 0, -569925},
	{0, 1, 0, 0, 48888},
	{0, 0, 0, 2, -3149},
	{2, 0, -2, 0, 246158},
	{2, -1, -1, 0, -152138},
	{2, 0, 1, 0, -170733},
}

func sumTerms(terms []moonTerm, d, m, mp, f, e float64, cosine bool) float64 {
	var sum float64
	for _, t := range terms {
		arg := float64(t.d)*d + float64(t.m)*m + float64(t.mp)*mp + float64(t.f)*f
		c := t.coeff
		if t.m == 1 || t.m == -1 {
			c *= e
		}
		if cosine {
			sum += c * cosDeg(arg)
		} else {
			sum += c * sinDeg(arg)
		}
	}
	return sum
}

// Moon returns the geocentric position of the Moon at a TT Julian Day.
func Moon(jdTT float64) Position {
	T := julian.Centuries(jdTT)
	lp, d, m, mp, f, e := moonArgs(T)

	lon := wrapDeg(lp + sumTerms(moonLonTerms, d, m, mp, f, e, false)*1e-6)
	lat := sumTerms(moonLatTerms, d, m, mp, f, e, false) * 1e-6
	distKm := 385000.56 + sumTerms(moonDistTerms, d, m, mp, f, e, true)*1e-3

	return Position{
		Lon:      unit.AngleFromDeg(lon),
		Lat:      unit.AngleFromDeg(lat),
		Dist:     distKm / AUKm,
		LonSpeed: moonLonSpeed,
	}
}

// meanNodeDeg returns the mean ascending node longitude in degrees.
func meanNodeDeg(T float64) float64 {
	return wrapDeg(125.0445479 + T*(-1934.1362891+T*(0.0020754+T*(1/467441.0-T/60616000))))
}

// MeanNode returns the mean ascending lunar node.  The node is a
// direction on the ecliptic; distance is reported as zero.
func MeanNode(jdTT float64) Position {
	T := julian.Centuries(jdTT)
	return Position{
		Lon:      unit.AngleFromDeg(meanNodeDeg(T)),
		LonSpeed: nodeLonSpeed,
	}
}

// TrueNode returns the osculating ascending node, the mean node plus
// the dominant periodic correction.
func TrueNode(jdTT float64) Position {
	T := julian.Centuries(jdTT)
	_, d, _, _, f, _ := moonArgs(T)
	lon := wrapDeg(meanNodeDeg(T) - 1.4979*sinDeg(2*(d-f)))
	return Position{
		Lon:      unit.AngleFromDeg(lon),
		LonSpeed: nodeLonSpeed,
	}
}
