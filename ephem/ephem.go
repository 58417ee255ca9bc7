// Package ephem computes geocentric body positions, dispatching each
// request to the best available ephemeris source.
package ephem

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/analytic"
	"github.com/stotz/sweph/coord"
	"github.com/stotz/sweph/internal/apperr"
	"github.com/stotz/sweph/jpl"
	"github.com/stotz/sweph/se1"
)

// Body identifies a solar-system body.  The integer values follow the
// conventional astrological numbering, with 12 unassigned.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	MeanNode
	TrueNode
	_
	Earth
)

var bodyNames = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter", "Saturn",
	"Uranus", "Neptune", "Pluto", "MeanNode", "TrueNode", "", "Earth",
}

func (b Body) String() string {
	if b < 0 || int(b) >= len(bodyNames) || bodyNames[b] == "" {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodyNames[b]
}

// BodyFromName resolves a case-insensitive body name.
func BodyFromName(name string) (Body, error) {
	for i, n := range bodyNames {
		if n != "" && strings.EqualFold(n, name) {
			return Body(i), nil
		}
	}
	return 0, fmt.Errorf("ephem: body %q: %w", name, apperr.ErrBodyUnsupported)
}

// IsNode reports whether b is a lunar node.
func (b Body) IsNode() bool { return b == MeanNode || b == TrueNode }

// CalcFlag selects the output frame of a calculation.  The zero value
// is ecliptic of date.
type CalcFlag uint32

const (
	// FlagEquatorial returns right ascension and declination instead of
	// ecliptic longitude and latitude.
	FlagEquatorial CalcFlag = 1 << iota
	// FlagJ2000 refers the result to the J2000 equinox instead of the
	// equinox of date.
	FlagJ2000
)

// Position is a geocentric spherical position.  Lon and Lat are
// ecliptic longitude and latitude, or right ascension and declination
// under FlagEquatorial.  Dist is AU; speeds are degrees per day and AU
// per day.
type Position struct {
	Lon       unit.Angle
	Lat       unit.Angle
	Dist      float64
	LonSpeed  float64
	LatSpeed  float64
	DistSpeed float64
}

// Source identifies the ephemeris layer that serves a request.
type Source int

const (
	SourceNone Source = iota
	SourceJPL
	SourceSE1
	SourceAnalytic
)

func (s Source) String() string {
	switch s {
	case SourceJPL:
		return "jpl"
	case SourceSE1:
		return "se1"
	case SourceAnalytic:
		return "analytic"
	}
	return "none"
}

// Engine dispatches calculations to a JPL file, per-body SE1 files, and
// the analytic series, in that order of preference.  Engines hold
// single-slot caches through their readers and must not be shared
// across goroutines.
type Engine struct {
	JPL *jpl.Eph
	SE1 map[Body]*se1.File
}

// New returns an engine with no binary sources attached.  Such an
// engine still serves Sun, Moon and the lunar nodes analytically.
func New() *Engine {
	return &Engine{SE1: make(map[Body]*se1.File)}
}

func jplTarget(b Body) (jpl.Target, bool) {
	switch b {
	case Sun:
		return jpl.Sun, true
	case Moon:
		return jpl.Moon, true
	case Mercury:
		return jpl.Mercury, true
	case Venus:
		return jpl.Venus, true
	case Mars:
		return jpl.Mars, true
	case Jupiter:
		return jpl.Jupiter, true
	case Saturn:
		return jpl.Saturn, true
	case Uranus:
		return jpl.Uranus, true
	case Neptune:
		return jpl.Neptune, true
	case Pluto:
		return jpl.Pluto, true
	}
	return 0, false
}

// Source reports which layer would serve a request without performing
// it.  The fallback order is fixed: JPL, then SE1, then analytic.
func (e *Engine) Source(b Body, jd float64) Source {
	if b.IsNode() {
		return SourceAnalytic
	}
	if _, ok := jplTarget(b); ok && e.JPL != nil &&
		jd >= e.JPL.Header.StartJD && jd <= e.JPL.Header.EndJD {
		return SourceJPL
	}
	if f := e.SE1[b]; f != nil &&
		jd >= f.Header.StartJD && jd <= f.Header.EndJD {
		return SourceSE1
	}
	if b == Sun || b == Moon {
		return SourceAnalytic
	}
	return SourceNone
}

// Calculate returns the geocentric position of a body at a TT Julian
// Day.  Earth as a geocentric target is rejected.
func (e *Engine) Calculate(jdTT float64, b Body, flags CalcFlag) (Position, error) {
	if b == Earth {
		return Position{}, fmt.Errorf("ephem: geocentric Earth: %w", apperr.ErrBodyUnsupported)
	}
	switch e.Source(b, jdTT) {
	case SourceJPL:
		p, v, err := e.jplState(jdTT, b)
		if err != nil {
			return Position{}, err
		}
		return projectJ2000(p, v, jdTT, flags), nil
	case SourceSE1:
		sp, err := e.SE1[b].Position(jdTT)
		if err != nil {
			return Position{}, err
		}
		p, v := sphericalToState(sp.Lon, sp.Lat, sp.Dist,
			sp.LonSpeed, sp.LatSpeed, sp.DistSpeed)
		return projectOfDate(p, v, jdTT, flags), nil
	case SourceAnalytic:
		ap := analyticPosition(jdTT, b)
		// Nodes are pure directions; give them unit radius for the
		// frame transform and zero the distance again afterwards.
		r := ap.Dist
		if b.IsNode() {
			r = 1
		}
		p, v := sphericalToState(ap.Lon.Deg(), ap.Lat.Deg(), r,
			ap.LonSpeed, ap.LatSpeed, ap.DistSpeed)
		pos := projectOfDate(p, v, jdTT, flags)
		if b.IsNode() {
			pos.Dist, pos.DistSpeed = 0, 0
		}
		return pos, nil
	}
	return Position{}, fmt.Errorf("ephem: %v at %f: %w", b, jdTT, apperr.ErrBodyUnsupported)
}

func analyticPosition(jd float64, b Body) analytic.Position {
	switch b {
	case Sun:
		return analytic.Sun(jd)
	case Moon:
		return analytic.Moon(jd)
	case MeanNode:
		return analytic.MeanNode(jd)
	}
	return analytic.TrueNode(jd)
}

// jplState returns the geocentric equatorial J2000 state of a body in
// AU and AU per day.
func (e *Engine) jplState(jd float64, b Body) (coord.Cart, coord.Cart, error) {
	au := e.JPL.Header.AUkm
	if b == Moon {
		p, v, err := e.JPL.State(jd, jpl.Moon)
		if err != nil {
			return coord.Cart{}, coord.Cart{}, err
		}
		return coord.Cart{X: p[0] / au, Y: p[1] / au, Z: p[2] / au},
			coord.Cart{X: v[0] / au, Y: v[1] / au, Z: v[2] / au}, nil
	}
	t, _ := jplTarget(b)
	bp, bv, err := e.JPL.State(jd, t)
	if err != nil {
		return coord.Cart{}, coord.Cart{}, err
	}
	ep, ev, err := e.JPL.BarycentricEarth(jd)
	if err != nil {
		return coord.Cart{}, coord.Cart{}, err
	}
	return coord.Cart{X: (bp[0] - ep[0]) / au, Y: (bp[1] - ep[1]) / au, Z: (bp[2] - ep[2]) / au},
		coord.Cart{X: (bv[0] - ev[0]) / au, Y: (bv[1] - ev[1]) / au, Z: (bv[2] - ev[2]) / au}, nil
}

// sphericalToState builds an ecliptic cartesian position and velocity
// from spherical coordinates in degrees, AU, degrees per day and AU per
// day.
func sphericalToState(lonDeg, latDeg, r, dlon, dlat, dr float64) (p, v coord.Cart) {
	const rad = math.Pi / 180
	sl, cl := math.Sincos(lonDeg * rad)
	sb, cb := math.Sincos(latDeg * rad)
	p = coord.Cart{X: r * cb * cl, Y: r * cb * sl, Z: r * sb}
	dlon *= rad
	dlat *= rad
	v = coord.Cart{
		X: dr*cb*cl - r*dlat*sb*cl - r*dlon*cb*sl,
		Y: dr*cb*sl - r*dlat*sb*sl + r*dlon*cb*cl,
		Z: dr*sb + r*dlat*cb,
	}
	return p, v
}

// stateToSpherical is the inverse of sphericalToState.
func stateToSpherical(p, v coord.Cart) (lonDeg, latDeg, r, dlon, dlat, dr float64) {
	const deg = 180 / math.Pi
	r = p.Norm()
	lonDeg = math.Atan2(p.Y, p.X) * deg
	if lonDeg < 0 {
		lonDeg += 360
	}
	rho2 := p.X*p.X + p.Y*p.Y
	if r == 0 {
		return 0, 0, 0, 0, 0, 0
	}
	latDeg = math.Asin(p.Z/r) * deg
	dr = p.Dot(v) / r
	if rho2 > 0 {
		dlon = (p.X*v.Y - p.Y*v.X) / rho2 * deg
		dlat = (v.Z*r - p.Z*dr) / (r * math.Sqrt(rho2)) * deg
	}
	return lonDeg, latDeg, r, dlon, dlat, dr
}

// projectJ2000 converts an equatorial J2000 cartesian state to the
// requested output frame.
func projectJ2000(p, v coord.Cart, jd float64, flags CalcFlag) Position {
	ofDate := flags&FlagJ2000 == 0
	if ofDate {
		p = coord.PrecessJ2000ToDate(p, jd)
		v = coord.PrecessJ2000ToDate(v, jd)
	}
	if flags&FlagEquatorial == 0 {
		eps := coord.ObliquityJ2000
		if ofDate {
			eps = coord.MeanObliquity(jd)
		}
		p = coord.EqToEclCart(p, eps)
		v = coord.EqToEclCart(v, eps)
	}
	return toPosition(p, v)
}

// projectOfDate converts an ecliptic-of-date cartesian state to the
// requested output frame.
func projectOfDate(p, v coord.Cart, jd float64, flags CalcFlag) Position {
	if flags == 0 {
		return toPosition(p, v)
	}
	eps := coord.MeanObliquity(jd)
	p = coord.EclToEqCart(p, eps)
	v = coord.EclToEqCart(v, eps)
	if flags&FlagJ2000 != 0 {
		p = coord.PrecessDateToJ2000(p, jd)
		v = coord.PrecessDateToJ2000(v, jd)
		if flags&FlagEquatorial == 0 {
			p = coord.EqToEclCart(p, coord.ObliquityJ2000)
			v = coord.EqToEclCart(v, coord.ObliquityJ2000)
		}
	}
	return toPosition(p, v)
}

func toPosition(p, v coord.Cart) Position {
	lon, lat, r, dlon, dlat, dr := stateToSpherical(p, v)
	return Position{
		Lon:       unit.AngleFromDeg(lon),
		Lat:       unit.AngleFromDeg(lat),
		Dist:      r,
		LonSpeed:  dlon,
		LatSpeed:  dlat,
		DistSpeed: dr,
	}
}
