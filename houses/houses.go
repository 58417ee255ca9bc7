// Package houses computes astrological house cusps and chart angles.
package houses

import (
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/coord"
	"github.com/stotz/sweph/internal/apperr"
	"github.com/stotz/sweph/sidereal"
)

// System is a house system, identified by its conventional letter code.
type System byte

const (
	Placidus      System = 'P'
	Koch          System = 'K'
	Porphyry      System = 'O'
	Regiomontanus System = 'R'
	Campanus      System = 'C'
	Equal         System = 'A'
	WholeSign     System = 'W'
	Vehlow        System = 'V'
	Meridian      System = 'X'
	Morinus       System = 'M'
	Alcabitius    System = 'B'
	Azimuthal     System = 'H'
	Topocentric   System = 'T'
	EqualMC       System = 'D'
	Gauquelin     System = 'G'
)

var systemNames = map[System]string{
	Placidus:      "Placidus",
	Koch:          "Koch",
	Porphyry:      "Porphyry",
	Regiomontanus: "Regiomontanus",
	Campanus:      "Campanus",
	Equal:         "Equal",
	WholeSign:     "WholeSign",
	Vehlow:        "Vehlow",
	Meridian:      "Meridian",
	Morinus:       "Morinus",
	Alcabitius:    "Alcabitius",
	Azimuthal:     "Azimuthal",
	Topocentric:   "Topocentric",
	EqualMC:       "EqualMC",
	Gauquelin:     "Gauquelin",
}

func (s System) String() string {
	if n, ok := systemNames[s]; ok {
		return n
	}
	return fmt.Sprintf("System(%c)", byte(s))
}

// SystemFromCode resolves a case-insensitive system letter.  'E' is
// accepted as an alias for the Equal system.
func SystemFromCode(c byte) (System, error) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c == 'E' {
		c = byte(Equal)
	}
	s := System(c)
	if _, ok := systemNames[s]; !ok {
		return 0, fmt.Errorf("houses: code %q: %w", string(c), apperr.ErrHouseSystemUndefined)
	}
	return s, nil
}

// SystemFromName resolves a case-insensitive system name.
func SystemFromName(name string) (System, error) {
	for s, n := range systemNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("houses: name %q: %w", name, apperr.ErrHouseSystemUndefined)
}

// Houses holds the cusps and angles of one chart.  Cusp is 1-based:
// index 0 is unused, indices run 1..12, or 1..36 for Gauquelin sectors.
type Houses struct {
	System System
	Cusp   []unit.Angle

	Asc           unit.Angle
	MC            unit.Angle
	ARMC          unit.Angle
	Vertex        unit.Angle
	EquatorialAsc unit.Angle
	CoAscKoch     unit.Angle
	CoAscMunkasey unit.Angle
	PolarAsc      unit.Angle

	// PorphyryFallback is set when a quadrant system was undefined at
	// the given latitude and Porphyry cusps were returned instead.
	PorphyryFallback bool
}

// Desc returns the descendant, opposite the ascendant.
func (h *Houses) Desc() unit.Angle { return (h.Asc + unit.AngleFromDeg(180)).Mod1() }

// IC returns the imum coeli, opposite the MC.
func (h *Houses) IC() unit.Angle { return (h.MC + unit.AngleFromDeg(180)).Mod1() }

const degRad = math.Pi / 180

func sind(d float64) float64 { return math.Sin(d * degRad) }

func cosd(d float64) float64 { return math.Cos(d * degRad) }

func tand(d float64) float64 { return math.Tan(d * degRad) }

func atand(x float64) float64 { return math.Atan(x) / degRad }

func asind(x float64) float64 { return math.Asin(x) / degRad }

func atan2d(y, x float64) float64 { return math.Atan2(y, x) / degRad }

func wrap(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// mcLon returns the culminating ecliptic longitude for a right
// ascension of the meridian.
func mcLon(armc, eps float64) float64 {
	return wrap(atan2d(sind(armc), cosd(armc)*cosd(eps)))
}

// obliqueAsc returns the ecliptic longitude whose oblique ascension is
// oa under polar height f.  The result is kept within a quarter turn
// of oa, which selects the ascending intersection.
func obliqueAsc(oa, f, eps float64) float64 {
	l := atan2d(sind(oa), cosd(oa)*cosd(eps)-tand(f)*sind(eps))
	if d := wrap(l - oa); d > 90 && d < 270 {
		l += 180
	}
	return wrap(l)
}

// ascLon returns the ascendant for a meridian and latitude.
func ascLon(armc, phi, eps float64) float64 {
	return obliqueAsc(armc+90, phi, eps)
}

// Cusps computes house cusps and angles at a UT Julian Day for an
// observer at geographic latitude lat and east-positive longitude lon.
func Cusps(jdUT float64, lat, lon unit.Angle, sys System) (*Houses, error) {
	if _, ok := systemNames[sys]; !ok {
		if s, err := SystemFromCode(byte(sys)); err == nil {
			sys = s
		} else {
			return nil, err
		}
	}

	armc := sidereal.LST(jdUT, lon).Hour() * 15
	eps := coord.MeanObliquity(jdUT).Deg()
	phi := lat.Deg()

	mc := mcLon(armc, eps)
	asc := ascLon(armc, phi, eps)

	h := &Houses{
		System: sys,
		Asc:    unit.AngleFromDeg(asc),
		MC:     unit.AngleFromDeg(mc),
		ARMC:   unit.AngleFromDeg(armc),
	}
	h.fillAngles(armc, phi, eps)

	var cusp [13]float64
	switch sys {
	case Equal:
		for i := 1; i <= 12; i++ {
			cusp[i] = wrap(asc + 30*float64(i-1))
		}
	case EqualMC:
		for i := 1; i <= 12; i++ {
			cusp[i] = wrap(mc + 30*float64(i-10))
		}
	case WholeSign:
		base := 30 * math.Floor(asc/30)
		for i := 1; i <= 12; i++ {
			cusp[i] = wrap(base + 30*float64(i-1))
		}
	case Vehlow:
		for i := 1; i <= 12; i++ {
			cusp[i] = wrap(asc - 15 + 30*float64(i-1))
		}
	case Gauquelin:
		h.Cusp = make([]unit.Angle, 37)
		for i := 1; i <= 36; i++ {
			h.Cusp[i] = unit.AngleFromDeg(wrap(asc + 10*float64(i-1)))
		}
		return h, nil
	case Porphyry:
		cusp = porphyry(asc, mc)
	case Meridian:
		for i := 1; i <= 12; i++ {
			cusp[i] = obliqueAsc(armc+60+30*float64(i), 0, eps)
		}
	case Morinus:
		for i := 1; i <= 12; i++ {
			x := armc + 60 + 30*float64(i)
			cusp[i] = wrap(atan2d(sind(x)*cosd(eps), cosd(x)))
		}
	case Azimuthal:
		for i := 1; i <= 12; i++ {
			b := 180 - 30*float64(i-1)
			f := asind(cosd(b) * cosd(phi))
			hp := atan2d(-sind(b), -sind(phi)*cosd(b))
			cusp[i] = obliqueAsc(armc+90-hp, f, eps)
		}
	default:
		var ok bool
		cusp, ok = quadrant(sys, armc, phi, eps, asc, mc)
		if !ok {
			cusp = porphyry(asc, mc)
			h.PorphyryFallback = true
		}
	}

	h.Cusp = make([]unit.Angle, 13)
	for i := 1; i <= 12; i++ {
		h.Cusp[i] = unit.AngleFromDeg(cusp[i])
	}
	return h, nil
}

// fillAngles computes the additional chart points.
func (h *Houses) fillAngles(armc, phi, eps float64) {
	cophi := 90 - phi
	if phi < 0 {
		cophi = -90 - phi
	}
	h.Vertex = unit.AngleFromDeg(obliqueAsc(armc-90, cophi, eps))
	h.EquatorialAsc = unit.AngleFromDeg(obliqueAsc(armc+90, 0, eps))
	polasc := obliqueAsc(armc-90, phi, eps)
	h.PolarAsc = unit.AngleFromDeg(polasc)
	h.CoAscKoch = unit.AngleFromDeg(wrap(polasc + 180))
	h.CoAscMunkasey = unit.AngleFromDeg(obliqueAsc(armc+90, cophi, eps))
}

// porphyry trisects the four quadrants between the angles.
func porphyry(asc, mc float64) [13]float64 {
	var cusp [13]float64
	q := wrap(asc - mc)
	cusp[1] = asc
	cusp[10] = mc
	cusp[11] = wrap(mc + q/3)
	cusp[12] = wrap(mc + 2*q/3)
	q2 := 180 - q
	cusp[2] = wrap(asc + q2/3)
	cusp[3] = wrap(asc + 2*q2/3)
	opposites(&cusp)
	return cusp
}

// opposites fills cusps 4..9 from their opposite cusps.
func opposites(cusp *[13]float64) {
	for i := 4; i <= 9; i++ {
		j := i + 6
		if j > 12 {
			j -= 12
		}
		cusp[i] = wrap(cusp[j] + 180)
	}
}

// quadrant computes the intermediate cusps of the classical quadrant
// systems.  ok is false when the system is undefined at the latitude.
func quadrant(sys System, armc, phi, eps, asc, mc float64) (cusp [13]float64, ok bool) {
	cusp[1] = asc
	cusp[10] = mc
	switch sys {
	case Placidus:
		type spec struct {
			house  int
			offset float64
			frac   float64
		}
		for _, s := range []spec{
			{11, 30, 1.0 / 3}, {12, 60, 2.0 / 3},
			{2, 120, 2.0 / 3}, {3, 150, 1.0 / 3},
		} {
			c, defined := placidusCusp(armc, phi, eps, s.offset, s.frac)
			if !defined {
				return cusp, false
			}
			cusp[s.house] = c
		}
	case Koch:
		dec := asind(sind(eps) * sind(mc))
		x := tand(phi) * tand(dec)
		if math.Abs(x) > 1 {
			return cusp, false
		}
		ad := asind(x)
		cusp[11] = obliqueAsc(armc+30-2*ad/3, phi, eps)
		cusp[12] = obliqueAsc(armc+60-ad/3, phi, eps)
		cusp[2] = obliqueAsc(armc+120+ad/3, phi, eps)
		cusp[3] = obliqueAsc(armc+150+2*ad/3, phi, eps)
	case Alcabitius:
		dec := asind(sind(eps) * sind(asc))
		x := tand(phi) * tand(dec)
		if math.Abs(x) > 1 {
			return cusp, false
		}
		ad := asind(x)
		sda, sna := 90+ad, 90-ad
		cusp[11] = obliqueAsc(armc+sda/3, 0, eps)
		cusp[12] = obliqueAsc(armc+2*sda/3, 0, eps)
		cusp[2] = obliqueAsc(armc+180-2*sna/3, 0, eps)
		cusp[3] = obliqueAsc(armc+180-sna/3, 0, eps)
	case Regiomontanus:
		pole := func(hd float64) float64 { return atand(tand(phi) * sind(hd)) }
		cusp[11] = obliqueAsc(armc+30, pole(30), eps)
		cusp[12] = obliqueAsc(armc+60, pole(60), eps)
		cusp[2] = obliqueAsc(armc+120, pole(60), eps)
		cusp[3] = obliqueAsc(armc+150, pole(30), eps)
	case Campanus:
		camp := func(theta float64) float64 {
			f := asind(cosd(theta) * sind(phi))
			hp := atan2d(sind(theta), cosd(theta)*cosd(phi))
			return obliqueAsc(armc+90-hp, f, eps)
		}
		cusp[11] = camp(60)
		cusp[12] = camp(30)
		cusp[2] = camp(-30)
		cusp[3] = camp(-60)
	case Topocentric:
		cusp[11] = obliqueAsc(armc+30, atand(tand(phi)/3), eps)
		cusp[12] = obliqueAsc(armc+60, atand(2*tand(phi)/3), eps)
		cusp[2] = obliqueAsc(armc+120, atand(2*tand(phi)/3), eps)
		cusp[3] = obliqueAsc(armc+150, atand(tand(phi)/3), eps)
	}
	opposites(&cusp)
	return cusp, true
}

// placidusCusp iterates the semi-arc division for one Placidus cusp.
// offset is the right ascension offset of the cusp's hour circle from
// the meridian, frac the fraction of the ascensional difference.
func placidusCusp(armc, phi, eps, offset, frac float64) (float64, bool) {
	ra := wrap(armc + offset)
	for i := 0; i < 30; i++ {
		lon := wrap(atan2d(sind(ra), cosd(ra)*cosd(eps)))
		dec := asind(sind(eps) * sind(lon))
		x := tand(phi) * tand(dec)
		if math.Abs(x) > 1 {
			return 0, false
		}
		next := wrap(armc + offset + frac*asind(x))
		d := math.Abs(next - ra)
		if d > 180 {
			d = 360 - d
		}
		ra = next
		if d < 1e-10 {
			break
		}
	}
	return wrap(atan2d(sind(ra), cosd(ra)*cosd(eps))), true
}
