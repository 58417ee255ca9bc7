package houses_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soniakeys/unit"

	"github.com/stotz/sweph/houses"
	"github.com/stotz/sweph/internal/apperr"
	"github.com/stotz/sweph/julian"
)

var (
	greenwichLat = unit.AngleFromDeg(51.4772)
	greenwichLon = unit.AngleFromDeg(0)
)

func diff360(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func diff180(a, b float64) float64 {
	d := diff360(a, b)
	if d > 180 {
		d -= 360
	}
	return d
}

func TestSystemLookup(t *testing.T) {
	tests := []struct {
		code byte
		want houses.System
	}{
		{'P', houses.Placidus},
		{'K', houses.Koch},
		{'O', houses.Porphyry},
		{'A', houses.Equal},
		{'E', houses.Equal},
		{'W', houses.WholeSign},
		{'p', houses.Placidus},
		{'g', houses.Gauquelin},
	}
	for _, tc := range tests {
		got, err := houses.SystemFromCode(tc.code)
		if err != nil || got != tc.want {
			t.Errorf("SystemFromCode(%q) = %v, %v; want %v", tc.code, got, err, tc.want)
		}
	}
	if _, err := houses.SystemFromCode('Z'); !errors.Is(err, apperr.ErrHouseSystemUndefined) {
		t.Errorf("SystemFromCode(Z) err = %v", err)
	}

	for _, name := range []string{"Placidus", "placidus", "PLACIDUS"} {
		if s, err := houses.SystemFromName(name); err != nil || s != houses.Placidus {
			t.Errorf("SystemFromName(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := houses.SystemFromName("Octopus"); !errors.Is(err, apperr.ErrHouseSystemUndefined) {
		t.Errorf("SystemFromName(Octopus) err = %v", err)
	}
}

func TestAnglesGreenwichJ2000(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Equal)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.ARMC.Deg(); math.Abs(got-280.46) > 0.05 {
		t.Errorf("ARMC = %.3f, want about 280.46", got)
	}
	if got := h.MC.Deg(); math.Abs(got-279.62) > 0.3 {
		t.Errorf("MC = %.3f, want about 279.62", got)
	}
	if got := h.Asc.Deg(); math.Abs(got-24.31) > 0.3 {
		t.Errorf("Asc = %.3f, want about 24.31", got)
	}
	// The ascendant stays in the half circle after the MC.
	if d := diff360(h.Asc.Deg(), h.MC.Deg()); d <= 0 || d >= 180 {
		t.Errorf("Asc-MC arc = %g, want within (0, 180)", d)
	}
	if d := diff180(h.Desc().Deg(), h.Asc.Deg()+180); math.Abs(d) > 1e-9 {
		t.Errorf("Desc = %g, want Asc+180", h.Desc().Deg())
	}
	if d := diff180(h.IC().Deg(), h.MC.Deg()+180); math.Abs(d) > 1e-9 {
		t.Errorf("IC = %g, want MC+180", h.IC().Deg())
	}
	// The vertex falls in the western half, near the descendant.
	if d := math.Abs(diff180(h.Vertex.Deg(), h.Desc().Deg())); d > 90 {
		t.Errorf("Vertex = %g, more than 90 deg from Desc", h.Vertex.Deg())
	}
	// Koch co-ascendant and polar ascendant are opposite points.
	if d := diff360(h.CoAscKoch.Deg(), h.PolarAsc.Deg()); math.Abs(d-180) > 1e-9 {
		t.Errorf("CoAscKoch-PolarAsc = %g, want 180", d)
	}
}

func TestEqualHouses(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Equal)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Cusp) != 13 {
		t.Fatalf("len(Cusp) = %d, want 13", len(h.Cusp))
	}
	if d := diff180(h.Cusp[1].Deg(), h.Asc.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("cusp 1 = %g, want Asc %g", h.Cusp[1].Deg(), h.Asc.Deg())
	}
	for i := 2; i <= 12; i++ {
		if d := diff360(h.Cusp[i].Deg(), h.Cusp[i-1].Deg()); math.Abs(d-30) > 1e-9 {
			t.Errorf("cusp %d - cusp %d = %g, want 30", i, i-1, d)
		}
	}
}

func TestEqualMCAndVehlow(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.EqualMC)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff180(h.Cusp[10].Deg(), h.MC.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("EqualMC cusp 10 = %g, want MC %g", h.Cusp[10].Deg(), h.MC.Deg())
	}

	v, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Vehlow)
	if err != nil {
		t.Fatal(err)
	}
	want := v.Asc.Deg() - 15
	if d := diff180(v.Cusp[1].Deg(), want); math.Abs(d) > 1e-9 {
		t.Errorf("Vehlow cusp 1 = %g, want %g", v.Cusp[1].Deg(), want)
	}
}

func TestWholeSign(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.WholeSign)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 12; i++ {
		if r := math.Mod(h.Cusp[i].Deg(), 30); r > 1e-9 && 30-r > 1e-9 {
			t.Errorf("cusp %d = %g, not at a sign boundary", i, h.Cusp[i].Deg())
		}
	}
	// The ascendant falls inside the first house.
	if d := diff360(h.Asc.Deg(), h.Cusp[1].Deg()); d >= 30 {
		t.Errorf("Asc %g not within first house at %g", h.Asc.Deg(), h.Cusp[1].Deg())
	}
}

func TestPorphyry(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Porphyry)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff180(h.Cusp[1].Deg(), h.Asc.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("cusp 1 = %g, want Asc", h.Cusp[1].Deg())
	}
	if d := diff180(h.Cusp[10].Deg(), h.MC.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("cusp 10 = %g, want MC", h.Cusp[10].Deg())
	}
	// Quadrant trisection: arcs within a quadrant are equal.
	q := diff360(h.Asc.Deg(), h.MC.Deg())
	a1 := diff360(h.Cusp[11].Deg(), h.Cusp[10].Deg())
	if math.Abs(a1-q/3) > 1e-9 {
		t.Errorf("first trisection arc = %g, want %g", a1, q/3)
	}
}

func TestGauquelinSectors(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Gauquelin)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Cusp) != 37 {
		t.Fatalf("len(Cusp) = %d, want 37", len(h.Cusp))
	}
	if d := diff180(h.Cusp[1].Deg(), h.Asc.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("sector 1 = %g, want Asc", h.Cusp[1].Deg())
	}
	for i := 2; i <= 36; i++ {
		if d := diff360(h.Cusp[i].Deg(), h.Cusp[i-1].Deg()); math.Abs(d-10) > 1e-9 {
			t.Errorf("sector %d arc = %g, want 10", i, d)
		}
	}
}

var quadrantSystems = []houses.System{
	houses.Placidus, houses.Koch, houses.Regiomontanus, houses.Campanus,
	houses.Alcabitius, houses.Topocentric,
}

func TestQuadrantInvariants(t *testing.T) {
	for _, sys := range quadrantSystems {
		h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		if h.PorphyryFallback {
			t.Fatalf("%v: unexpected fallback at 51N", sys)
		}
		if d := diff180(h.Cusp[1].Deg(), h.Asc.Deg()); math.Abs(d) > 1e-9 {
			t.Errorf("%v: cusp 1 = %g, want Asc %g", sys, h.Cusp[1].Deg(), h.Asc.Deg())
		}
		if d := diff180(h.Cusp[10].Deg(), h.MC.Deg()); math.Abs(d) > 1e-9 {
			t.Errorf("%v: cusp 10 = %g, want MC %g", sys, h.Cusp[10].Deg(), h.MC.Deg())
		}
		// Opposite cusps are 180 apart and the wheel closes.
		var total float64
		for i := 1; i <= 12; i++ {
			j := i%12 + 1
			arc := diff360(h.Cusp[j].Deg(), h.Cusp[i].Deg())
			if arc <= 0 || arc >= 180 {
				t.Errorf("%v: arc %d->%d = %g", sys, i, j, arc)
			}
			total += arc
			opp := i + 6
			if opp > 12 {
				opp -= 12
			}
			if d := diff360(h.Cusp[opp].Deg(), h.Cusp[i].Deg()); math.Abs(d-180) > 1e-6 {
				t.Errorf("%v: cusps %d/%d not opposite: %g", sys, i, opp, d)
			}
		}
		if math.Abs(total-360) > 1e-6 {
			t.Errorf("%v: cusp arcs sum to %g", sys, total)
		}
	}
}

// At the equator every classical quadrant system degenerates to equal
// divisions of right ascension, so they must agree with each other.
func TestQuadrantSystemsAgreeAtEquator(t *testing.T) {
	equator := unit.AngleFromDeg(0)
	ref, err := houses.Cusps(julian.J2000, equator, greenwichLon, houses.Regiomontanus)
	if err != nil {
		t.Fatal(err)
	}
	for _, sys := range quadrantSystems {
		h, err := houses.Cusps(julian.J2000, equator, greenwichLon, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		for i := 1; i <= 12; i++ {
			if d := diff180(h.Cusp[i].Deg(), ref.Cusp[i].Deg()); math.Abs(d) > 1e-6 {
				t.Errorf("%v cusp %d = %g, regiomontanus %g",
					sys, i, h.Cusp[i].Deg(), ref.Cusp[i].Deg())
			}
		}
	}
}

func TestPolarFallback(t *testing.T) {
	polar := unit.AngleFromDeg(75)
	for _, sys := range []houses.System{houses.Placidus, houses.Koch} {
		h, err := houses.Cusps(julian.J2000, polar, greenwichLon, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		if !h.PorphyryFallback {
			t.Errorf("%v at 75N: expected Porphyry fallback", sys)
		}
		o, err := houses.Cusps(julian.J2000, polar, greenwichLon, houses.Porphyry)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= 12; i++ {
			if d := diff180(h.Cusp[i].Deg(), o.Cusp[i].Deg()); math.Abs(d) > 1e-9 {
				t.Errorf("%v cusp %d = %g, porphyry %g", sys, i, h.Cusp[i].Deg(), o.Cusp[i].Deg())
			}
		}
	}

	// Regiomontanus, Campanus and Topocentric stay defined at 75N.
	for _, sys := range []houses.System{
		houses.Regiomontanus, houses.Campanus, houses.Topocentric,
	} {
		h, err := houses.Cusps(julian.J2000, polar, greenwichLon, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		if h.PorphyryFallback {
			t.Errorf("%v at 75N: unexpected fallback", sys)
		}
	}
}

func TestAllSystems(t *testing.T) {
	for _, sys := range []houses.System{
		houses.Placidus, houses.Koch, houses.Porphyry, houses.Regiomontanus,
		houses.Campanus, houses.Equal, houses.WholeSign, houses.Vehlow,
		houses.Meridian, houses.Morinus, houses.Alcabitius, houses.Azimuthal,
		houses.Topocentric, houses.EqualMC, houses.Gauquelin,
	} {
		h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, sys)
		if err != nil {
			t.Fatalf("%v: %v", sys, err)
		}
		wantLen := 13
		if sys == houses.Gauquelin {
			wantLen = 37
		}
		if len(h.Cusp) != wantLen {
			t.Errorf("%v: len(Cusp) = %d, want %d", sys, len(h.Cusp), wantLen)
		}
		for i := 1; i < len(h.Cusp); i++ {
			if d := h.Cusp[i].Deg(); d < 0 || d >= 360 {
				t.Errorf("%v: cusp %d = %g, outside [0, 360)", sys, i, d)
			}
		}
	}
}

func TestMeridianAndMorinusAnchors(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Meridian)
	if err != nil {
		t.Fatal(err)
	}
	// The meridian system anchors its 10th cusp on the MC.
	if d := diff180(h.Cusp[10].Deg(), h.MC.Deg()); math.Abs(d) > 1e-9 {
		t.Errorf("Meridian cusp 10 = %g, want MC %g", h.Cusp[10].Deg(), h.MC.Deg())
	}

	// Morinus cusps do not depend on latitude.
	a, err := houses.Cusps(julian.J2000, unit.AngleFromDeg(10), greenwichLon, houses.Morinus)
	if err != nil {
		t.Fatal(err)
	}
	b, err := houses.Cusps(julian.J2000, unit.AngleFromDeg(60), greenwichLon, houses.Morinus)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 12; i++ {
		if d := diff180(a.Cusp[i].Deg(), b.Cusp[i].Deg()); math.Abs(d) > 1e-9 {
			t.Errorf("Morinus cusp %d varies with latitude: %g vs %g",
				i, a.Cusp[i].Deg(), b.Cusp[i].Deg())
		}
	}
}

func TestAzimuthalMCAndIC(t *testing.T) {
	h, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Azimuthal)
	if err != nil {
		t.Fatal(err)
	}
	if d := diff180(h.Cusp[10].Deg(), h.MC.Deg()); math.Abs(d) > 1e-6 {
		t.Errorf("Azimuthal cusp 10 = %g, want MC %g", h.Cusp[10].Deg(), h.MC.Deg())
	}
	if d := diff180(h.Cusp[4].Deg(), h.IC().Deg()); math.Abs(d) > 1e-6 {
		t.Errorf("Azimuthal cusp 4 = %g, want IC %g", h.Cusp[4].Deg(), h.IC().Deg())
	}
}

func TestDifferentLocationsDiffer(t *testing.T) {
	ny, err := houses.Cusps(julian.J2000, unit.AngleFromDeg(40.7128), unit.AngleFromDeg(-74.006), houses.Equal)
	if err != nil {
		t.Fatal(err)
	}
	tokyo, err := houses.Cusps(julian.J2000, unit.AngleFromDeg(35.6762), unit.AngleFromDeg(139.6503), houses.Equal)
	if err != nil {
		t.Fatal(err)
	}
	gw, err := houses.Cusps(julian.J2000, greenwichLat, greenwichLon, houses.Equal)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(diff180(gw.Asc.Deg(), ny.Asc.Deg())) < 1 ||
		math.Abs(diff180(ny.Asc.Deg(), tokyo.Asc.Deg())) < 1 {
		t.Errorf("ascendants too close: %g, %g, %g",
			gw.Asc.Deg(), ny.Asc.Deg(), tokyo.Asc.Deg())
	}
}
