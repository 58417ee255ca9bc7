// Package jpl reads JPL DE binary ephemeris files.
//
// A file is a sequence of fixed-size records of doubles.  The first
// record is the header; each following record covers interval_days and
// holds Chebyshev sub-interval coefficients for thirteen quantities:
// eleven bodies plus nutations and librations.
package jpl

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/stotz/sweph/cheb"
	"github.com/stotz/sweph/internal/apperr"
)

// Target indexes a quantity in the file's coefficient table, in the
// standard DE ordering.
type Target int

const (
	Mercury Target = iota
	Venus
	EMB // Earth-Moon barycenter
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Moon // geocentric
	Sun
	Nutation  // longitude and obliquity, 2 components
	Libration // lunar Euler angles
	nTargets
)

var targetNames = [nTargets]string{
	"Mercury", "Venus", "EMB", "Mars", "Jupiter", "Saturn",
	"Uranus", "Neptune", "Pluto", "Moon", "Sun",
	"Nutation", "Libration",
}

func (t Target) String() string {
	if t < 0 || t >= nTargets {
		return fmt.Sprintf("Target(%d)", int(t))
	}
	return targetNames[t]
}

// components returns how many coordinate series the target carries.
func (t Target) components() int {
	if t == Nutation {
		return 2
	}
	return 3
}

// Header is the decoded first record.
type Header struct {
	Title          string
	DENum          int32
	StartJD        float64
	EndJD          float64
	Interval       float64
	AUkm           float64
	EarthMoonRatio float64
	NConstants     int32
	ConstantNames  []string
	IPT            [13][3]int32 // (1-based start, n_coef, n_intervals)
	RecordSize     int          // bytes
	Order          binary.ByteOrder
}

// Eph is an open DE file.  The header is immutable after Open; the
// single-slot record cache is not, so an Eph must not be shared across
// goroutines without external synchronization.
type Eph struct {
	Header Header

	f *os.File

	cacheNum int
	cacheRec []float64
}

const (
	titleLen  = 252  // 3 x 84 ASCII
	namesOff  = 252  // 400 names, 6 chars each
	doubleOff = 2652 // ss[3]
	nconOff   = 2676
	auOff     = 2680
	emratOff  = 2688
	iptOff    = 2696 // 12 triples
	denumOff  = 2840
	lptOff    = 2844 // 13th triple
	hdrBytes  = 2856
)

func (h *Header) f64(buf []byte, off int) float64 {
	return math.Float64frombits(h.Order.Uint64(buf[off:]))
}

func (h *Header) i32(buf []byte, off int) int32 {
	return int32(h.Order.Uint32(buf[off:]))
}

func parseHeader(buf []byte) (Header, error) {
	var h Header

	// The interval field is the endianness canary: it is a small number
	// of days in every published ephemeris.
	h.Order = binary.LittleEndian
	iv := h.f64(buf, doubleOff+16)
	if !(iv >= 1 && iv <= 200) {
		h.Order = binary.BigEndian
		iv = h.f64(buf, doubleOff+16)
		if !(iv >= 1 && iv <= 200) {
			return h, fmt.Errorf("%w: interval %g", apperr.ErrBadEndianness, iv)
		}
	}

	h.Title = strings.TrimSpace(string(buf[:titleLen]))
	h.StartJD = h.f64(buf, doubleOff)
	h.EndJD = h.f64(buf, doubleOff+8)
	h.Interval = iv
	h.NConstants = h.i32(buf, nconOff)
	h.AUkm = h.f64(buf, auOff)
	h.EarthMoonRatio = h.f64(buf, emratOff)
	for i := 0; i < 12; i++ {
		for j := 0; j < 3; j++ {
			h.IPT[i][j] = h.i32(buf, iptOff+4*(3*i+j))
		}
	}
	h.DENum = h.i32(buf, denumOff)
	for j := 0; j < 3; j++ {
		h.IPT[12][j] = h.i32(buf, lptOff+4*j)
	}

	switch {
	case h.EndJD <= h.StartJD:
		return h, fmt.Errorf("%w: span [%g, %g]", apperr.ErrCorruptHeader, h.StartJD, h.EndJD)
	case h.AUkm < 1.49e8 || h.AUkm > 1.50e8:
		return h, fmt.Errorf("%w: au %g km", apperr.ErrCorruptHeader, h.AUkm)
	case h.EarthMoonRatio < 80 || h.EarthMoonRatio > 82:
		return h, fmt.Errorf("%w: earth/moon ratio %g", apperr.ErrCorruptHeader, h.EarthMoonRatio)
	case h.NConstants < 0 || h.NConstants > 10000:
		return h, fmt.Errorf("%w: %d constants", apperr.ErrCorruptHeader, h.NConstants)
	}

	n := int(h.NConstants)
	if n > 400 {
		n = 400
	}
	h.ConstantNames = make([]string, n)
	for i := range h.ConstantNames {
		h.ConstantNames[i] = strings.TrimSpace(string(buf[namesOff+6*i : namesOff+6*i+6]))
	}

	// Record size: the table entry with the highest start position
	// determines the number of doubles per record.
	kmx, khi := int32(-1), -1
	for i, t := range h.IPT {
		if t[0] > kmx {
			kmx, khi = t[0], i
		}
	}
	if khi < 0 || kmx < 1 {
		return h, fmt.Errorf("%w: empty index table", apperr.ErrCorruptHeader)
	}
	ncomp := 3
	if khi == int(Nutation) {
		ncomp = 2
	}
	nd := int(kmx) + ncomp*int(h.IPT[khi][1])*int(h.IPT[khi][2]) - 1
	// One historical ephemeris was issued with short records padded out.
	if nd == 1546 {
		nd = 1652
	}
	h.RecordSize = 8 * nd
	if h.RecordSize < hdrBytes {
		return h, fmt.Errorf("%w: record size %d", apperr.ErrCorruptHeader, h.RecordSize)
	}
	return h, nil
}

// Open reads the header of a DE file.
func Open(path string) (*Eph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrFileNotFound, path)
		}
		return nil, err
	}
	buf := make([]byte, hdrBytes)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", apperr.ErrCorruptHeader, err)
	}
	h, err := parseHeader(buf)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Eph{Header: h, f: f, cacheNum: -1}, nil
}

// Close releases the underlying file.
func (e *Eph) Close() error { return e.f.Close() }

// NumRecords returns the data record count.
func (e *Eph) NumRecords() int {
	h := &e.Header
	return int(math.Floor((h.EndJD - h.StartJD) / h.Interval))
}

// FindRecord returns the data record number covering jd.
func (e *Eph) FindRecord(jd float64) (int, error) {
	h := &e.Header
	if jd < h.StartJD || jd > h.EndJD {
		return 0, fmt.Errorf("%w: jd %f outside [%f, %f]",
			apperr.ErrJDOutOfRange, jd, h.StartJD, h.EndJD)
	}
	n := int(math.Floor((jd - h.StartJD) / h.Interval))
	if n == e.NumRecords() { // jd exactly at the file end
		n--
	}
	return n, nil
}

// ReadRecord returns the doubles of data record n.  The most recently
// read record is held in a single-slot cache and returned directly on a
// repeat request; callers must not modify the slice.
func (e *Eph) ReadRecord(n int) ([]float64, error) {
	if n < 0 || n >= e.NumRecords() {
		return nil, fmt.Errorf("%w: record %d of %d",
			apperr.ErrJDOutOfRange, n, e.NumRecords())
	}
	if e.cacheRec != nil && e.cacheNum == n {
		return e.cacheRec, nil
	}
	h := &e.Header
	buf := make([]byte, h.RecordSize)
	// The header occupies record 1; data records follow contiguously.
	if _, err := e.f.ReadAt(buf, int64(h.RecordSize)*int64(n+1)); err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", apperr.ErrCorruptHeader, n, err)
	}
	rec := make([]float64, h.RecordSize/8)
	for i := range rec {
		rec[i] = math.Float64frombits(h.Order.Uint64(buf[8*i:]))
	}
	e.cacheNum, e.cacheRec = n, rec
	return rec, nil
}

// Coefficients extracts the per-component coefficient arrays and the
// sub-interval bounds covering jd for the given target.
func (e *Eph) Coefficients(jd float64, t Target) (coeffs [][]float64, subStart, subEnd float64, err error) {
	if t < 0 || t >= nTargets {
		return nil, 0, 0, fmt.Errorf("%w: %v", apperr.ErrBodyUnsupported, t)
	}
	ipt := e.Header.IPT[t]
	if ipt[1] <= 0 || ipt[2] <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: %v absent from this file", apperr.ErrBodyUnsupported, t)
	}
	n, err := e.FindRecord(jd)
	if err != nil {
		return nil, 0, 0, err
	}
	rec, err := e.ReadRecord(n)
	if err != nil {
		return nil, 0, 0, err
	}
	recStart, recEnd := rec[0], rec[1]
	if jd < recStart || jd > recEnd {
		return nil, 0, 0, fmt.Errorf("%w: jd %f not in record [%f, %f]",
			apperr.ErrJDOutOfRange, jd, recStart, recEnd)
	}

	nIntervals := int(ipt[2])
	nCoef := int(ipt[1])
	ncomp := t.components()
	dur := (recEnd - recStart) / float64(nIntervals)
	sub := int(math.Floor((jd - recStart) / dur))
	if sub < 0 {
		sub = 0
	}
	if sub > nIntervals-1 {
		sub = nIntervals - 1
	}

	// The table start positions are 1-based.
	base := int(ipt[0]) - 1 + sub*nCoef*ncomp
	if base+nCoef*ncomp > len(rec) {
		return nil, 0, 0, fmt.Errorf("%w: %v coefficients past record end",
			apperr.ErrCorruptHeader, t)
	}
	coeffs = make([][]float64, ncomp)
	for c := range coeffs {
		coeffs[c] = rec[base+c*nCoef : base+(c+1)*nCoef]
	}
	subStart = recStart + float64(sub)*dur
	subEnd = subStart + dur
	return coeffs, subStart, subEnd, nil
}

// State evaluates position and velocity of a target at jd, in the raw
// units of the file: km and km/day for bodies, radians and radians/day
// for nutations and librations.  Moon coordinates are geocentric, all
// other bodies barycentric.  The velocity slice has the same length as
// the position slice (2 for nutations, 3 otherwise).
func (e *Eph) State(jd float64, t Target) (pos, vel []float64, err error) {
	coeffs, subStart, subEnd, err := e.Coefficients(jd, t)
	if err != nil {
		return nil, nil, err
	}
	x, err := cheb.Normalize(jd, subStart, subEnd)
	if err != nil {
		return nil, nil, err
	}
	scale := 2 / (subEnd - subStart)
	pos = make([]float64, len(coeffs))
	vel = make([]float64, len(coeffs))
	for c, series := range coeffs {
		// The file convention carries the full c0 term; double it for
		// the halved-c0 evaluator.
		adj := make([]float64, len(series))
		copy(adj, series)
		adj[0] *= 2
		v, d, err := cheb.EvaluateBoth(adj, x)
		if err != nil {
			return nil, nil, err
		}
		pos[c] = v
		vel[c] = d * scale
	}
	return pos, vel, nil
}

// BarycentricEarth derives the Earth's barycentric state from the
// Earth-Moon barycenter and the geocentric Moon.
func (e *Eph) BarycentricEarth(jd float64) (pos, vel [3]float64, err error) {
	embP, embV, err := e.State(jd, EMB)
	if err != nil {
		return pos, vel, err
	}
	moonP, moonV, err := e.State(jd, Moon)
	if err != nil {
		return pos, vel, err
	}
	f := 1 / (1 + e.Header.EarthMoonRatio)
	for i := 0; i < 3; i++ {
		pos[i] = embP[i] - moonP[i]*f
		vel[i] = embV[i] - moonV[i]*f
	}
	return pos, vel, nil
}

// BarycentricMoon derives the Moon's barycentric state.
func (e *Eph) BarycentricMoon(jd float64) (pos, vel [3]float64, err error) {
	ep, ev, err := e.BarycentricEarth(jd)
	if err != nil {
		return pos, vel, err
	}
	moonP, moonV, err := e.State(jd, Moon)
	if err != nil {
		return pos, vel, err
	}
	for i := 0; i < 3; i++ {
		pos[i] = ep[i] + moonP[i]
		vel[i] = ev[i] + moonV[i]
	}
	return pos, vel, nil
}
