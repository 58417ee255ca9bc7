// Package se1 reads segmented per-planet ephemeris files.
//
// A file holds one body: a fixed header, a table of segment byte
// offsets, and per-segment Chebyshev coefficients for ecliptic
// longitude, latitude and distance.  Segments typically span 32 days.
package se1

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/stotz/sweph/cheb"
	"github.com/stotz/sweph/internal/apperr"
)

// Header is the fixed-layout file header.
type Header struct {
	IndexPos int32   // byte position of the segment-offset table
	Flags    int32   // helio/bary, orbital-element presence
	NCoeffs  int32   // Chebyshev degree + 1 per coordinate
	RMax     float64 // distance normalization, stored as i32 milli-units
	StartJD  float64
	EndJD    float64
	SegDays  float64
	Orbital  [7]float64 // epoch + 6 mean orbital elements

	// Order is the byte order the file was found to use.
	Order binary.ByteOrder
}

// Record is one decoded segment.
type Record struct {
	StartJD float64
	EndJD   float64
	Long    []float64
	Lat     []float64
	Dist    []float64
}

// Position is an evaluated ecliptic position with first derivatives in
// the file's native units per day.
type Position struct {
	Lon, Lat, Dist                float64
	LonSpeed, LatSpeed, DistSpeed float64
}

// File is an open ephemeris file.  The decoded contents are immutable;
// the single-slot record cache is not, so a File must not be shared
// across goroutines without external synchronization.
type File struct {
	Header Header

	buf     []byte
	offsets []int32
	starts  []float64 // segment start JDs, parallel to offsets

	cacheIdx int
	cacheRec *Record
}

const headerSize = 96 // through the 7 orbital doubles

func parseHeader(buf []byte, order binary.ByteOrder) Header {
	var h Header
	h.IndexPos = int32(order.Uint32(buf[0:]))
	h.Flags = int32(order.Uint32(buf[4:]))
	h.NCoeffs = int32(order.Uint32(buf[8:]))
	h.RMax = float64(int32(order.Uint32(buf[12:]))) / 1000
	h.StartJD = math.Float64frombits(order.Uint64(buf[16:]))
	h.EndJD = math.Float64frombits(order.Uint64(buf[24:]))
	h.SegDays = math.Float64frombits(order.Uint64(buf[32:]))
	for i := range h.Orbital {
		h.Orbital[i] = math.Float64frombits(order.Uint64(buf[40+8*i:]))
	}
	h.Order = order
	return h
}

// Open reads and indexes an ephemeris file.
func Open(path string) (*File, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrFileNotFound, path)
		}
		return nil, err
	}
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d byte file", apperr.ErrCorruptHeader, len(buf))
	}

	// The coefficient count is the endianness canary: it is small and
	// nonzero in every valid file.
	var order binary.ByteOrder = binary.LittleEndian
	n := int32(order.Uint32(buf[8:]))
	if n < 1 || n > 99 {
		order = binary.BigEndian
		n = int32(order.Uint32(buf[8:]))
		if n < 1 || n > 99 {
			return nil, fmt.Errorf("%w: coefficient count %d", apperr.ErrBadEndianness, n)
		}
	}
	h := parseHeader(buf, order)

	switch {
	case h.StartJD <= 0:
		return nil, fmt.Errorf("%w: start jd %g", apperr.ErrCorruptHeader, h.StartJD)
	case h.EndJD <= h.StartJD:
		return nil, fmt.Errorf("%w: span [%g, %g]", apperr.ErrCorruptHeader, h.StartJD, h.EndJD)
	case h.SegDays < 1 || h.SegDays > 10000:
		return nil, fmt.Errorf("%w: segment length %g", apperr.ErrCorruptHeader, h.SegDays)
	}

	nSeg := int(math.Floor((h.EndJD - h.StartJD + 0.1) / h.SegDays))
	idx := int(h.IndexPos)
	if idx < headerSize || idx+4*nSeg > len(buf) {
		return nil, fmt.Errorf("%w: index at %d for %d segments", apperr.ErrCorruptHeader, idx, nSeg)
	}

	f := &File{Header: h, buf: buf, cacheIdx: -1}
	f.offsets = make([]int32, nSeg)
	f.starts = make([]float64, nSeg)
	for k := 0; k < nSeg; k++ {
		off := int32(order.Uint32(buf[idx+4*k:]))
		if int(off)+16 > len(buf) {
			return nil, fmt.Errorf("%w: segment %d offset %d", apperr.ErrCorruptHeader, k, off)
		}
		f.offsets[k] = off
		f.starts[k] = math.Float64frombits(order.Uint64(buf[off:]))
	}
	return f, nil
}

// NumRecords returns the segment count.
func (f *File) NumRecords() int { return len(f.offsets) }

func (f *File) readFloats(off int, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(f.Header.Order.Uint64(f.buf[off+8*i:]))
	}
	return out
}

// Record decodes segment k.
func (f *File) Record(k int) (*Record, error) {
	if k < 0 || k >= len(f.offsets) {
		return nil, fmt.Errorf("%w: segment %d of %d", apperr.ErrJDOutOfRange, k, len(f.offsets))
	}
	if f.cacheRec != nil && f.cacheIdx == k {
		return f.cacheRec, nil
	}
	off := int(f.offsets[k])
	n := int(f.Header.NCoeffs)
	need := off + 16 + 3*8*n
	if need > len(f.buf) {
		return nil, fmt.Errorf("%w: segment %d truncated", apperr.ErrCorruptHeader, k)
	}
	r := &Record{
		StartJD: math.Float64frombits(f.Header.Order.Uint64(f.buf[off:])),
		EndJD:   math.Float64frombits(f.Header.Order.Uint64(f.buf[off+8:])),
		Long:    f.readFloats(off+16, n),
		Lat:     f.readFloats(off+16+8*n, n),
		Dist:    f.readFloats(off+16+16*n, n),
	}
	f.cacheIdx, f.cacheRec = k, r
	return r, nil
}

// FindRecord locates the segment covering jd by binary search on segment
// start times.  It reports ErrJDOutOfRange when jd falls outside the
// file or in a gap between segments.
func (f *File) FindRecord(jd float64) (*Record, error) {
	if jd < f.Header.StartJD || jd > f.Header.EndJD || len(f.starts) == 0 {
		return nil, fmt.Errorf("%w: jd %f outside [%f, %f]",
			apperr.ErrJDOutOfRange, jd, f.Header.StartJD, f.Header.EndJD)
	}
	// First segment starting after jd, minus one.
	k := sort.SearchFloat64s(f.starts, jd)
	if k == len(f.starts) || f.starts[k] > jd {
		k--
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: jd %f precedes first segment", apperr.ErrJDOutOfRange, jd)
	}
	r, err := f.Record(k)
	if err != nil {
		return nil, err
	}
	if jd > r.EndJD {
		return nil, fmt.Errorf("%w: jd %f in segment gap", apperr.ErrJDOutOfRange, jd)
	}
	return r, nil
}

func evalCoord(c []float64, x, scale float64) (v, d float64, err error) {
	if len(c) == 0 {
		return 0, 0, nil
	}
	v, d, err = cheb.EvaluateBoth(c, x)
	return v, d * scale, err
}

// Position evaluates longitude, latitude and distance with their time
// derivatives at jd.
func (f *File) Position(jd float64) (Position, error) {
	var p Position
	r, err := f.FindRecord(jd)
	if err != nil {
		return p, err
	}
	x, err := cheb.Normalize(jd, r.StartJD, r.EndJD)
	if err != nil {
		return p, err
	}
	// d/dJD of the normalized variable.
	scale := 2 / (r.EndJD - r.StartJD)
	if p.Lon, p.LonSpeed, err = evalCoord(r.Long, x, scale); err != nil {
		return p, err
	}
	if p.Lat, p.LatSpeed, err = evalCoord(r.Lat, x, scale); err != nil {
		return p, err
	}
	if p.Dist, p.DistSpeed, err = evalCoord(r.Dist, x, scale); err != nil {
		return p, err
	}
	return p, nil
}
