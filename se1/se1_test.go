package se1_test

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stotz/sweph/internal/apperr"
	"github.com/stotz/sweph/se1"
)

// buildFile writes a synthetic two-segment file.  Each segment carries
// simple low-order series so expected positions are easy to state.
type testSeg struct {
	start, end       float64
	long, lat, dist  []float64
}

func buildFile(t *testing.T, order binary.ByteOrder, nCoeffs int32,
	startJD, endJD, segDays float64, segs []testSeg) string {
	t.Helper()

	putU32 := func(b []byte, off int, v uint32) { order.PutUint32(b[off:], v) }
	putF64 := func(b []byte, off int, v float64) {
		order.PutUint64(b[off:], math.Float64bits(v))
	}

	segBytes := 16 + 3*8*int(nCoeffs)
	indexPos := 96
	nSeg := int(math.Floor((endJD - startJD + 0.1) / segDays))
	dataPos := indexPos + 4*nSeg
	total := dataPos + segBytes*len(segs)

	buf := make([]byte, total)
	putU32(buf, 0, uint32(indexPos))
	putU32(buf, 4, 0)
	putU32(buf, 8, uint32(nCoeffs))
	putU32(buf, 12, 9000) // rmax*1000
	putF64(buf, 16, startJD)
	putF64(buf, 24, endJD)
	putF64(buf, 32, segDays)
	for i := 0; i < 7; i++ {
		putF64(buf, 40+8*i, float64(i))
	}

	for k, s := range segs {
		off := dataPos + segBytes*k
		putU32(buf, indexPos+4*k, uint32(off))
		putF64(buf, off, s.start)
		putF64(buf, off+8, s.end)
		write := func(base int, c []float64) {
			for i := 0; i < int(nCoeffs); i++ {
				var v float64
				if i < len(c) {
					v = c[i]
				}
				putF64(buf, base+8*i, v)
			}
		}
		write(off+16, s.long)
		write(off+16+8*int(nCoeffs), s.lat)
		write(off+16+16*int(nCoeffs), s.dist)
	}

	path := filepath.Join(t.TempDir(), "sepl_24.se1")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func stdSegs() []testSeg {
	return []testSeg{
		// Constant longitude 100 deg (halved c0 convention: c0 = 200).
		{2451536, 2451568, []float64{200}, []float64{2}, []float64{3}},
		// Longitude 200 + 10*T1(x).
		{2451568, 2451600, []float64{400, 10}, []float64{0}, []float64{2.4}},
	}
}

func openStd(t *testing.T, order binary.ByteOrder) *se1.File {
	t.Helper()
	path := buildFile(t, order, 3, 2451536, 2451600, 32, stdSegs())
	f, err := se1.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestOpenHeader(t *testing.T) {
	f := openStd(t, binary.LittleEndian)
	h := f.Header
	if h.NCoeffs != 3 || h.StartJD != 2451536 || h.EndJD != 2451600 || h.SegDays != 32 {
		t.Errorf("header = %+v", h)
	}
	if h.RMax != 9 {
		t.Errorf("RMax = %g, want 9", h.RMax)
	}
	if h.Order != binary.LittleEndian {
		t.Errorf("Order = %v", h.Order)
	}
	if f.NumRecords() != 2 {
		t.Errorf("NumRecords = %d", f.NumRecords())
	}
}

func TestBigEndianFile(t *testing.T) {
	f := openStd(t, binary.BigEndian)
	if f.Header.Order != binary.BigEndian {
		t.Errorf("Order = %v, want big-endian", f.Header.Order)
	}
	p, err := f.Position(2451550)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Lon-100) > 1e-12 {
		t.Errorf("Lon = %g, want 100", p.Lon)
	}
}

func TestFindRecord(t *testing.T) {
	f := openStd(t, binary.LittleEndian)
	tests := []struct {
		jd        float64
		wantStart float64
	}{
		{2451536, 2451536},
		{2451550, 2451536},
		{2451568, 2451568},
		{2451599.9, 2451568},
		{2451600, 2451568},
	}
	for _, tc := range tests {
		r, err := f.FindRecord(tc.jd)
		if err != nil {
			t.Fatalf("FindRecord(%f): %v", tc.jd, err)
		}
		if r.StartJD != tc.wantStart {
			t.Errorf("FindRecord(%f).StartJD = %f, want %f",
				tc.jd, r.StartJD, tc.wantStart)
		}
	}
	for _, jd := range []float64{2451535.9, 2451600.1, 2400000} {
		if _, err := f.FindRecord(jd); !errors.Is(err, apperr.ErrJDOutOfRange) {
			t.Errorf("FindRecord(%f) err = %v, want ErrJDOutOfRange", jd, err)
		}
	}
}

func TestPosition(t *testing.T) {
	f := openStd(t, binary.LittleEndian)

	// Constant segment: value c0/2, zero speed.
	p, err := f.Position(2451540)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Lon-100) > 1e-12 || math.Abs(p.Lat-1) > 1e-12 ||
		math.Abs(p.Dist-1.5) > 1e-12 {
		t.Errorf("Position = %+v", p)
	}
	if p.LonSpeed != 0 || p.DistSpeed != 0 {
		t.Errorf("constant segment speeds = %+v", p)
	}

	// Linear segment: lon = 200 + 10x, dlon/dJD = 10 * 2/32.
	mid := 2451584.0 // x = 0
	p, err = f.Position(mid)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Lon-200) > 1e-12 {
		t.Errorf("Lon(mid) = %g, want 200", p.Lon)
	}
	if want := 10 * 2.0 / 32; math.Abs(p.LonSpeed-want) > 1e-12 {
		t.Errorf("LonSpeed = %g, want %g", p.LonSpeed, want)
	}
	p, err = f.Position(2451600) // x = +1
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.Lon-210) > 1e-12 {
		t.Errorf("Lon(end) = %g, want 210", p.Lon)
	}
}

func TestRecordCache(t *testing.T) {
	f := openStd(t, binary.LittleEndian)
	r1, err := f.Record(0)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := f.Record(0)
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Error("repeated Record(0) did not reuse the cached record")
	}
	if _, err := f.Record(1); err != nil {
		t.Fatal(err)
	}
	r3, err := f.Record(0)
	if err != nil {
		t.Fatal(err)
	}
	if r3 == r1 {
		t.Error("single-slot cache kept an evicted record")
	}
	if r3.StartJD != r1.StartJD || r3.Long[0] != r1.Long[0] {
		t.Error("re-read record differs from original")
	}
}

func TestSegmentGap(t *testing.T) {
	segs := []testSeg{
		{2451536, 2451568, []float64{200}, nil, []float64{2}},
		// Second segment starts late, leaving a 2-day hole.
		{2451570, 2451600, []float64{400}, nil, []float64{2}},
	}
	path := buildFile(t, binary.LittleEndian, 2, 2451536, 2451600, 32, segs)
	f, err := se1.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.FindRecord(2451569); !errors.Is(err, apperr.ErrJDOutOfRange) {
		t.Errorf("gap jd err = %v, want ErrJDOutOfRange", err)
	}
	if _, err := f.FindRecord(2451571); err != nil {
		t.Errorf("post-gap jd err = %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := se1.Open(filepath.Join(t.TempDir(), "missing.se1")); !errors.Is(err, apperr.ErrFileNotFound) {
		t.Errorf("missing file err = %v, want ErrFileNotFound", err)
	}

	short := filepath.Join(t.TempDir(), "short.se1")
	if err := os.WriteFile(short, make([]byte, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := se1.Open(short); !errors.Is(err, apperr.ErrCorruptHeader) {
		t.Errorf("short file err = %v, want ErrCorruptHeader", err)
	}
}

func TestBadEndianness(t *testing.T) {
	// n_coeffs bytes invalid under both byte orders.
	path := buildFile(t, binary.LittleEndian, 3, 2451536, 2451600, 32, stdSegs())
	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	binary.LittleEndian.PutUint32(buf[8:], 0x01000100)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := se1.Open(path); !errors.Is(err, apperr.ErrBadEndianness) {
		t.Errorf("err = %v, want ErrBadEndianness", err)
	}
}

func TestCorruptHeader(t *testing.T) {
	mutate := func(name string, f func(buf []byte)) {
		t.Run(name, func(t *testing.T) {
			path := buildFile(t, binary.LittleEndian, 3, 2451536, 2451600, 32, stdSegs())
			buf, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			f(buf)
			if err := os.WriteFile(path, buf, 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := se1.Open(path); !errors.Is(err, apperr.ErrCorruptHeader) {
				t.Errorf("err = %v, want ErrCorruptHeader", err)
			}
		})
	}
	putF64 := func(buf []byte, off int, v float64) {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
	}
	mutate("negative start", func(buf []byte) { putF64(buf, 16, -5) })
	mutate("end before start", func(buf []byte) { putF64(buf, 24, 2451000) })
	mutate("segment length", func(buf []byte) { putF64(buf, 32, 20000) })
	mutate("index past eof", func(buf []byte) {
		binary.LittleEndian.PutUint32(buf[0:], 1<<30)
	})
}
