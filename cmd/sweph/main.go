// Command sweph prints body positions, house cusps and sidereal time
// from the ephemeris library.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"github.com/urfave/cli/v3"

	"github.com/stotz/sweph/ayanamsa"
	"github.com/stotz/sweph/ephcfg"
	"github.com/stotz/sweph/ephem"
	"github.com/stotz/sweph/houses"
	"github.com/stotz/sweph/internal/logging"
	"github.com/stotz/sweph/jpl"
	"github.com/stotz/sweph/julian"
	"github.com/stotz/sweph/se1"
	"github.com/stotz/sweph/sidereal"
	"github.com/stotz/sweph/timescale"
)

var logger = logging.New(logging.Info)

var dateLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parseDate turns a --date value into a UT Julian Day.
func parseDate(s string) (float64, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		hour := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
		return julian.FromDate(julian.Date{
			Year:  t.Year(),
			Month: int(t.Month()),
			Day:   t.Day(),
			Hour:  hour,
		})
	}
	return 0, fmt.Errorf("unrecognized date %q, want YYYY-MM-DD[THH:MM[:SS]]", s)
}

// setup applies global flags and returns the file resolver.
func setup(cmd *cli.Command) (*ephcfg.Resolver, ephcfg.Config, error) {
	var cfg ephcfg.Config
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = ephcfg.LoadConfig(path)
		if err != nil {
			return nil, cfg, err
		}
	}
	level := cmd.String("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	logger = logging.New(logging.ParseLevel(level))

	ephePath := cmd.String("ephe-path")
	if ephePath == "" {
		ephePath = cfg.EphePath
	}
	r := ephcfg.NewResolver(ephePath)
	logger.Debugf("search path: %s", strings.Join(r.Paths, ", "))
	return r, cfg, nil
}

// buildEngine attaches whatever binary sources the search path offers.
// Missing or unreadable files degrade to the analytic fallback.
func buildEngine(cmd *cli.Command, r *ephcfg.Resolver, cfg ephcfg.Config) *ephem.Engine {
	e := ephem.New()

	name := cfg.JPLFile
	if name == "" {
		if hits := r.List("de*.eph"); len(hits) > 0 {
			name = hits[0]
		}
	} else if full, err := r.Locate(name); err == nil {
		name = full
	}
	if name != "" {
		f, err := jpl.Open(name)
		if err != nil {
			logger.Warnf("jpl %s: %v", name, err)
		} else {
			logger.Infof("jpl DE%d %s", f.Header.DENum, name)
			e.JPL = f
		}
	}

	for _, spec := range cmd.StringSlice("se1") {
		body, path, ok := strings.Cut(spec, "=")
		if !ok {
			logger.Warnf("se1 %q: want Body=path", spec)
			continue
		}
		b, err := ephem.BodyFromName(body)
		if err != nil {
			logger.Warnf("se1 %q: %v", spec, err)
			continue
		}
		full, err := r.Locate(path)
		if err != nil {
			full = path
		}
		f, err := se1.Open(full)
		if err != nil {
			logger.Warnf("se1 %s: %v", full, err)
			continue
		}
		logger.Infof("se1 %v %s", b, full)
		e.SE1[b] = f
	}
	return e
}

func runPos(_ context.Context, cmd *cli.Command) error {
	r, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	jdUT, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	jdTT, err := timescale.UTToTT(jdUT)
	if err != nil {
		return err
	}
	b, err := ephem.BodyFromName(cmd.String("body"))
	if err != nil {
		return err
	}

	var flags ephem.CalcFlag
	if cmd.Bool("equatorial") {
		flags |= ephem.FlagEquatorial
	}
	eng := buildEngine(cmd, r, cfg)
	p, err := eng.Calculate(jdTT, b, flags)
	if err != nil {
		return err
	}
	logger.Debugf("%v from %v source", b, eng.Source(b, jdTT))

	if cmd.Bool("equatorial") {
		fmt.Printf("%-8v RA %2v  Dec %2v  Dist %.8f AU\n",
			b, sexa.FmtRA(unit.RAFromDeg(p.Lon.Deg())), sexa.FmtAngle(p.Lat), p.Dist)
	} else {
		lon := p.Lon
		zodiac := "tropical"
		if cmd.Bool("sidereal") {
			sys := ayanamsa.SystemFromName(cmd.String("ayanamsa"))
			lon = ayanamsa.TropicalToSidereal(p.Lon, jdTT, sys)
			zodiac = "sidereal " + sys.String()
		}
		fmt.Printf("%-8v Lon %2v  Lat %2v  Dist %.8f AU  (%s)\n",
			b, sexa.FmtAngle(lon), sexa.FmtAngle(p.Lat), p.Dist, zodiac)
		if cmd.Bool("sidereal") {
			n := ayanamsa.Nakshatra(lon)
			fmt.Printf("%-8s %s pada %d\n", "", ayanamsa.NakshatraName(n),
				ayanamsa.NakshatraPada(lon))
		}
	}
	fmt.Printf("%-8s speed %+.6f deg/d\n", "", p.LonSpeed)
	return nil
}

func runHouses(_ context.Context, cmd *cli.Command) error {
	_, cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	jdUT, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	code := cmd.String("system")
	if code == "" {
		code = cfg.DefaultSystem
	}
	if code == "" {
		code = "P"
	}
	var sys houses.System
	if len(code) == 1 {
		sys, err = houses.SystemFromCode(code[0])
	} else {
		sys, err = houses.SystemFromName(code)
	}
	if err != nil {
		return err
	}
	lat := unit.AngleFromDeg(cmd.Float("lat"))
	lon := unit.AngleFromDeg(cmd.Float("lon"))

	h, err := houses.Cusps(jdUT, lat, lon, sys)
	if err != nil {
		return err
	}
	if h.PorphyryFallback {
		logger.Warnf("%v undefined at latitude %v, Porphyry cusps substituted",
			sys, sexa.FmtAngle(lat))
	}
	fmt.Printf("%v houses\n", h.System)
	fmt.Printf("ASC %2v  MC %2v  ARMC %2v  Vertex %2v\n",
		sexa.FmtAngle(h.Asc), sexa.FmtAngle(h.MC),
		sexa.FmtAngle(h.ARMC), sexa.FmtAngle(h.Vertex))
	for i := 1; i < len(h.Cusp); i++ {
		fmt.Printf("%3d  %2v\n", i, sexa.FmtAngle(h.Cusp[i]))
	}
	return nil
}

func runSidTime(_ context.Context, cmd *cli.Command) error {
	if _, _, err := setup(cmd); err != nil {
		return err
	}
	jdUT, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	lon := unit.AngleFromDeg(cmd.Float("lon"))
	fmt.Printf("GMST %2v\n", sexa.FmtTime(sidereal.GMST(jdUT)))
	fmt.Printf("GAST %2v\n", sexa.FmtTime(sidereal.GAST(jdUT)))
	fmt.Printf("LST  %2v\n", sexa.FmtTime(sidereal.LST(jdUT, lon)))
	return nil
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	r, _, err := setup(cmd)
	if err != nil {
		return err
	}
	for _, path := range r.List("*.se1") {
		f, err := se1.Open(path)
		if err != nil {
			fmt.Printf("%s  unreadable: %v\n", path, err)
			continue
		}
		s, e := julian.ToGregorian(f.Header.StartJD), julian.ToGregorian(f.Header.EndJD)
		fmt.Printf("%s  se1  %d segments  %d-%02d-%02d .. %d-%02d-%02d\n",
			path, f.NumRecords(),
			s.Year, s.Month, s.Day, e.Year, e.Month, e.Day)
	}
	for _, path := range r.List("*.eph") {
		f, err := jpl.Open(path)
		if err != nil {
			fmt.Printf("%s  unreadable: %v\n", path, err)
			continue
		}
		s, e := julian.ToGregorian(f.Header.StartJD), julian.ToGregorian(f.Header.EndJD)
		fmt.Printf("%s  DE%d  %d records  %d-%02d-%02d .. %d-%02d-%02d\n",
			path, f.Header.DENum, f.NumRecords(),
			s.Year, s.Month, s.Day, e.Year, e.Month, e.Day)
		f.Close()
	}
	return nil
}

func main() {
	dateFlag := func() *cli.StringFlag {
		return &cli.StringFlag{
			Name:     "date",
			Usage:    "UT instant, YYYY-MM-DD[THH:MM[:SS]]",
			Required: true,
		}
	}

	cmd := &cli.Command{
		Name:  "sweph",
		Usage: "Planetary positions, house cusps and sidereal time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ephe-path",
				Usage:   "ephemeris search path",
				Sources: cli.EnvVars(ephcfg.EnvPath),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				Sources: cli.EnvVars("SWEPH_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "pos",
				Usage: "Geocentric position of a body",
				Flags: []cli.Flag{
					dateFlag(),
					&cli.StringSliceFlag{
						Name:  "se1",
						Usage: "attach an SE1 file as Body=path, repeatable",
					},
					&cli.StringFlag{
						Name:     "body",
						Usage:    "Sun, Moon, Mercury .. Pluto, MeanNode, TrueNode",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "equatorial",
						Usage: "right ascension and declination",
					},
					&cli.BoolFlag{
						Name:  "sidereal",
						Usage: "sidereal longitude with nakshatra",
					},
					&cli.StringFlag{
						Name:  "ayanamsa",
						Usage: "FaganBradley, Lahiri, Raman, KP",
						Value: "Lahiri",
					},
				},
				Action: runPos,
			},
			{
				Name:  "houses",
				Usage: "House cusps and angles",
				Flags: []cli.Flag{
					dateFlag(),
					&cli.FloatFlag{
						Name:     "lat",
						Usage:    "geographic latitude, degrees north",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "lon",
						Usage:    "geographic longitude, degrees east",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "system",
						Usage: "house system code (P, K, O, R, C, A, W, V, X, M, B, H, T, D, G)",
					},
				},
				Action: runHouses,
			},
			{
				Name:   "sidtime",
				Usage:  "Greenwich and local sidereal time",
				Flags:  []cli.Flag{dateFlag(), &cli.FloatFlag{Name: "lon", Usage: "geographic longitude, degrees east"}},
				Action: runSidTime,
			},
			{
				Name:   "info",
				Usage:  "Ephemeris files on the search path",
				Action: runInfo,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
