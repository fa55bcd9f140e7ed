// Package cli parses the smrender driver's command line the way the
// teacher's xtract main() does: a manual walk over os.Args rather than
// the stdlib flag package, so error messages and multi-value flags
// (e.g. repeated -i) stay under the driver's direct control.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the parsed command line.
type Options struct {
	InputFiles   []string // -i, repeatable
	RulesFile    string   // -r
	OutputFile   string   // -o
	Workers      int      // -w
	ProjLat      float64  // positional lat:lon:scale
	ProjLon      float64
	Scale        float64
	Debug        bool   // -d
	GenBounds    bool   // -g
	GenComment   string // -G
	MinMemHint   string // -M, parsed but not read by the driver
	IDOffset     int64  // -m
	Library      string // -l
	ConfigFile   string // -f
	BBoxFilter   string // -b minlat,minlon,maxlat,maxlon
	Positional   string
}

// Parse walks args (conventionally os.Args[1:]) into Options.
func Parse(args []string) (Options, error) {
	var o Options
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-i":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -i requires a filename")
			}
			o.InputFiles = append(o.InputFiles, args[i])
		case "-r":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -r requires a filename")
			}
			o.RulesFile = args[i]
		case "-o":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -o requires a filename")
			}
			o.OutputFile = args[i]
		case "-w":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -w requires a worker count")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return o, fmt.Errorf("cli: -w: %w", err)
			}
			o.Workers = n
		case "-d":
			o.Debug = true
		case "-g":
			o.GenBounds = true
		case "-G":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -G requires comment text")
			}
			o.GenComment = args[i]
		case "-M":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -M requires a value")
			}
			o.MinMemHint = args[i]
		case "-m":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -m requires an id offset")
			}
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return o, fmt.Errorf("cli: -m: %w", err)
			}
			o.IDOffset = n
		case "-l":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -l requires a library path")
			}
			o.Library = args[i]
		case "-f":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -f requires a filename")
			}
			o.ConfigFile = args[i]
		case "-b":
			i++
			if i >= len(args) {
				return o, fmt.Errorf("cli: -b requires minlat,minlon,maxlat,maxlon")
			}
			o.BBoxFilter = args[i]
		case "-P":
			// no-op flag retained for CLI-surface parity with the original
			// driver. Actions are registered in-process; the -l value is
			// stored in Options.Library but not read by the driver.
		default:
			if strings.HasPrefix(a, "-") {
				return o, fmt.Errorf("cli: unknown flag %q", a)
			}
			if o.Positional != "" {
				return o, fmt.Errorf("cli: unexpected extra argument %q", a)
			}
			o.Positional = a
		}
	}

	if o.Positional != "" {
		parts := strings.SplitN(o.Positional, ":", 3)
		if len(parts) != 3 {
			return o, fmt.Errorf("cli: positional argument must be lat:lon:scale, got %q", o.Positional)
		}
		var err error
		if o.ProjLat, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return o, fmt.Errorf("cli: bad lat: %w", err)
		}
		if o.ProjLon, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return o, fmt.Errorf("cli: bad lon: %w", err)
		}
		if o.Scale, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return o, fmt.Errorf("cli: bad scale/size: %w", err)
		}
	}

	return o, nil
}

// ParseBBox parses the -b "minlat,minlon,maxlat,maxlon" argument form.
func ParseBBox(s string) (minLat, minLon, maxLat, maxLon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("cli: -b expects 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("cli: -b: %w", err)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}
