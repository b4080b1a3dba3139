package flags

import (
	"flag"
	"fmt"
	"io"

	"epss-viewer/internal/cvss"
)

// RunOptions holds everything a single run needs from the command line.
type RunOptions struct {
	ConfigPath string
	// Identifiers are the positional arguments, in order.
	Identifiers []string
	Selected    int
	Date        string

	Serve  bool
	Listen string

	FetchCVSS bool
	Vector    string
	NvdAPIKey string
	Opts      cvss.MetricsOptions

	NoColor  bool
	Width    int
	LogLevel string
}

// Parse parses args (without the program name) into run options.
func Parse(args []string, output io.Writer) (RunOptions, error) {
	var ro RunOptions
	fs := flag.NewFlagSet("epss-viewer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: epss-viewer [flags] CVE-ID [CVE-ID...]\n       epss-viewer -serve [flags]\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&ro.ConfigPath, "config", "", "Path to a YAML config file (or set EPSS_VIEWER_CONFIG)")
	fs.IntVar(&ro.Selected, "select", 0, "Index of the identifier to query among the valid ones")
	fs.StringVar(&ro.Date, "date", "", "Score date as YYYY-MM-DD (default today)")
	fs.BoolVar(&ro.Serve, "serve", false, "Serve the HTTP API instead of running a single query")
	fs.StringVar(&ro.Listen, "listen", "", "HTTP listen address (overrides server.listen)")
	fs.BoolVar(&ro.FetchCVSS, "fetch-cvss", false, "Fetch the CVSS v3 base vector from NVD and score it with the EPSS-derived exploit maturity")
	fs.StringVar(&ro.Vector, "vector", "", "CVSS base vector to score with the EPSS-derived exploit maturity")
	fs.StringVar(&ro.NvdAPIKey, "nvd-api-key", "", "NVD API key for higher rate limits; or set NVD_API_KEY env")
	fs.StringVar(&ro.Opts.E, "e", "", "Override Exploit Code Maturity (X, U, P, F, H) instead of deriving it from EPSS")
	fs.StringVar(&ro.Opts.RL, "rl", "", "Remediation Level (X, O, T, W, U)")
	fs.StringVar(&ro.Opts.RC, "rc", "", "Report Confidence (X, U, R, C)")
	fs.StringVar(&ro.Opts.CR, "cr", "", "Confidentiality Requirement (X, L, M, H)")
	fs.StringVar(&ro.Opts.IR, "ir", "", "Integrity Requirement (X, L, M, H)")
	fs.StringVar(&ro.Opts.AR, "ar", "", "Availability Requirement (X, L, M, H)")
	fs.BoolVar(&ro.Opts.Smart, "smart", false, "Only apply modified metrics that do not raise severity above the base")
	fs.BoolVar(&ro.NoColor, "no-color", false, "Disable colored output")
	fs.IntVar(&ro.Width, "width", 0, "Plot width in columns (default terminal width)")
	fs.StringVar(&ro.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")

	// flag stops at the first positional argument; keep parsing after each
	// one so flags may follow identifiers. "--" ends flag parsing.
	for {
		if err := fs.Parse(args); err != nil {
			return ro, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			ro.Identifiers = append(ro.Identifiers, rest...)
			break
		}
		ro.Identifiers = append(ro.Identifiers, rest[0])
		args = rest[1:]
	}

	if ro.Width < 0 {
		return ro, fmt.Errorf("-width must not be negative")
	}
	if ro.Selected < 0 {
		return ro, fmt.Errorf("-select must not be negative")
	}
	if !ro.Serve && len(ro.Identifiers) == 0 {
		fs.Usage()
		return ro, fmt.Errorf("no CVE identifiers given")
	}
	return ro, nil
}
