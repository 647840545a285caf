package runopts

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/baseline/internal/script"
)

// EnvDataRoot is consulted for the data root when -D is absent.
const EnvDataRoot = "BASELINE_DATA_ROOT"

// Options are the resolved settings of one run. They are not modified after
// Parse returns.
type Options struct {
	// Script is the path of the script to run.
	Script string

	// DataRoot prefixes relative input data paths.
	DataRoot string

	// ValidImage is the baseline image path. Empty means no comparison.
	ValidImage string

	// TempDir receives comparison artifacts.
	TempDir string

	// Threshold overrides the target default. Zero means unset.
	Threshold float64

	// Interactive disables the batch interactor stand-in.
	Interactive bool

	// SearchPaths are the -A directories, in order.
	SearchPaths []string

	// Args are the arguments Parse did not consume, in order.
	Args []string
}

// UsageError reports a malformed invocation.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Message
}

func usagef(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// Parse resolves argv into Options. argv[0] is the script path. getenv
// supplies environment lookups (os.Getenv when nil). Each -A directory is
// appended to sp once the whole vector has parsed; sp may be nil.
func Parse(argv []string, getenv func(string) string, sp *script.SearchPath) (*Options, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, usagef("missing script path")
	}
	if strings.HasPrefix(argv[0], "-") {
		return nil, usagef("expected script path, got option %q", argv[0])
	}

	opts := &Options{Script: argv[0]}
	var dataRoot, tempDir *string

	rest := argv[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]

		value := func() (string, error) {
			if i+1 >= len(rest) {
				return "", usagef("option %s requires a value", arg)
			}
			i++
			return rest[i], nil
		}

		switch arg {
		case "-D", "-V", "-T", "-A", "-t":
			v, err := value()
			if err != nil {
				return nil, err
			}
			switch arg {
			case "-D":
				dataRoot = &v
			case "-V":
				opts.ValidImage = v
			case "-T":
				tempDir = &v
			case "-A":
				opts.SearchPaths = append(opts.SearchPaths, v)
			case "-t":
				t, err := parseThreshold(v)
				if err != nil {
					return nil, err
				}
				opts.Threshold = t
			}
		case "-I":
			opts.Interactive = true
		default:
			opts.Args = append(opts.Args, arg)
		}
	}

	if dataRoot != nil {
		opts.DataRoot = *dataRoot
	} else {
		opts.DataRoot = getenv(EnvDataRoot)
	}
	if tempDir != nil {
		opts.TempDir = *tempDir
	} else {
		opts.TempDir = os.TempDir()
	}

	if sp != nil {
		for _, dir := range opts.SearchPaths {
			sp.Append(dir)
		}
	}
	return opts, nil
}

func parseThreshold(s string) (float64, error) {
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, usagef("threshold %q is not a number", s)
	}
	if err := CheckThreshold(t); err != nil {
		return 0, &UsageError{Message: err.Error()}
	}
	return t, nil
}

// CheckThreshold reports whether t can serve as a comparison threshold.
func CheckThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("threshold must be finite and non-negative, got %g", t)
	}
	return nil
}

// Argv returns the argument vector a script sees: the script path followed
// by the unconsumed arguments.
func (o *Options) Argv() []string {
	argv := make([]string, 0, len(o.Args)+1)
	argv = append(argv, o.Script)
	return append(argv, o.Args...)
}
