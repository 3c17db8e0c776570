// Package flagx lets several independent flag sets share one command line.
// Each loader filters os.Args down to the flags it owns before parsing, so
// an unknown flag in one set never aborts another.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// configFlags name the JSON config file on the command line.
var configFlags = []string{"-c", "-config", "--config"}

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-c conf.json" and "-c=conf.json" are recognised; a value
// that starts with "-" is treated as the next flag, not as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, hasValue := strings.Cut(arg, "="); hasValue && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath returns the JSON config path given by -c, -config or --config
// in args, or "" when none is present. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, configFlags))

	return path
}

// JsonConfigFlags is ConfigPath over the process arguments.
func JsonConfigFlags() string {
	return ConfigPath(os.Args[1:])
}
