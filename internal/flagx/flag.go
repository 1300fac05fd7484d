// Package flagx lets several configuration layers share os.Args without
// tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags (and their values) from args.
//
// Both "-f value" and "-f=value" forms are recognised. A value is taken from
// the next argument only when it does not itself start with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFiles are the optional files named on the command line.
type ConfigFiles struct {
	// JSON is the path given with -c / -config.
	JSON string
	// Env is the dotenv file given with -env-file.
	Env string
}

// ConfigFileFlags extracts the -c/-config and -env-file flags from os.Args,
// ignoring everything else. Missing flags yield empty paths.
func ConfigFileFlags() ConfigFiles {
	var files ConfigFiles

	args := FilterArgs(os.Args[1:], []string{"-c", "-config", "-env-file"})

	fs := flag.NewFlagSet("files", flag.ContinueOnError)
	fs.StringVar(&files.JSON, "config", "", "Path to JSON config file")
	fs.StringVar(&files.JSON, "c", "", "Path to JSON config file (short)")
	fs.StringVar(&files.Env, "env-file", "", "Path to dotenv file")
	_ = fs.Parse(args)

	return files
}
