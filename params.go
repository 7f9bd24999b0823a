package main

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/vkqa/likes-contract-tests/framework"
)

const commandName = "likes-contract-tests"

type commandParams struct {
	configPath string
	envFile    string
	filters    framework.RegexFilters
	tags       framework.TagList
	repeat     int
	timeout    time.Duration
	debug      bool
	debugAll   bool
	jsonReport string
	logLevel   string
	logFormat  string
	list       bool
}

func (c *commandParams) Read(args []string, stderr io.Writer) bool {
	fs := flag.NewFlagSet(commandName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.envFile, "env-file", "", "file of environment variables to load (default .env if present)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.Var(&c.tags, "tag", "run only scenarios with these tags (comma-separated or repeated)")
	fs.IntVar(&c.repeat, "repeat", 1, "number of times to run the suite")
	fs.DurationVar(&c.timeout, "timeout", 0, "timeout for each API call (default from api.timeout)")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.jsonReport, "json", "", "also write results as JSON to this file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level (default from logging.level)")
	fs.StringVar(&c.logFormat, "log-format", "", "log format, text or json (default from logging.format)")
	fs.BoolVar(&c.list, "list", false, "print the scenarios in run order and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	if c.repeat < 1 {
		fmt.Fprintln(stderr, "-repeat must be at least 1")
		fs.Usage()
		return false
	}
	return true
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunCommand builds a command line that runs only the given scenarios, keeping the options
// that decide where configuration comes from.
func (c *commandParams) rerunCommand(scenarios []string) string {
	var b commandBuilder
	b.add(commandName)
	if c.configPath != "" {
		b.add("-config", c.configPath)
	}
	if c.envFile != "" {
		b.add("-env-file", c.envFile)
	}
	quoted := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		quoted = append(quoted, regexp.QuoteMeta(s))
	}
	b.add("-run", "^("+strings.Join(quoted, "|")+")$")
	return b.String()
}
