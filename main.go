package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vkqa/likes-contract-tests/config"
	"github.com/vkqa/likes-contract-tests/framework"
	"github.com/vkqa/likes-contract-tests/likestests"
	"github.com/vkqa/likes-contract-tests/logging"
	"github.com/vkqa/likes-contract-tests/session"
	"github.com/vkqa/likes-contract-tests/vkapi"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	if !params.Read(args, stderr) {
		return 1
	}

	cfg, err := config.Load(params.configPath, params.envFile)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %s\n", err)
		return 1
	}
	if params.logLevel != "" {
		cfg.Logging.Level = params.logLevel
	}
	if params.logFormat != "" {
		cfg.Logging.Format = params.logFormat
	}
	if params.timeout > 0 {
		cfg.API.Timeout = params.timeout
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %s\n", err)
		return 1
	}

	if params.list {
		return listScenarios(stdout)
	}
	if err := likestests.CheckTags(params.tags); err != nil {
		fmt.Fprintf(stderr, "Invalid parameters: %s\n", err)
		return 1
	}

	httpClient := &http.Client{Timeout: cfg.API.Timeout}
	bootstrap := session.Bootstrap{
		TokenURL:   cfg.OAuth.URL,
		HTTPClient: httpClient,
		Logger:     logger,
	}
	bootstrapCtx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	credential, err := bootstrap.Resolve(bootstrapCtx, cfg.Credentials())
	cancel()
	if err != nil {
		if config.IsValidationError(err) {
			fmt.Fprintf(stderr, "Configuration error: %s\n", err)
		} else {
			logger.WithError(err).Error("Could not start a session")
		}
		return 1
	}

	client := vkapi.NewClient(
		vkapi.WithBaseURL(cfg.API.URL),
		vkapi.WithVersion(cfg.API.Version),
		vkapi.WithHTTPClient(httpClient),
		vkapi.WithLogger(logger),
	)
	harness := likestests.NewHarness(client, credential, cfg.API.Timeout)
	plan, err := likestests.Plan(harness)
	if err != nil {
		logger.WithError(err).Error("Test suite is invalid")
		return 1
	}

	fmt.Fprintln(stdout)
	framework.PrintFilterDescription(stdout, params.filters, params.tags)
	fmt.Fprintf(stdout, "Running test suite as %s\n", credential)

	testLogger := &ConsoleTestLogger{
		Out:                  stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	opts := likestests.SuiteOptions{
		Filter: params.filters.AsFilter,
		Tags:   params.tags,
		Repeat: params.repeat,
	}
	results, err := likestests.RunPlannedSuite(plan, opts, testLogger)
	if err != nil {
		logger.WithError(err).Error("Test suite is invalid")
		return 1
	}

	fmt.Fprintln(stdout)
	framework.PrintResults(stdout, results)
	logger.WithFields(logrus.Fields{
		"passed":  results.Passed(),
		"failed":  len(results.Failures),
		"skipped": len(results.Skipped),
	}).Info("Test run finished")

	if params.jsonReport != "" {
		if err := writeJSONReport(params.jsonReport, results); err != nil {
			logger.WithError(err).Error("Could not write JSON report")
			return 1
		}
	}

	if !results.OK() {
		names := framework.WithRequirements(plan, failedScenarios(results, params.repeat))
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "To rerun the failed tests, get a new authorization code and run:")
		fmt.Fprintf(stdout, "  %s\n", params.rerunCommand(names))
		return 1
	}
	return 0
}

func listScenarios(out io.Writer) int {
	plan, err := likestests.Plan(nil)
	if err != nil {
		fmt.Fprintf(out, "Test suite is invalid: %s\n", err)
		return 1
	}
	for _, s := range plan {
		fmt.Fprintf(out, "%-34s %-14v %s\n", s.Name, s.Tags, s.Description)
	}
	return 0
}

func writeJSONReport(path string, results framework.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := framework.WriteJSONReport(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// failedScenarios returns the scenario names of failed tests. Subtests and repeated passes map
// back to the scenario they belong to.
func failedScenarios(results framework.Results, repeat int) []string {
	depth := 0
	if repeat > 1 {
		depth = 1
	}
	var names []string
	seen := make(map[string]bool)
	for _, f := range results.Failures {
		if len(f.TestID.Path) <= depth {
			continue
		}
		name := f.TestID.Path[depth]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
