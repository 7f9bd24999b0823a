package likestests

import (
	"fmt"

	"github.com/vkqa/likes-contract-tests/framework"
)

// SuiteOptions selects which scenarios run and how often.
type SuiteOptions struct {
	Filter framework.Filter
	Tags   []string
	// Repeat runs the whole plan this many times with the same credential. Values below 1
	// mean once.
	Repeat int
}

// Plan returns the scenarios bound to the harness, in the order they will run.
func Plan(harness *Harness) ([]framework.Scenario, error) {
	return framework.Plan(bindAll(harness))
}

// CheckTags returns an error if any of the tags is not carried by a scenario in AllScenarios.
func CheckTags(tags []string) error {
	return framework.CheckTags(bindAll(nil), tags)
}

func bindAll(harness *Harness) []framework.Scenario {
	scenarios := make([]framework.Scenario, 0, len(AllScenarios))
	for _, s := range AllScenarios {
		scenarios = append(scenarios, s.bind(harness))
	}
	return scenarios
}

func (s Scenario) bind(harness *Harness) framework.Scenario {
	run := s.Run
	return framework.Scenario{
		Name:        s.Name,
		Description: s.Description,
		Tags:        s.Tags,
		Priority:    s.Priority,
		Requires:    s.Requires,
		Action: func(c *framework.Context) {
			t := newTestScope(c, harness)
			defer t.close()
			run(t)
		},
	}
}

// RunTestSuite plans the scenarios and runs the selected ones. It returns an error without
// running anything if the scenarios cannot be ordered or a tag matches no scenario.
func RunTestSuite(
	harness *Harness,
	opts SuiteOptions,
	testLogger framework.TestLogger,
) (framework.Results, error) {
	plan, err := Plan(harness)
	if err != nil {
		return framework.Results{}, err
	}
	return RunPlannedSuite(plan, opts, testLogger)
}

// RunPlannedSuite runs the selected scenarios of a plan returned by Plan.
func RunPlannedSuite(
	plan []framework.Scenario,
	opts SuiteOptions,
	testLogger framework.TestLogger,
) (framework.Results, error) {
	if err := framework.CheckTags(plan, opts.Tags); err != nil {
		return framework.Results{}, err
	}
	repeat := max(opts.Repeat, 1)

	return framework.Run(opts.Filter, testLogger, func(c *framework.Context) {
		if repeat == 1 {
			c.RunPlan(plan, opts.Tags)
			return
		}
		for i := 1; i <= repeat; i++ {
			c.Run(fmt.Sprintf("pass %d", i), func(c *framework.Context) {
				c.RunPlan(plan, opts.Tags)
			})
		}
	}), nil
}
