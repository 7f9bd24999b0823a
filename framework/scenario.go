package framework

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Scenario is a named test with ordering metadata. Scenarios are declared statically and
// never modified.
type Scenario struct {
	Name        string
	Description string
	Tags        []string
	// Priority orders scenarios that are ready to run at the same time; lower runs first and
	// an undefined priority counts as zero.
	Priority ldvalue.OptionalInt
	// Requires names scenarios that must pass before this one runs.
	Requires []string
	Action   func(*Context)
}

func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s Scenario) priority() int {
	return s.Priority.OrElse(0)
}

// PlanError is returned by Plan when the scenarios cannot be ordered.
type PlanError struct {
	Scenario string
	Problem  string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("cannot plan scenario %q: %s", e.Scenario, e.Problem)
}

// Plan returns the scenarios in execution order: every scenario comes after the ones it
// requires, and among the scenarios whose requirements are already placed, the one with the
// lowest priority comes first, ties going to the one declared first.
func Plan(scenarios []Scenario) ([]Scenario, error) {
	index := make(map[string]int, len(scenarios))
	for i, s := range scenarios {
		if _, dup := index[s.Name]; dup {
			return nil, &PlanError{Scenario: s.Name, Problem: "declared more than once"}
		}
		index[s.Name] = i
	}

	waitingOn := make([]int, len(scenarios))
	dependents := make([][]int, len(scenarios))
	for i, s := range scenarios {
		for _, req := range s.Requires {
			j, ok := index[req]
			if !ok {
				return nil, &PlanError{Scenario: s.Name, Problem: fmt.Sprintf("requires unknown scenario %q", req)}
			}
			waitingOn[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i := range scenarios {
		if waitingOn[i] == 0 {
			ready = append(ready, i)
		}
	}

	plan := make([]Scenario, 0, len(scenarios))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(a, b int) bool {
			pa, pb := scenarios[ready[a]].priority(), scenarios[ready[b]].priority()
			if pa != pb {
				return pa < pb
			}
			return ready[a] < ready[b]
		})
		next := ready[0]
		ready = ready[1:]
		plan = append(plan, scenarios[next])
		for _, d := range dependents[next] {
			waitingOn[d]--
			if waitingOn[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(plan) < len(scenarios) {
		var stuck []string
		for i, s := range scenarios {
			if waitingOn[i] > 0 {
				stuck = append(stuck, s.Name)
			}
		}
		return nil, &PlanError{Scenario: stuck[0], Problem: "circular requirement among " + strings.Join(stuck, ", ")}
	}
	return plan, nil
}

// SelectByTags returns the names of the scenarios tagged with any of the tags, plus everything
// they require directly or indirectly. An empty tag list selects everything.
func SelectByTags(scenarios []Scenario, tags []string) map[string]bool {
	return selectWithRequirements(scenarios, func(s Scenario) bool {
		if len(tags) == 0 {
			return true
		}
		for _, tag := range tags {
			if s.HasTag(tag) {
				return true
			}
		}
		return false
	})
}

// KnownTags returns every tag carried by any of the scenarios, sorted.
func KnownTags(scenarios []Scenario) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, s := range scenarios {
		for _, t := range s.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// CheckTags returns an error naming the first tag that none of the scenarios carries.
func CheckTags(scenarios []Scenario, tags []string) error {
	known := KnownTags(scenarios)
	for _, tag := range tags {
		i := sort.SearchStrings(known, tag)
		if i == len(known) || known[i] != tag {
			return fmt.Errorf("unknown tag %q (known tags: %s)", tag, strings.Join(known, ", "))
		}
	}
	return nil
}

// WithRequirements returns the named scenarios and everything they require, in plan order.
func WithRequirements(plan []Scenario, names []string) []string {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	selected := selectWithRequirements(plan, func(s Scenario) bool { return wanted[s.Name] })
	var ret []string
	for _, s := range plan {
		if selected[s.Name] {
			ret = append(ret, s.Name)
		}
	}
	return ret
}

func selectWithRequirements(scenarios []Scenario, pick func(Scenario) bool) map[string]bool {
	selected := make(map[string]bool, len(scenarios))
	byName := make(map[string]Scenario, len(scenarios))
	for _, s := range scenarios {
		byName[s.Name] = s
	}

	var include func(name string)
	include = func(name string) {
		if selected[name] {
			return
		}
		selected[name] = true
		for _, req := range byName[name].Requires {
			include(req)
		}
	}

	for _, s := range scenarios {
		if pick(s) {
			include(s.Name)
		}
	}
	return selected
}

// RunPlan runs planned scenarios as subtests of this context, in order. A scenario is skipped
// if it is excluded by the tags or the run filter, or if anything it requires did not pass.
//
// The returned map has the final status of every scenario in the plan.
func (c *Context) RunPlan(plan []Scenario, tags []string) map[string]Status {
	selected := SelectByTags(plan, tags)
	statuses := make(map[string]Status, len(plan))
	for _, s := range plan {
		statuses[s.Name] = NotRun
	}

	for _, s := range plan {
		if !selected[s.Name] {
			statuses[s.Name] = c.SkipSubtest(s.Name, "not tagged "+strings.Join(tags, " or "))
			continue
		}
		if c.env.filter != nil && !c.env.filter(c.id.Plus(s.Name)) {
			statuses[s.Name] = c.SkipSubtest(s.Name, "excluded by filter parameters")
			continue
		}
		if dep := firstNotPassed(s.Requires, statuses); dep != "" {
			statuses[s.Name] = c.SkipSubtest(s.Name,
				fmt.Sprintf("required scenario %q %s", dep, statuses[dep]))
			continue
		}
		statuses[s.Name] = Running
		statuses[s.Name] = c.Run(s.Name, s.Action)
	}
	return statuses
}

func firstNotPassed(names []string, statuses map[string]Status) string {
	for _, name := range names {
		if statuses[name] != Passed {
			return name
		}
	}
	return ""
}
