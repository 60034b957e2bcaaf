package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"ctp/internal/config"
	"ctp/internal/discovery"
	"ctp/internal/domain"
	"ctp/internal/execution"
	"ctp/internal/parser"
	"ctp/internal/rerun"
	"ctp/internal/selector"
	"ctp/internal/storage"
	"ctp/internal/testtree"
	"ctp/internal/ui"
)

// launcher runs launch configurations and turns their output into stored results.
// It is shared by run, rerun and the failure viewer.
type launcher struct {
	config   *config.Config
	scanner  *discovery.Scanner
	filter   *discovery.Filter
	executor execution.Executor
	parser   parser.Parser
	storage  storage.Storage
	launches storage.LaunchStore
	planner  *rerun.Planner
}

// outcome is what one execution of a launch configuration produced
type outcome struct {
	results  []domain.TestResult
	cases    []domain.CaseResult
	failures []domain.TestFailure
	duration time.Duration
}

// discover scans the workspace and applies the name filter
func (l *launcher) discover() ([]domain.Test, error) {
	tests, err := l.scanner.Scan(l.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	return l.filter.FilterByName(tests, l.config.Flags.NameFilter), nil
}

// origin returns the most recent launch configuration that is not itself a
// rerun, creating and saving one over packages when none exists yet.
func (l *launcher) origin(packages []string) (*domain.LaunchConfiguration, error) {
	cfg, err := l.launches.Latest()
	if errors.Is(err, storage.ErrLaunchNotFound) {
		return l.newOrigin(packages)
	}
	if err != nil {
		return nil, err
	}
	for cfg.Origin != "" {
		parent, err := l.launches.Get(cfg.Origin)
		if errors.Is(err, storage.ErrLaunchNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		cfg = parent
	}
	return cfg, nil
}

func (l *launcher) newOrigin(packages []string) (*domain.LaunchConfiguration, error) {
	name := l.config.Flags.LaunchName
	if name == "" {
		name = config.DefaultLaunchName
	}
	cfg := domain.NewLaunchConfiguration(name, packages)
	cfg.SetAttribute(rerun.TestNameAttribute, selector.Everything)
	if err := l.launches.Save(cfg); err != nil {
		return nil, fmt.Errorf("save launch configuration: %w", err)
	}
	return cfg, nil
}

// execute runs the packages of tests with the configuration's filters
func (l *launcher) execute(cfg *domain.LaunchConfiguration, tests []domain.Test, failFast bool) (*outcome, error) {
	filters := rerun.Filters(cfg)

	progressBar := ui.NewProgressBar(len(tests))
	l.executor.SetProgress(progressBar)

	results, duration, err := l.executor.ExecuteWithOptions(tests, filters, failFast)
	if err != nil {
		return nil, err
	}

	out := &outcome{results: results, duration: duration}
	for _, result := range results {
		out.cases = append(out.cases, l.parser.ParseCases(result)...)
		if !result.Success {
			out.failures = append(out.failures, l.parser.ParseFailure(result)...)
		}
	}
	return out, nil
}

// save stores an outcome as a new run of cfg
func (l *launcher) save(cfg *domain.LaunchConfiguration, out *outcome) (*domain.TestResultsOutput, error) {
	run := storage.Run{
		ID:       uuid.New().String(),
		LaunchID: cfg.ID,
		Results:  out.results,
		Cases:    out.cases,
		Failures: out.failures,
		Duration: out.duration,
		Workers:  l.config.Processors,
	}
	if err := l.storage.Save(run); err != nil {
		return nil, fmt.Errorf("failed to save test results: %w", err)
	}
	return l.storage.Load()
}

// nodesForFailures maps failures onto nodes of tree. Failures without a case
// node (build failures) select their whole package.
func nodesForFailures(tree *testtree.Tree, failures []domain.TestFailure) []selector.Node {
	var nodes []selector.Node
	seen := make(map[int]bool)
	add := func(r testtree.Ref) {
		if !seen[r.ID()] {
			seen[r.ID()] = true
			nodes = append(nodes, r)
		}
	}

	var unmatched []domain.TestFailure
	for _, failure := range failures {
		if r, ok := tree.FindCase(failure.Package, failure.Binary, failure.TestName); ok {
			add(r)
			continue
		}
		unmatched = append(unmatched, failure)
	}
	return append(nodes, packageNodes(unmatched)...)
}

// packagesOf returns the set of packages the nodes belong to
func packagesOf(nodes []selector.Node) map[string]struct{} {
	packages := make(map[string]struct{})
	for _, n := range nodes {
		if r, ok := n.(testtree.Ref); ok {
			packages[r.Package()] = struct{}{}
		}
	}
	return packages
}

// rerunNodes plans a rerun of nodes, executes it and merges the outcome into results.
// replaced are the failures the rerun supersedes.
func (l *launcher) rerunNodes(results *domain.TestResultsOutput, nodes []selector.Node, replaced []domain.TestFailure) (*domain.TestResultsOutput, error) {
	tests, err := l.scanner.Scan(l.config.GetTestPath())
	if err != nil {
		return nil, err
	}
	tests = l.filter.FilterByPackages(tests, packagesOf(nodes))
	if len(tests) == 0 {
		return nil, fmt.Errorf("none of the selected packages is part of the workspace")
	}

	origin, err := l.origin(packageNames(tests))
	if err != nil {
		return nil, err
	}
	cfg, err := l.planner.Plan(origin, nodes)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return results, nil
	}

	out, err := l.execute(cfg, tests, false)
	if err != nil {
		return nil, err
	}

	results.Merge(replaced, out.cases, out.failures)
	results.Meta.LaunchID = cfg.ID
	if err := l.storage.SaveOutput(results); err != nil {
		return nil, fmt.Errorf("failed to save test results: %w", err)
	}
	return results, nil
}

// RerunFailures reruns the given failures of the last run, for the failure viewer
func (l *launcher) RerunFailures(failures []domain.TestFailure) (*domain.TestResultsOutput, error) {
	results, err := l.storage.Load()
	if err != nil {
		return nil, err
	}
	nodes := nodesForFailures(testtree.Build(results.Cases), failures)
	return l.rerunNodes(results, nodes, failures)
}

func packageNames(tests []domain.Test) []string {
	names := make([]string, 0, len(tests))
	for _, t := range tests {
		names = append(names, t.Package)
	}
	return names
}

// packageNodes selects the whole package of each failure. Build failures
// have no case in the run's tree, so a tree of their own is built.
func packageNodes(failures []domain.TestFailure) []selector.Node {
	if len(failures) == 0 {
		return nil
	}
	var cases []domain.CaseResult
	for _, f := range failures {
		cases = append(cases, domain.CaseResult{Package: f.Package, Binary: f.Binary, Name: f.TestName})
	}
	tree := testtree.Build(cases)
	var nodes []selector.Node
	for _, name := range tree.Packages() {
		for _, r := range tree.Find(name) {
			if r.Type() == testtree.NodeTypePackage {
				nodes = append(nodes, r)
			}
		}
	}
	return nodes
}
