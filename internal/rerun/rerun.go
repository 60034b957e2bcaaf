// Package rerun turns a selection of test tree nodes into a persisted launch
// configuration that runs just that selection.
package rerun

import (
	"fmt"

	"ctp/internal/domain"
	"ctp/internal/selector"
	"ctp/internal/storage"
)

// TestNameAttribute holds the selector of a launch configuration
const TestNameAttribute = "TEST_NAME"

// NameSuffix is appended to the origin's name for rerun configurations
const NameSuffix = " 🔃"

// Planner creates rerun launch configurations
type Planner struct {
	store storage.LaunchStore
}

// NewPlanner creates a Planner persisting into store
func NewPlanner(store storage.LaunchStore) *Planner {
	return &Planner{store: store}
}

// Plan copies origin, sets its selector to the encoded nodes and saves it.
// An empty selection plans nothing and returns a nil configuration.
func (p *Planner) Plan(origin *domain.LaunchConfiguration, nodes []selector.Node) (*domain.LaunchConfiguration, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if origin == nil {
		return nil, fmt.Errorf("rerun needs an origin launch configuration")
	}

	cfg := origin.Copy(origin.Name + NameSuffix)
	cfg.SetAttribute(TestNameAttribute, selector.Build(nodes))

	if err := p.store.Save(cfg); err != nil {
		return nil, fmt.Errorf("persist rerun configuration: %w", err)
	}
	return cfg, nil
}

// Filters returns the libtest filters a configuration runs; none means everything
func Filters(cfg *domain.LaunchConfiguration) []string {
	return selector.Split(cfg.Attribute(TestNameAttribute, selector.Everything))
}
