package rerun

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
	"ctp/internal/selector"
	"ctp/internal/testtree"
)

type memoryStore struct {
	saved []*domain.LaunchConfiguration
	err   error
}

func (m *memoryStore) Save(cfg *domain.LaunchConfiguration) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, cfg)
	return nil
}

func (m *memoryStore) Get(id string) (*domain.LaunchConfiguration, error) { return nil, nil }
func (m *memoryStore) Latest() (*domain.LaunchConfiguration, error)        { return nil, nil }
func (m *memoryStore) List() ([]*domain.LaunchConfiguration, error)        { return m.saved, nil }

func tree() *testtree.Tree {
	return testtree.Build([]domain.CaseResult{
		{Package: "mycrate", Binary: "unittests src/lib.rs", Name: "parser::tests::rejects", Status: domain.CaseFailed},
		{Package: "mycrate", Binary: "tests/api.rs", Name: "delete_user", Status: domain.CaseFailed},
	})
}

func TestPlanner_Plan(t *testing.T) {
	store := &memoryStore{}
	planner := NewPlanner(store)
	origin := domain.NewLaunchConfiguration("cargo test", []string{"mycrate"})

	var nodes []selector.Node
	for _, r := range tree().FailedCases() {
		nodes = append(nodes, r)
	}

	cfg, err := planner.Plan(origin, nodes)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "cargo test 🔃", cfg.Name)
	assert.Equal(t, origin.ID, cfg.Origin)
	assert.NotEqual(t, origin.ID, cfg.ID)
	assert.Equal(t, "parser::tests::rejects delete_user", cfg.Attribute(TestNameAttribute, ""))
	assert.Equal(t, []string{"parser::tests::rejects", "delete_user"}, Filters(cfg))
	require.Len(t, store.saved, 1)

	// the origin is left untouched
	_, ok := origin.Attributes[TestNameAttribute]
	assert.False(t, ok)
}

func TestPlanner_Plan_Everything(t *testing.T) {
	store := &memoryStore{}
	pkg := tree().Find("mycrate")

	cfg, err := NewPlanner(store).Plan(domain.NewLaunchConfiguration("cargo test", nil), []selector.Node{pkg[0]})
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Attribute(TestNameAttribute, "unset"))
	assert.Empty(t, Filters(cfg))
}

func TestPlanner_Plan_EmptySelection(t *testing.T) {
	store := &memoryStore{}
	cfg, err := NewPlanner(store).Plan(domain.NewLaunchConfiguration("cargo test", nil), nil)
	assert.NoError(t, err)
	assert.Nil(t, cfg)
	assert.Empty(t, store.saved)
}

func TestPlanner_Plan_StoreFailure(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	nodes := []selector.Node{tree().FailedCases()[0]}
	cfg, err := NewPlanner(store).Plan(domain.NewLaunchConfiguration("cargo test", nil), nodes)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "disk full")
}

func TestPlanner_Plan_NoOrigin(t *testing.T) {
	nodes := []selector.Node{tree().FailedCases()[0]}
	_, err := NewPlanner(&memoryStore{}).Plan(nil, nodes)
	assert.Error(t, err)
}
