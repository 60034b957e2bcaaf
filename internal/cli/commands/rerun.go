package commands

import (
	"errors"
	"fmt"
	"io/fs"

	"ctp/internal/config"
	"ctp/internal/rerun"
	"ctp/internal/selector"
	"ctp/internal/testtree"
	"ctp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const rerunAttribute = rerun.TestNameAttribute

// RerunCommand handles the rerun command
type RerunCommand struct {
	config    *config.Config
	launcher  *launcher
	formatter *ui.Formatter
}

// NewRerunCommand creates a new RerunCommand
func NewRerunCommand(cfg *config.Config, l *launcher, formatter *ui.Formatter) *RerunCommand {
	return &RerunCommand{
		config:    cfg,
		launcher:  l,
		formatter: formatter,
	}
}

// Execute resolves the named nodes against the last run and reruns them
func (rc *RerunCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := rc.launcher.storage.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no previous run found, use `ctp run` first")
	}
	if err != nil {
		return err
	}

	tree := testtree.Build(results.Cases)
	nodes, err := resolveNodes(tree, args)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		color.Yellow("Nothing selected, nothing to rerun")
		return nil
	}

	if rc.config.Flags.DryRun {
		origin, err := rc.launcher.origin(tree.Packages())
		if err != nil {
			return err
		}
		sel := selector.Build(nodes)
		fmt.Printf("origin:   %s (%s)\n", origin.Name, origin.ID)
		fmt.Printf("name:     %s\n", origin.Name+rerun.NameSuffix)
		fmt.Printf("selector: %q\n", sel)
		fmt.Printf("filters:  %q\n", selector.Split(sel))
		return nil
	}

	results, err = rc.launcher.rerunNodes(results, nodes, nil)
	if err != nil {
		return err
	}

	rc.formatter.PrintMetaStats(results)
	return nil
}

// resolveNodes finds every node named by args. A name matching several nodes
// (the same test in two packages) selects all of them.
func resolveNodes(tree *testtree.Tree, args []string) ([]selector.Node, error) {
	var nodes []selector.Node
	for _, name := range args {
		found := tree.Find(name)
		if len(found) == 0 {
			return nil, fmt.Errorf("no test or suite named %q in the last run", name)
		}
		for _, r := range found {
			nodes = append(nodes, r)
		}
	}
	return nodes, nil
}
