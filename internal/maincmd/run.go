package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// Run compiles and executes a single script file, printing its own PRINT
// output to stdio.Stdout and any compile or runtime error to stdio.Stderr.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		err := fmt.Errorf("run: expected exactly one script path, got %d", len(args))
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	cfg, err := c.loadVMConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	m := vm.NewFromConfig(cfg, stdio.Stderr)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr

	if err := m.Interpret(string(src), compiler.Compile); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
