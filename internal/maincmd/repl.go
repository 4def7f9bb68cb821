package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

// Repl reads one line at a time from stdio.Stdin, compiling and running
// each as its own program against a VM whose globals persist across lines,
// until EOF or ctx is canceled.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := c.loadVMConfig()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	m := vm.NewFromConfig(cfg, stdio.Stderr)
	m.Stdout = stdio.Stdout
	m.Stderr = stdio.Stderr

	scan := bufio.NewScanner(stdio.Stdin)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		if !scan.Scan() {
			if err := scan.Err(); err != nil && err != io.EOF {
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
			return nil
		}

		line := scan.Text()
		if line == "" {
			continue
		}
		if err := m.Interpret(line, compiler.Compile); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}
}
