package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/loxvm/lang/chunk"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/mainer"
)

// Disassemble compiles each file in args without running it and prints its
// bytecode listing to stdio.Stdout.
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	heap := gc.New(1<<62, gc.DefaultGrowFactor) // never collect mid-listing
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		fn, err := compiler.Compile(heap, string(src))
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		disassembleRecursive(stdio.Stdout, fn, path)
	}
	return nil
}

// disassembleRecursive dumps fn's own chunk, then recurses into every
// nested ObjFunction constant it references, so a single invocation prints
// every function body in the file's lexical nesting order.
func disassembleRecursive(w io.Writer, fn *chunk.ObjFunction, label string) {
	name := label
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	chunk.Disassemble(w, fn.Chunk, name)
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.AsObj().(*chunk.ObjFunction); ok && c.IsObj() {
			disassembleRecursive(w, nested, label)
		}
	}
}
