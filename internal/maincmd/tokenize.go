package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/mainer"
)

// Tokenize scans each file in args and prints every token it produces, one
// per line, in the form "<line>: <kind> '<lexeme>'".
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}

		var sc scanner.Scanner
		sc.Init(string(src))
		for {
			tok := sc.Scan()
			fmt.Fprintf(stdio.Stdout, "%4d: %-16s '%s'\n", tok.Line, tok.Kind, tok.Lexeme)
			if tok.Kind == token.EOF {
				break
			}
			if tok.Kind == token.ILLEGAL {
				err := fmt.Errorf("%s:%d: %s", path, tok.Line, tok.Lexeme)
				fmt.Fprintln(stdio.Stderr, err)
				return err
			}
		}
	}
	return nil
}
