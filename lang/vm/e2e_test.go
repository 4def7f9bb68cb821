package vm_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/vm"
	"github.com/stretchr/testify/require"
)

var updateOutputTests = flag.Bool("test.update-output-tests", false, "update the .want golden files")

// TestPrograms runs every .lox fixture in testdata end to end and diffs its
// printed output against the matching .want golden file, grounded on
// internal/filetest's golden-file harness.
func TestPrograms(t *testing.T) {
	fis := filetest.SourceFiles(t, "testdata", ".lox")
	require.NotEmpty(t, fis)

	for _, fi := range fis {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("testdata", fi.Name()))
			require.NoError(t, err)

			var out bytes.Buffer
			m := vm.New(0, 0)
			m.Stdout = &out
			err = m.Interpret(string(src), compiler.Compile)
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, out.String(), "testdata", updateOutputTests)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"self-reference-in-initializer", `{ var a = a; }`},
		{"return-value-in-initializer", `class C { init() { return 1; } }`},
		{"break-outside-loop", `break;`},
		{"continue-outside-loop", `continue;`},
		{"this-outside-class", `print this;`},
		{"super-outside-class", `print super.foo();`},
		{"inherit-from-self", `class C < C {}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := vm.New(0, 0)
			err := m.Interpret(tc.src, compiler.Compile)
			require.Error(t, err)
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"add-number-and-string", `print 1 + "a";`},
		{"negate-string", `print -"a";`},
		{"call-non-function", `var x = 1; x();`},
		{"undefined-global", `print undefined_name;`},
		{"undefined-property", `class C {} var c = C(); print c.missing;`},
		{"stack-overflow", `fun recurse() { return recurse(); } recurse();`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			m := vm.New(0, 0)
			err := m.Interpret(tc.src, compiler.Compile)
			require.Error(t, err)
			var rerr *vm.RuntimeError
			require.ErrorAs(t, err, &rerr)
		})
	}
}
