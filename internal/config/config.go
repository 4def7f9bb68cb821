// Package config loads the virtual machine's tunable limits and debug
// switches from the environment, using the same caarlos0/env library the
// wider dependency set already carries, rather than hand-rolling
// os.Getenv/strconv plumbing.
package config

import "github.com/caarlos0/env/v6"

// VM holds every environment-tunable knob the interpreter exposes. All of
// them mirror constants that clox fixes at compile time (STACK_MAX,
// FRAMES_MAX, GC_HEAP_GROW_FACTOR, DEBUG_STRESS_GC, DEBUG_LOG_GC); here they
// are runtime-configurable instead, since a long-lived Go process has no
// equivalent of recompiling the interpreter for a debug build.
type VM struct {
	StackMax           int   `env:"LOXVM_STACK_MAX" envDefault:"65536"`
	FramesMax          int   `env:"LOXVM_FRAMES_MAX" envDefault:"256"`
	GCInitialThreshold int64 `env:"LOXVM_GC_INITIAL_THRESHOLD_BYTES" envDefault:"1048576"`
	GCGrowFactor       int64 `env:"LOXVM_GC_GROW_FACTOR" envDefault:"2"`
	GCStress           bool  `env:"LOXVM_GC_STRESS" envDefault:"false"`
	GCLog              bool  `env:"LOXVM_GC_LOG" envDefault:"false"`
	TraceExecution     bool  `env:"LOXVM_TRACE" envDefault:"false"`
}

// Load reads VM from the process environment, applying the defaults above
// for anything unset.
func Load() (VM, error) {
	var cfg VM
	if err := env.Parse(&cfg); err != nil {
		return VM{}, err
	}
	return cfg, nil
}
