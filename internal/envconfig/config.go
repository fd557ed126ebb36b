// Package envconfig loads compiler behavior toggles from environment
// variables, the same "simple knobs read once at startup" approach the
// original compiler's flags.h/flags.def macro table used (each flag a
// name, a default, and the environment variable that overrides it). Go
// has no equivalent of the C preprocessor macro table, so each flag is
// declared as an ordinary struct field populated by Load.
package envconfig

import (
	"os"
	"strconv"
)

// Config holds every environment-tunable compiler behavior. Values are
// read once, at Load time; nothing here is re-read mid-compilation.
type Config struct {
	// OptimizeIR requests that the reference interpreter/back end apply
	// its (currently trivial) constant-folding pass before evaluating.
	OptimizeIR bool

	// KeepIntermediate retains any intermediate artifact main.go writes
	// alongside the compiled output instead of deleting it on success.
	KeepIntermediate bool

	// EmitDebugMetadata attaches SourceLoc-derived debug info to
	// buildunit's manifest. astcodec's encoded forest carries source
	// locations whether or not it is set.
	EmitDebugMetadata bool
}

const (
	envOptimizeIR        = "KSC_OPTIMIZE"
	envKeepIntermediate  = "KSC_KEEP_INTERMEDIATE"
	envEmitDebugMetadata = "KSC_DEBUG_INFO"
)

// Load reads the three named environment variables, defaulting every
// flag to false when its variable is unset or does not parse as a bool.
func Load() Config {
	return Config{
		OptimizeIR:        boolEnv(envOptimizeIR),
		KeepIntermediate:  boolEnv(envKeepIntermediate),
		EmitDebugMetadata: boolEnv(envEmitDebugMetadata),
	}
}

func boolEnv(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
