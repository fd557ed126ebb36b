package buildunit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ksc-lang/ksc/internal/ast"
)

// ExportedSymbol describes one name a compiled forest makes available
// to a linker or a future caching layer: its prototype name (already
// the mangled form for an operator), its mangled linkage name (identical
// to Name for a plain function and for an operator alike), arity, and operator priority (0 for non-operators). Loc is
// populated only when the builder was asked to include debug info
// (internal/envconfig's EmitDebugMetadata); otherwise it is left zero so
// two otherwise-identical manifests hash the same regardless of where
// their source happened to live on disk.
type ExportedSymbol struct {
	Name     string
	Mangled  string
	Arity    int
	Priority int
	Loc      string
}

// Manifest is the finished, hashed description of one compiled forest.
type Manifest struct {
	ModuleName string
	Symbols    []ExportedSymbol
	Hash       string
}

// ManifestBuilder accumulates exported symbols with a fluent API, the
// same builder shape the teacher's DerivationBuilder uses for env/output
// accumulation before a terminal Build call.
type ManifestBuilder struct {
	moduleName string
	symbols    []ExportedSymbol
	debugInfo  bool
}

// NewManifest returns a builder for a module named name.
func NewManifest(name string) *ManifestBuilder {
	return &ManifestBuilder{moduleName: name}
}

// WithDebugInfo requests that each exported symbol's source location be
// recorded and folded into the content hash, mirroring
// internal/envconfig's EmitDebugMetadata toggle.
func (b *ManifestBuilder) WithDebugInfo(enabled bool) *ManifestBuilder {
	b.debugInfo = enabled
	return b
}

// AddFromForest scans forest for every *ast.Prototype and
// *ast.Function.Proto and adds each as an exported symbol. Bare
// top-level expression nodes carry no prototype at all and are
// skipped: they have no externally callable linkage name.
func (b *ManifestBuilder) AddFromForest(forest []ast.Node) *ManifestBuilder {
	for _, n := range forest {
		var proto *ast.Prototype
		switch v := n.(type) {
		case *ast.Prototype:
			proto = v
		case *ast.Function:
			proto = v.Proto
		}
		if proto == nil {
			continue
		}
		b.AddSymbol(proto)
	}
	return b
}

// AddSymbol adds a single prototype's exported symbol.
func (b *ManifestBuilder) AddSymbol(proto *ast.Prototype) *ManifestBuilder {
	mangled := proto.Name
	if proto.IsOperator {
		mangled = ast.Mangle(proto.OperatorArity, symbolFromMangledParams(proto), proto.Priority)
	}
	sym := ExportedSymbol{
		Name:     proto.Name,
		Mangled:  mangled,
		Arity:    len(proto.Params),
		Priority: proto.Priority,
	}
	if b.debugInfo {
		sym.Loc = proto.Loc().String()
	}
	b.symbols = append(b.symbols, sym)
	return b
}

// symbolFromMangledParams recovers the bare operator symbol from a
// prototype whose Name field pkg/parser already set to its mangled
// form: Mangle is not idempotent, and re-mangling the already
// mangled name would double-encode it, so this extracts the symbol
// pkg/parser embedded between the fixed "_binary_"/"_unary_" prefix and
// "_with_prio_" suffix instead of re-deriving it from scratch.
func symbolFromMangledParams(proto *ast.Prototype) string {
	name := proto.Name
	prefix := "_binary_"
	if proto.OperatorArity == 1 {
		prefix = "_unary_"
	}
	name = strings.TrimPrefix(name, prefix)
	if idx := strings.Index(name, "_with_prio_"); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// Build finalizes the manifest: sorts symbols by name for a
// deterministic order and computes the content hash over that order.
func (b *ManifestBuilder) Build() *Manifest {
	symbols := append([]ExportedSymbol(nil), b.symbols...)
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Name < symbols[j].Name })

	m := &Manifest{ModuleName: b.moduleName, Symbols: symbols}
	m.Hash = computeHash(m)
	return m
}

// computeHash builds a deterministic string representation of m (module
// name, then each symbol in its already-sorted order) and hashes it with
// SHA-256, mirroring the teacher's computeHash: sorted keys, a
// newline-joined content string, hex-encoded digest.
func computeHash(m *Manifest) string {
	parts := []string{"module=" + m.ModuleName}
	for _, s := range m.Symbols {
		line := fmt.Sprintf("symbol=%s mangled=%s arity=%d priority=%d",
			s.Name, s.Mangled, s.Arity, s.Priority)
		if s.Loc != "" {
			line += " loc=" + s.Loc
		}
		parts = append(parts, line)
	}
	content := strings.Join(parts, "\n")
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
