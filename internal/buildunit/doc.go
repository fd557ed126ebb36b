// Package buildunit builds a content-addressed manifest describing one
// compiled forest: its exported prototypes, their mangled linkage names,
// and a deterministic SHA-256 hash over that description. It is the
// direct analogue of the teacher's pkg/derivation fluent
// DerivationBuilder and sorted-key hash, retargeted from a Nix
// derivation's env/outputs/inputDrvs to this language's own notion of
// an externally observable build artifact: the set of names a compiled
// module exposes and how they are mangled.
package buildunit
