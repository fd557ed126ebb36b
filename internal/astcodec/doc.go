// Package astcodec serializes a parsed forest to a compact binary wire
// format and back, the same role the teacher's internal/driver disk
// cache gives msgpack-encoded module payloads: a stable, versioned
// on-disk representation independent of the in-memory ast.Node/ast.Expr
// interface types.
//
// internal/ast's Node/Expr types are interfaces with unexported base
// fields, so they cannot be encoded directly; every node is first
// flattened into one of this package's unexported DTOs via a discriminant
// Tag, then restored by switching on that Tag.
package astcodec
