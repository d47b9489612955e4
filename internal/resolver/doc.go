// Package resolver turns studio mappings into concrete filesystem paths
// and back.
//
// Forward resolution picks the mapping slot for an (entity type, data
// type) pair and formats its inheritance-expanded template with the
// caller's variable bindings. Backward analysis compiles each populated
// slot into an anchored regular expression and probes them in a fixed
// order, so a path that matches several conventions always identifies the
// same slot. Conversion chains the two to move a path between studios.
package resolver
