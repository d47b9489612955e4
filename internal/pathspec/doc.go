// Package pathspec models studio path conventions: typed template
// variables, tokenized folder templates, template groups, and per-studio
// slot mappings.
//
// A Template owns a raw string such as
// "/projects/{PROJECT}/assets/{ASSET_NAME}/work", its parsed token
// sequence, and a declaration for every variable the tokens reference.
// Groups collect related templates and enforce name uniqueness, safe
// deletion, and acyclic inheritance. Mappings bind one template to each
// (entity type, data type) slot a studio defines and are the unit of
// cross-studio path translation.
//
// Everything in this package is pure, in-memory computation; persistence
// lives in internal/store and orchestration in internal/resolver.
package pathspec
