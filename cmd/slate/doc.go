// Command slate manages folder templates, studio mappings, and path
// resolution for production pipelines.
//
// Run "slate --help" for the full command tree. Template groups and
// studio mappings are persisted through the configured store backend;
// path commands resolve, analyze, and convert concrete filesystem paths
// against them.
package main
