// Package preflight provides readiness checks for the external tools,
// directories, and language model that trimscript depends on.
//
// The doctor command runs RunAll and renders every result. Editing commands
// do not run preflight; they surface collaborator failures as they happen.
package preflight
