// Package preflight provides readiness checks for the filesystem paths,
// media tools, and Google APIs that dubsync depends on.
//
// The CLI "dubsync check" command calls RunAll and prints each Result. A
// run does not call these checks itself; failures there surface as
// per-stage errors in the pipeline state instead.
package preflight
