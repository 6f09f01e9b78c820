// Package preflight provides readiness checks for the services, devices and
// paths eduvid depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll before opening a live session and logs every
//     failure with a hint, so a missing classifier is reported up front
//     instead of as a stream of per-frame errors.
//   - The CLI "eduvid status" command renders the same results as a table.
//
// Each check is gated by its config toggle; disabled features report as
// passed with a "disabled" detail.
package preflight
