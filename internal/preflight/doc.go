// Package preflight provides readiness checks for the filesystem paths the
// harness depends on.
//
// These checks run in two contexts:
//   - The run orchestrator calls Executable after the build step to confirm
//     the detector binary exists before any case is attempted.
//   - The CLI "tempocheck deps" command uses the Check* functions to display
//     binary and directory health alongside the tool probes.
package preflight
