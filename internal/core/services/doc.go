// Package services implements the driving port interfaces.
// Services contain the core harvesting logic: credential rotation,
// page sequencing, and the write-flush-checkpoint loop that makes
// extraction restartable.
//
// Services are pure Go with no external I/O of their own; all
// infrastructure access goes through the driven ports.
package services
