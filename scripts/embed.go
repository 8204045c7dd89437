// Package scripts holds the Risor scripts compiled into the binary.
package scripts

import "embed"

// FS contains the annotation scripts, rooted so that paths look like
// "annotate/cpp.risor".
//
//go:embed annotate/*.risor
var FS embed.FS
