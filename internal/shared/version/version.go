// Package version exposes the build version of usetidy.
package version

// Version is overridden at release time via -ldflags.
var Version = "0.4.0-dev"
