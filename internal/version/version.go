package version

// Version is the service version reported by the health and root endpoints.
// Overridden at build time with -ldflags.
var Version = "1.0.0"
