package version

// Version is the CLI version, overridable at build time.
var Version = "0.1.0"
