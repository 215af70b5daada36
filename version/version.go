package version

// build-time variables such as BuildTime, Version, ..
// these variables are set upon build time using Go linker flags (-ldflags)
// -X github.com/metraction/ncconf/version.Version=1.2.3

var (
	BuildTimestamp = "n/a"
	Version        = "0.0.0"
	GoVersion      = "go n/a"
)
