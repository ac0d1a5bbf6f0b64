package shared

// Process exit codes returned by the CLI.
const (
	ExitOK             = 0
	ExitConfigError    = 2
	ExitBuildFailed    = 3
	ExitChecksumFailed = 4
)
