package config

// Color constants for logging
const (
	ColorGreen  = "\033[32m"
	ColorCyan   = "\033[36m"
	ColorPurple = "\033[95m"
)
