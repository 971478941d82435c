package config

// Default configuration values. The frequency-table default lives in the
// loader's defaults layer so an explicit zero (disabled) survives.
const (
	DefaultOutput        = "catalog"
	DefaultFreqThreshold = 100
)
