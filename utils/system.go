package utils

import (
	"log"
	"strconv"

	"github.com/shirou/gopsutil/v3/cpu"
)

const (
	maxWorkers      = 16
	fallbackWorkers = 2
)

// GetOptimalWorkerCount determines how many goroutines analyze product cards.
// A positive number in configValue wins; "auto" or an empty value sizes the
// pool from the CPU.
func GetOptimalWorkerCount(configValue string) int {
	switch n, err := strconv.Atoi(configValue); {
	case err == nil && n > 0:
		log.Printf("Using manually configured number of workers: %d", n)
		return n
	case configValue != "auto" && configValue != "":
		log.Printf("WARN: Invalid workers value '%s'. Defaulting to 'auto' mode.", configValue)
	}
	return autoWorkers()
}

// autoWorkers gives one worker per logical core up to maxWorkers. Workers
// only walk an already parsed document and never hold a browser tab, so
// unlike tab-bound scraping there is no reason to leave cores idle.
func autoWorkers() int {
	cores, err := cpu.Counts(true)
	if err != nil || cores < 1 {
		log.Printf("WARN: Could not detect CPU cores. Falling back to default: %d workers.", fallbackWorkers)
		return fallbackWorkers
	}
	n := min(cores, maxWorkers)
	log.Printf("System has %d logical cores. Automatically setting number of workers to: %d", cores, n)
	return n
}
