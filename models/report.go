package models

import "time"

// RunReport summarizes one complete run for notifications and logs
type RunReport struct {
	Started      time.Time
	Duration     time.Duration
	Stats        Stats
	LogosWritten int
	LogosFailed  int
	DryRun       bool
}
