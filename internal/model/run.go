package model

import "time"

// Run is the record of one completed filter run.
type Run struct {
	StartedAt  time.Time
	Snapshot   Snapshot
	OutputDir  string
	Prefix     string
	Inputs     []string
	ID         int64
	Duration   time.Duration
	Classified int
	Failed     int
	Append     bool
	Full       bool
}
