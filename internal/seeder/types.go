package seeder

import "time"

type SeedConfig struct {
	Count   int      // rows to attempt per table
	Ignore  []string // tables left out of cleanup and generation
	Verbose bool     // timestamped progress narration
	NoClean bool     // keep existing rows instead of deleting them first
}

// TableSummary counts the rows attempted for one table and how many of them
// were dropped because they collided with a unique constraint.
type TableSummary struct {
	Table     string `yaml:"table"`
	Attempted int    `yaml:"attempted"`
	Skipped   int    `yaml:"skipped"`
}

func (t TableSummary) Inserted() int {
	return t.Attempted - t.Skipped
}

type Summary struct {
	RunID      string         `yaml:"run_id"`
	Provider   string         `yaml:"provider"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at"`
	Order      []string       `yaml:"order"`
	Cycles     []string       `yaml:"cycles,omitempty"`
	Tables     []TableSummary `yaml:"tables"`
}
