package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ServerURL string `yaml:"server_url"`
	AgentName string `yaml:"agent_name"`
	ConfigDir string `yaml:"config_dir"`

	PollIntervalMs   int `yaml:"poll_interval_ms"`
	BackoffDelayMs   int `yaml:"backoff_delay_ms"`
	MoveAwayDistance int `yaml:"move_away_distance"`

	JournalDir string `yaml:"journal_dir"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

func (t *Tuning) ApplyDefaults() {
	if t.ServerURL == "" {
		t.ServerURL = "ws://localhost:8080/v1/ws"
	}
	if t.AgentName == "" {
		t.AgentName = "forgebot"
	}
	if t.ConfigDir == "" {
		t.ConfigDir = "configs"
	}
	if t.PollIntervalMs <= 0 {
		t.PollIntervalMs = 500
	}
	if t.BackoffDelayMs <= 0 {
		t.BackoffDelayMs = 2000
	}
	if t.MoveAwayDistance <= 0 {
		t.MoveAwayDistance = 24
	}
	if t.JournalDir == "" {
		t.JournalDir = "data/journal"
	}
}

func (t Tuning) PollInterval() time.Duration { return time.Duration(t.PollIntervalMs) * time.Millisecond }
func (t Tuning) BackoffDelay() time.Duration { return time.Duration(t.BackoffDelayMs) * time.Millisecond }
