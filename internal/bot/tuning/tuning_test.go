package tuning

import (
	"testing"
	"time"
)

func TestLoad_ConfigFile(t *testing.T) {
	tun, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load tuning.yaml: %v", err)
	}
	if tun.ServerURL == "" || tun.AgentName == "" {
		t.Fatalf("tuning must carry server url and agent name: %+v", tun)
	}
	if tun.PollInterval() != 500*time.Millisecond {
		t.Fatalf("poll interval: got %v want 500ms", tun.PollInterval())
	}
	if tun.BackoffDelay() != 2*time.Second {
		t.Fatalf("backoff delay: got %v want 2s", tun.BackoffDelay())
	}
}

func TestApplyDefaults_ZeroValues(t *testing.T) {
	var tun Tuning
	tun.ApplyDefaults()
	if tun.ServerURL == "" || tun.ConfigDir == "" || tun.JournalDir == "" {
		t.Fatalf("defaults missing: %+v", tun)
	}
	if tun.PollIntervalMs <= 0 || tun.BackoffDelayMs <= 0 || tun.MoveAwayDistance <= 0 {
		t.Fatalf("numeric defaults missing: %+v", tun)
	}
}
