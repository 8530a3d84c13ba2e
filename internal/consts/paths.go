package consts

import (
	"os"
	"path/filepath"
)

const (
	ChronoDirName  = ".chrono"
	ConfigFileName = "config.yaml"
	StoreFileName  = "jobs.json"
	OutboxFileName = "outbox.jsonl"
)

func ChronoHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ChronoDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(ChronoHomeDir(), ConfigFileName)
}

func DefaultStorePath() string {
	return filepath.Join(ChronoHomeDir(), StoreFileName)
}

func DefaultOutboxPath() string {
	return filepath.Join(ChronoHomeDir(), OutboxFileName)
}

func DefaultWorkspaceDir() string {
	return filepath.Join(ChronoHomeDir(), "workspace")
}
