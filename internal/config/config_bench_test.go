package config

import (
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkLoadConfig(b *testing.B) {
	configPath := filepath.Join(b.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(validConfigJSON), 0600); err != nil {
		b.Fatalf("Failed to write config file: %v", err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			b.Fatal(err)
		}
		if cfg == nil {
			b.Fatal("config is nil")
		}
	}
}

func BenchmarkConfigParams(b *testing.B) {
	cfg, err := LoadConfig("")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := cfg.Params(); err != nil {
			b.Fatal(err)
		}
	}
}
