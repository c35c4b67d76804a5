package service

import (
	_ "embed"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"sdr_backend/internal/brokers/domain"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Brokers []domain.Seed `yaml:"brokers"`
}

// LoadSeeds reads the broker seed file at path, or the built-in directory when path is empty.
func LoadSeeds(path string) ([]domain.Seed, error) {
	raw := defaultSeed
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read broker seed: %w", err)
		}
		raw = data
	}
	return ParseSeeds(raw)
}

// ParseSeeds decodes and validates a YAML broker directory.
func ParseSeeds(raw []byte) ([]domain.Seed, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse broker seed: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Brokers))
	defaults := 0
	for i, b := range file.Brokers {
		if strings.TrimSpace(b.Name) == "" {
			return nil, fmt.Errorf("broker seed entry %d: name is required", i)
		}
		addr, err := mail.ParseAddress(b.Email)
		if err != nil || addr.Address != strings.TrimSpace(b.Email) {
			return nil, fmt.Errorf("broker seed entry %d: invalid email %q", i, b.Email)
		}
		key := strings.ToLower(addr.Address)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("broker seed entry %d: duplicate email %q", i, b.Email)
		}
		seen[key] = struct{}{}
		if b.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return nil, fmt.Errorf("broker seed: at most one default broker is allowed")
	}
	return file.Brokers, nil
}
