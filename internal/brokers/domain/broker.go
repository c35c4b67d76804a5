// Package domain holds the broker directory model.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broker is a human agent who receives handed-off leads.
type Broker struct {
	ID              uuid.UUID
	Name            string
	Email           string
	SpecialtyRegion *string
	// IsDefault marks the region-agnostic fallback broker.
	IsDefault bool
	CreatedAt time.Time
}

// Seed is a broker entry from the directory seed file.
type Seed struct {
	Name            string `yaml:"name"`
	Email           string `yaml:"email"`
	SpecialtyRegion string `yaml:"specialty_region"`
	IsDefault       bool   `yaml:"is_default"`
}
