package models

import (
	"context"
	"sync"
	"time"
)

// MediaURLGenerator interface for generating signed media URLs
type MediaURLGenerator interface {
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	urlGenerator MediaURLGenerator
	registryMu   sync.RWMutex
)

// RegisterMediaURLGenerator sets the URL generator used for content media
func RegisterMediaURLGenerator(generator MediaURLGenerator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	urlGenerator = generator
}

// GetMediaURLGenerator returns the registered generator, or nil
func GetMediaURLGenerator() MediaURLGenerator {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return urlGenerator
}
