package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MediaStorage interface for content media operations
type MediaStorage interface {
	UploadMedia(ctx context.Context, data []byte, filename string, acl types.ObjectCannedACL, contentType string) (string, error)
	GetSignedURL(ctx context.Context, path string, duration time.Duration) (string, error)
}

var (
	mediaStorage MediaStorage
	handlerMu    sync.RWMutex
)

// RegisterMediaStorage sets the media storage backend
func RegisterMediaStorage(s MediaStorage) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	mediaStorage = s
}

// GetMediaStorage returns the registered media storage backend
func GetMediaStorage() MediaStorage {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return mediaStorage
}
