package services

import (
	"context"
	"fmt"
	"sync"
)

// MockReceiptArchive is an in-memory ReceiptArchive for testing
type MockReceiptArchive struct {
	receipts map[string]string // object key to receipt text
	err      error
	mu       sync.RWMutex
}

// NewMockReceiptArchive creates a new mock receipt archive
func NewMockReceiptArchive() *MockReceiptArchive {
	return &MockReceiptArchive{
		receipts: make(map[string]string),
	}
}

// FailWith makes every subsequent Store return err
func (m *MockReceiptArchive) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Store simulates uploading a receipt
func (m *MockReceiptArchive) Store(ctx context.Context, key, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.receipts[key] = text
	return nil
}

// PresignedURL simulates generating a presigned URL
func (m *MockReceiptArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.receipts[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("receipt not found in mock archive: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Receipts returns a copy of all stored receipts
func (m *MockReceiptArchive) Receipts() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.receipts))
	for k, v := range m.receipts {
		out[k] = v
	}
	return out
}

// Get returns the stored text for key
func (m *MockReceiptArchive) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.receipts[key]
	return text, ok
}
