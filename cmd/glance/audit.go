package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/goliatone/go-users/pkg/types"
)

// auditSink appends go-users activity records to a JSON lines file.
type auditSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func openAuditSink(path string) (*auditSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return &auditSink{file: file, enc: json.NewEncoder(file)}, nil
}

// Log implements usersink.Sink.
func (s *auditSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("audit: write: %w", err)
	}
	return nil
}

func (s *auditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
