package messaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSender implements MessageSender by appending each message as one line
// to the file named by destination.
type FileSender struct {
	mu sync.Mutex
}

func (s *FileSender) SendMessage(ctx context.Context, destination string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}
	f, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	line := make([]byte, 0, len(body)+1)
	line = append(line, body...)
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append journal: %w", err)
	}
	return f.Close()
}
