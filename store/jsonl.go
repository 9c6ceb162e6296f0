package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/probelab/recallbench/core"
)

// PathFor resolves a collection key to its file path below dir: one JSONL
// file per (category, evidence count, persona). This is the single place the
// on-disk layout is defined.
func PathFor(dir string, key core.CollectionKey) string {
	return filepath.Join(dir,
		fmt.Sprintf("%s_k%d", key.Category, key.EvidenceCount),
		key.PersonaID+".jsonl")
}

// JSONLStore persists evidence items as append-only JSON Lines files, one
// file per collection key. Appends are serialized per store so concurrent
// pipeline workers never interleave partial records, and a re-run appends to
// the existing file instead of replacing it.
type JSONLStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONLStore creates a store rooted at dir, creating it if needed.
func NewJSONLStore(dir string) (*JSONLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &JSONLStore{dir: dir}, nil
}

// Append implements core.ItemStore.
func (s *JSONLStore) Append(ctx context.Context, key core.CollectionKey, item core.EvidenceItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal evidence item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := PathFor(s.dir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append evidence item: %w", err)
	}

	return f.Sync()
}

// Count implements core.ItemStore. A missing file counts as zero.
func (s *JSONLStore) Count(ctx context.Context, key core.CollectionKey) (int, error) {
	items, err := s.Load(ctx, key)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Load implements core.ItemStore, returning items in append order.
func (s *JSONLStore) Load(ctx context.Context, key core.CollectionKey) ([]core.EvidenceItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(PathFor(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	var items []core.EvidenceItem
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item core.EvidenceItem
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("decode evidence item line %d: %w", len(items)+1, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan collection file: %w", err)
	}

	return items, nil
}
