package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store provides thread-safe, chronological storage for activity Records.
type Store struct {
	mu   sync.RWMutex
	logs map[string][]Record // Partitioned by SourceID (scrape target / epic)
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		logs: make(map[string][]Record),
	}
}

// Append adds new records to the log for a given source, ensuring chronological
// order and deduplication.
func (s *Store) Append(sourceID string, records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logData := s.logs[sourceID]

	// 1. Create a map of existing record identities for deduplication.
	// Identity = IssueKey + Timestamp + Field + To
	existing := make(map[string]bool)
	for _, r := range logData {
		existing[r.identity()] = true
	}

	// 2. Filter new records
	newCount := 0
	for _, r := range records {
		if !existing[r.identity()] {
			logData = append(logData, r)
			newCount++
		}
	}

	if newCount == 0 {
		return
	}

	// 3. Sort by Timestamp and then Field for deterministic ordering
	sort.Slice(logData, func(i, j int) bool {
		if logData[i].Timestamp != logData[j].Timestamp {
			return logData[i].Timestamp < logData[j].Timestamp
		}
		return logData[i].Field < logData[j].Field
	})

	s.logs[sourceID] = logData
}

// Load reads records from a JSONL file for the given source. Malformed lines
// and malformed records are skipped with a warning; a missing file is not an
// error.
func (s *Store) Load(dataDir string, sourceID string) error {
	path := filepath.Join(dataDir, fmt.Sprintf("%s.jsonl", sourceID))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("Skipping invalid JSON line in activity log")
			continue
		}
		records = append(records, r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading activity log: %w", err)
	}

	records = SanitizeAll(records)
	log.Info().Str("source", sourceID).Int("count", len(records)).Msg("Loaded activity records")
	s.Append(sourceID, records)
	return nil
}

// Save persists records for the given source to a JSONL file.
func (s *Store) Save(dataDir string, sourceID string) error {
	s.mu.RLock()
	logData, ok := s.logs[sourceID]
	s.mu.RUnlock()

	if !ok || len(logData) == 0 {
		return nil
	}

	path := filepath.Join(dataDir, fmt.Sprintf("%s.jsonl", sourceID))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp activity file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, r := range logData {
		if err := encoder.Encode(r); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename activity file: %w", err)
	}

	log.Info().Str("source", sourceID).Int("count", len(logData)).Msg("Activity records saved")
	return nil
}

// All returns a copy of the full record log for a source.
func (s *Store) All(sourceID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData, ok := s.logs[sourceID]
	if !ok {
		return nil
	}
	out := make([]Record, len(logData))
	copy(out, logData)
	return out
}

// ForIssue returns the full change history for a single issue.
func (s *Store) ForIssue(sourceID string, issueKey string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Record
	for _, r := range s.logs[sourceID] {
		if r.IssueKey == issueKey {
			result = append(result, r)
		}
	}
	return result
}

// Count returns the number of records in the store for a source.
func (s *Store) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[sourceID])
}

// LatestTimestamp returns the time of the most recent record for a source.
func (s *Store) LatestTimestamp(sourceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData, ok := s.logs[sourceID]
	if !ok || len(logData) == 0 {
		return time.Time{}
	}

	// Records are sorted, so the last one is the latest
	return time.UnixMicro(logData[len(logData)-1].Timestamp)
}

// identity computes a unique string identifier for a record to aid deduplication.
func (r Record) identity() string {
	return fmt.Sprintf("%s|%d|%s|%s",
		r.IssueKey,
		r.Timestamp,
		r.Field,
		r.To,
	)
}
