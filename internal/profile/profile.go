package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileInfo records one uploaded statement.
type FileInfo struct {
	FileID           string    `json:"file_id"`
	Filename         string    `json:"filename"`
	TransactionCount int       `json:"transaction_count"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Profile is the persisted per-user record.
type Profile struct {
	MonthlyIncome float64    `json:"monthly_income"`
	UploadedFiles []FileInfo `json:"uploaded_files"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Summary is a read-only overview of a profile.
type Summary struct {
	MonthlyIncome     float64    `json:"monthly_income"`
	FileCount         int        `json:"file_count"`
	TotalTransactions int        `json:"total_transactions"`
	Files             []FileInfo `json:"files"`
}

// Store keeps a Profile in a JSON file. Every mutation is written through.
type Store struct {
	mu      sync.Mutex
	path    string
	profile Profile
	now     func() time.Time
}

// Open loads the profile at path, creating an empty one if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		now := s.now()
		s.profile = Profile{UploadedFiles: []FileInfo{}, CreatedAt: now, UpdatedAt: now}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.profile); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if s.profile.UploadedFiles == nil {
		s.profile.UploadedFiles = []FileInfo{}
	}
	return s, nil
}

// save writes the profile atomically. Callers hold s.mu.
func (s *Store) save() error {
	s.profile.UpdatedAt = s.now()

	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".profile-*.json")
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close profile: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}
	return nil
}

func (s *Store) MonthlyIncome() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.MonthlyIncome
}

func (s *Store) SetMonthlyIncome(income float64) error {
	if income < 0 {
		return fmt.Errorf("monthly income must not be negative, got %.2f", income)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.MonthlyIncome = income
	return s.save()
}

// AddFile records an upload. An existing entry with the same id is replaced.
func (s *Store) AddFile(fileID, filename string, transactionCount int) (FileInfo, error) {
	info := FileInfo{
		FileID:           fileID,
		Filename:         filename,
		TransactionCount: transactionCount,
		UploadedAt:       s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.UploadedFiles = append(without(s.profile.UploadedFiles, fileID), info)
	return info, s.save()
}

// RemoveFile forgets a file. It reports whether the file was known.
func (s *Store) RemoveFile(fileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.profile.UploadedFiles)
	s.profile.UploadedFiles = without(s.profile.UploadedFiles, fileID)
	if len(s.profile.UploadedFiles) == before {
		return false, nil
	}
	return true, s.save()
}

// Files returns a copy of the uploaded files, oldest first.
func (s *Store) Files() []FileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FileInfo{}, s.profile.UploadedFiles...)
}

// File looks up one uploaded file.
func (s *Store) File(fileID string) (FileInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.profile.UploadedFiles {
		if f.FileID == fileID {
			return f, true
		}
	}
	return FileInfo{}, false
}

// TotalTransactions sums the transaction counts of every file.
func (s *Store) TotalTransactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalTransactions()
}

func (s *Store) totalTransactions() int {
	total := 0
	for _, f := range s.profile.UploadedFiles {
		total += f.TransactionCount
	}
	return total
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summary{
		MonthlyIncome:     s.profile.MonthlyIncome,
		FileCount:         len(s.profile.UploadedFiles),
		TotalTransactions: s.totalTransactions(),
		Files:             append([]FileInfo{}, s.profile.UploadedFiles...),
	}
}

// ClearFiles forgets every uploaded file.
func (s *Store) ClearFiles() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.UploadedFiles = []FileInfo{}
	return s.save()
}

// Reset restores the defaults, keeping only the creation time.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = Profile{UploadedFiles: []FileInfo{}, CreatedAt: s.profile.CreatedAt}
	return s.save()
}

func without(files []FileInfo, fileID string) []FileInfo {
	out := make([]FileInfo, 0, len(files))
	for _, f := range files {
		if f.FileID != fileID {
			out = append(out, f)
		}
	}
	return out
}
