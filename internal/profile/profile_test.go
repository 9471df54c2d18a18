package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "user_profile.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, path
}

func TestStore_NewProfile(t *testing.T) {
	s, path := openTestStore(t)
	if s.MonthlyIncome() != 0 || len(s.Files()) != 0 {
		t.Errorf("expected empty profile, got %+v", s.Summary())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("profile should not be written until it changes")
	}
}

func TestStore_Income(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.SetMonthlyIncome(5000); err != nil {
		t.Fatalf("SetMonthlyIncome failed: %v", err)
	}
	if err := s.SetMonthlyIncome(-1); err == nil {
		t.Error("expected error for negative income")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if reopened.MonthlyIncome() != 5000 {
		t.Errorf("income not persisted: got %f", reopened.MonthlyIncome())
	}
}

func TestStore_Files(t *testing.T) {
	s, path := openTestStore(t)

	if _, err := s.AddFile("demo", "sample_transactions.csv", 60); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if _, err := s.AddFile("abcd1234", "November_Statement.pdf", 45); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	// Same id replaces the earlier entry.
	if _, err := s.AddFile("abcd1234", "November_Statement.pdf", 44); err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}

	if got := len(s.Files()); got != 2 {
		t.Fatalf("expected 2 files, got %d", got)
	}
	if got := s.TotalTransactions(); got != 104 {
		t.Errorf("total transactions: got %d, want 104", got)
	}
	f, ok := s.File("abcd1234")
	if !ok || f.TransactionCount != 44 || f.UploadedAt.IsZero() {
		t.Errorf("unexpected file info: %+v (found=%v)", f, ok)
	}

	removed, err := s.RemoveFile("abcd1234")
	if err != nil || !removed {
		t.Fatalf("RemoveFile: removed=%v err=%v", removed, err)
	}
	removed, err = s.RemoveFile("abcd1234")
	if err != nil || removed {
		t.Errorf("second RemoveFile: removed=%v err=%v", removed, err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	sum := reopened.Summary()
	if sum.FileCount != 1 || sum.TotalTransactions != 60 || sum.Files[0].FileID != "demo" {
		t.Errorf("unexpected summary after reopen: %+v", sum)
	}
}

func TestStore_ClearAndReset(t *testing.T) {
	s, _ := openTestStore(t)
	s.SetMonthlyIncome(3000)
	s.AddFile("a", "a.pdf", 3)

	if err := s.ClearFiles(); err != nil {
		t.Fatalf("ClearFiles failed: %v", err)
	}
	if len(s.Files()) != 0 || s.MonthlyIncome() != 3000 {
		t.Errorf("ClearFiles should keep income: %+v", s.Summary())
	}

	s.AddFile("b", "b.pdf", 1)
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if sum := s.Summary(); sum.FileCount != 0 || sum.MonthlyIncome != 0 {
		t.Errorf("expected defaults after Reset, got %+v", sum)
	}
}

func TestOpen_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_profile.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error for malformed profile")
	}
}
