package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// mockChecker implements Checker
type mockChecker struct {
	failOn string
}

func (m *mockChecker) Check(ctx context.Context, input string) (*model.DetectionResult, error) {
	time.Sleep(5 * time.Millisecond)
	if m.failOn != "" && strings.Contains(input, m.failOn) {
		return nil, errors.New("check error")
	}
	return &model.DetectionResult{Originality: 87.5, TotalChars: len(input)}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessInputs(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{failOn: "bad"}, 2)

	inputs := []string{"essay.txt", "https://example.com/bad", "thesis.pdf"}
	results := processor.ProcessInputs(context.Background(), inputs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Input != inputs[i] {
			t.Errorf("expected result %d for %s, got %s", i, inputs[i], res.Input)
		}
	}
	if results[0].Err() != nil || results[0].Result == nil {
		t.Errorf("expected success for %s", inputs[0])
	}
	if results[1].Err() == nil || results[1].Result != nil {
		t.Errorf("expected failure for %s", inputs[1])
	}

	ok, failed := Summarize(results)
	if ok != 2 || failed != 1 {
		t.Errorf("expected 2 ok / 1 failed, got %d / %d", ok, failed)
	}
}

func TestBatchProcessor_ProcessInputs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, 2)
	if results := processor.ProcessInputs(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_CheckerFunc(t *testing.T) {
	calls := 0
	checker := CheckerFunc(func(ctx context.Context, input string) (*model.DetectionResult, error) {
		calls++
		return &model.DetectionResult{}, nil
	})

	results := NewBatchProcessor(checker, 1).ProcessInputs(context.Background(), []string{"a"})
	if calls != 1 || results[0].Err() != nil {
		t.Errorf("expected a single successful call, got calls=%d err=%v", calls, results[0].Err())
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchProcessor(&mockChecker{}, 1).ProcessInputs(ctx, []string{"a", "b"})
	if len(results) != 2 {
		t.Fatalf("expected a result per input, got %d", len(results))
	}
	for _, r := range results {
		if r.Err() == nil {
			t.Errorf("expected %s to report cancellation", r.Input)
		}
	}
}

func TestReadInputsFromFile(t *testing.T) {
	path := writeList(t, "essay.txt\n# comment\nhttps://example.com/article\n   \n  thesis.pdf   \nessay.txt\n")

	inputs, err := ReadInputsFromFile(path)
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}

	expected := []string{"essay.txt", "https://example.com/article", "thesis.pdf"}
	if len(inputs) != len(expected) {
		t.Fatalf("expected %d inputs, got %d: %v", len(expected), len(inputs), inputs)
	}
	for i, in := range inputs {
		if in != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, in)
		}
	}
}

func TestReadInputsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadInputsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeList(t, "a.txt\nb.txt\n# comment\n\nc.txt\n")

	results, err := NewBatchProcessor(&mockChecker{}, 2).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	results, err := NewBatchProcessor(&mockChecker{}, 2).ProcessFile(context.Background(), writeList(t, ""))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}
