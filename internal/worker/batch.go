package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// Checker analyzes one batch input: a document path or an http(s) URL
type Checker interface {
	Check(ctx context.Context, input string) (*model.DetectionResult, error)
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context, input string) (*model.DetectionResult, error)

// Check calls f
func (f CheckerFunc) Check(ctx context.Context, input string) (*model.DetectionResult, error) {
	return f(ctx, input)
}

// CheckJob analyzes a single input
type CheckJob struct {
	Input   string
	Checker Checker
}

// Execute runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res, err := j.Checker.Check(ctx, j.Input)
	return &CheckResult{
		Input:    j.Input,
		Result:   res,
		Error:    err,
		Duration: time.Since(start),
	}
}

// CheckResult is the outcome for one input
type CheckResult struct {
	Input    string
	Result   *model.DetectionResult
	Error    error
	Duration time.Duration
}

// Err returns the error from the check
func (r *CheckResult) Err() error {
	return r.Error
}

// BatchProcessor checks many inputs concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessInputs checks inputs concurrently and returns results in input order
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) []*CheckResult {
	if len(inputs) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	for _, in := range inputs {
		pool.Submit(&CheckJob{Input: in, Checker: b.checker})
	}

	raw := pool.Wait()
	results := make([]*CheckResult, len(inputs))
	for i, in := range inputs {
		if i < len(raw) && raw[i] != nil {
			results[i] = raw[i].(*CheckResult)
			continue
		}
		// dropped by cancellation
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		results[i] = &CheckResult{Input: in, Error: err}
	}
	return results
}

// ProcessFile reads inputs from a list file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	inputs, err := ReadInputsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read inputs: %w", err)
	}
	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile reads one input per line, skipping blanks and
// #-comments and dropping duplicates.
func ReadInputsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			inputs = append(inputs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}

// Summarize counts successes and failures in results
func Summarize(results []*CheckResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Error != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}
