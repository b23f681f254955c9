package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/pipeline"
	"github.com/ppiankov/antiplagiat/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchMode    string
	batchLang    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check many files or URLs listed in a file",
	Long: `Batch checks every input listed in a file (one path or URL per line,
blank lines and #-comments skipped) with a pool of workers, and writes
one JSON result per input to the output directory.

Example:
  antiplagiat batch inputs.txt
  antiplagiat batch inputs.txt --concurrency 8 --output-dir ./results --mode deep`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory for results (default: output.dir)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchMode, "mode", string(model.ModeFast), "check mode (fast, deep)")
	batchCmd.Flags().StringVar(&batchLang, "lang", string(model.LangRU), "text language (ru, en, kk)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	opts, err := analyzeOptions(batchMode, batchLang)
	if err != nil {
		return err
	}

	inputs, err := worker.ReadInputsFromFile(file)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d inputs)\n", file, len(inputs))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", opts.Mode)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	p := newPipeline(cfg, opts)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results := processor.ProcessInputs(ctx, inputs)

	used := make(map[string]int)
	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Input, r.Error)
			continue
		}

		name := uniqueName(sanitizeFilename(r.Input), used)
		path := filepath.Join(cfg.Output.Dir, name+".json")
		if err := writeJSONFile(path, r.Result); err != nil {
			r.Error = err
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Input, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (originality: %.2f%%, %d matches, %s)\n",
			r.Input, r.Result.Originality, len(r.Result.Matches), r.Duration.Round(time.Millisecond))
	}

	succeeded, failed := worker.Summarize(results)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "\n")

	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d inputs failed", failed)
	}
	return nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename turns a path or URL into a safe file name stem
func sanitizeFilename(s string) string {
	if pipeline.IsURL(s) {
		s = s[strings.Index(s, "://")+3:]
	} else {
		s = strings.TrimSuffix(s, filepath.Ext(s))
	}
	s = strings.Trim(filenameReplacer.Replace(s), "._-")
	if s == "" {
		s = "result"
	}
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}
