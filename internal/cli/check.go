package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/pipeline"
)

var (
	checkURL         string
	checkText        string
	checkMode        string
	checkLang        string
	checkJSON        string
	checkTimeout     time.Duration
	keepQuotes       bool
	keepBibliography bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check the originality of a file, URL or inline text",
	Long: `Check analyzes one document and prints its originality summary.

The input is a file (txt, html, pdf, docx), a URL fetched over HTTP,
inline text, or "-" for stdin. Deep mode consults the configured search
and LLM capabilities when the local score looks suspicious.

Example:
  antiplagiat check essay.docx
  antiplagiat check --url https://example.com/article --mode deep
  antiplagiat check --text "..." --lang en --json result.json
  cat essay.txt | antiplagiat check - --json -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkURL, "url", "", "fetch and check a URL")
	checkCmd.Flags().StringVar(&checkText, "text", "", "check inline text")
	checkCmd.Flags().StringVar(&checkMode, "mode", string(model.ModeFast), "check mode (fast, deep)")
	checkCmd.Flags().StringVar(&checkLang, "lang", string(model.LangRU), "text language (ru, en, kk)")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", `write the JSON result to a path ("-" for stdout)`)
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&keepQuotes, "keep-quotes", false, "count quoted passages as matchable text")
	checkCmd.Flags().BoolVar(&keepBibliography, "keep-bibliography", false, "count the bibliography section as matchable text")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := analyzeOptions(checkMode, checkLang)
	if err != nil {
		return err
	}
	opts.ExcludeQuotes = !keepQuotes
	opts.ExcludeBibliography = !keepBibliography

	sources := 0
	for _, set := range []bool{len(args) == 1, checkURL != "", checkText != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return errors.New("exactly one input is required: a file argument, --url or --text")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	p := newPipeline(cfg, opts)
	if opts.Mode == model.ModeDeep && !p.ExternalEnabled() {
		fmt.Fprintln(os.Stderr, "Warning: deep mode requested but no search or LLM capability is configured")
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Mode: %s, language: %s\n", opts.Mode, opts.Lang)
	}

	doc, err := checkInput(ctx, p, args, opts)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if checkJSON == "-" {
		return writeJSON(os.Stdout, doc.Result)
	}
	printSummary(os.Stdout, doc)
	if checkJSON != "" {
		if err := writeJSONFile(checkJSON, doc.Result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ JSON written to %s\n", checkJSON)
	}
	return nil
}

func checkInput(ctx context.Context, p *pipeline.Pipeline, args []string, opts model.AnalyzeOptions) (*pipeline.Document, error) {
	switch {
	case checkURL != "":
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Fetching %s...\n", checkURL)
		}
		return p.AnalyzeURL(ctx, checkURL, opts)
	case checkText != "":
		return analyzeText(ctx, p, "text", checkText, opts)
	case args[0] == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return analyzeText(ctx, p, "stdin", string(data), opts)
	default:
		if verbose {
			fmt.Fprintf(os.Stderr, "⚙️  Extracting %s...\n", args[0])
		}
		return p.AnalyzeFile(ctx, args[0], opts)
	}
}

func analyzeText(ctx context.Context, p *pipeline.Pipeline, name, text string, opts model.AnalyzeOptions) (*pipeline.Document, error) {
	res, err := p.Analyze(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	return &pipeline.Document{Source: name, Result: res}, nil
}

// analyzeOptions parses user-facing mode and language names
func analyzeOptions(mode, lang string) (model.AnalyzeOptions, error) {
	opts := model.DefaultAnalyzeOptions()
	m, err := model.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	l, err := model.ParseLang(lang)
	if err != nil {
		return opts, err
	}
	opts.Mode = m
	opts.Lang = l
	return opts, nil
}

// newPipeline wires the configured capabilities into a pipeline
func newPipeline(cfg *model.Config, opts model.AnalyzeOptions, extra ...pipeline.Option) *pipeline.Pipeline {
	popts := pipeline.CapabilityOptions(cfg)
	popts = append(popts, pipeline.WithDefaultOptions(opts))
	popts = append(popts, extra...)
	return pipeline.NewPipeline(cfg, popts...)
}

func printSummary(w io.Writer, doc *pipeline.Document) {
	res := doc.Result
	name := doc.Source
	if doc.Title != "" {
		name = fmt.Sprintf("%s (%s)", doc.Title, doc.Source)
	}

	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  Originality:      %.2f%%\n", res.Originality)
	fmt.Fprintf(w, "  Local suspicion:  %.2f\n", res.LocalSuspicion)
	fmt.Fprintf(w, "  Size:             %d words, %d chars\n", res.TotalWords, res.TotalChars)
	fmt.Fprintf(w, "  External checks:  %v\n", res.ExternalUsed)

	if len(res.Matches) > 0 {
		fmt.Fprintf(w, "\n  Matches (%d):\n", len(res.Matches))
		for _, m := range res.Matches {
			fmt.Fprintf(w, "    [%d:%d] %-12s %.2f  %s  %q\n", m.Start, m.End, m.Kind, m.Similarity, m.SourceID, preview(m.Text, 60))
		}
	}
	if len(res.Sources) > 0 {
		fmt.Fprintf(w, "\n  Sources (%d):\n", len(res.Sources))
		for _, s := range res.Sources {
			fmt.Fprintf(w, "    %-28s %d match(es), avg %.2f  %s\n", s.Title, s.MatchCount, s.AvgSimilarity, s.URL)
		}
	}
	fmt.Fprintln(w)
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v interface{}) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return writeJSON(f, v)
}
