package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Input bounds, in characters
const (
	MinTextChars = 100
	MaxTextChars = 500000
)

// Mode selects how thorough a check is
type Mode string

const (
	ModeFast Mode = "fast" // Local signals and known phrases only
	ModeDeep Mode = "deep" // Also asks external capabilities when suspicious
)

// Lang is the declared language of the text
type Lang string

const (
	LangRU Lang = "ru"
	LangEN Lang = "en"
	LangKK Lang = "kk"
)

// Validation errors
var (
	ErrTextTooShort    = errors.New("text too short")
	ErrTextTooLong     = errors.New("text too long")
	ErrUnsupportedMode = errors.New("unsupported mode")
	ErrUnsupportedLang = errors.New("unsupported language")
)

// ValidationError is returned before analysis starts
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AnalyzeOptions controls a single analysis
type AnalyzeOptions struct {
	Mode                Mode `json:"mode"`
	Lang                Lang `json:"lang"`
	ExcludeQuotes       bool `json:"exclude_quotes"`
	ExcludeBibliography bool `json:"exclude_bibliography"`
}

// DefaultAnalyzeOptions mirrors the API defaults
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Mode:                ModeFast,
		Lang:                LangRU,
		ExcludeQuotes:       true,
		ExcludeBibliography: true,
	}
}

// ExternalRequested reports whether external corroboration was asked for
func (o AnalyzeOptions) ExternalRequested() bool {
	return o.Mode == ModeDeep
}

// ParseMode normalizes a mode string; empty means fast
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeFast:
		return ModeFast, nil
	case ModeDeep:
		return ModeDeep, nil
	default:
		return "", &ValidationError{Field: "mode", Err: fmt.Errorf("%w: %q", ErrUnsupportedMode, s)}
	}
}

// ParseLang normalizes a language tag; empty means ru
func ParseLang(s string) (Lang, error) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case "", LangRU:
		return LangRU, nil
	case LangEN:
		return LangEN, nil
	case LangKK:
		return LangKK, nil
	default:
		return "", &ValidationError{Field: "lang", Err: fmt.Errorf("%w: %q", ErrUnsupportedLang, s)}
	}
}

// Validate checks the text and options against the input contract
func Validate(text string, opts AnalyzeOptions) error {
	n := utf8.RuneCountInString(text)
	if n < MinTextChars {
		return &ValidationError{Field: "text", Err: fmt.Errorf("%w: %d < %d characters", ErrTextTooShort, n, MinTextChars)}
	}
	if n > MaxTextChars {
		return &ValidationError{Field: "text", Err: fmt.Errorf("%w: %d > %d characters", ErrTextTooLong, n, MaxTextChars)}
	}
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return err
	}
	if _, err := ParseLang(string(opts.Lang)); err != nil {
		return err
	}
	return nil
}
