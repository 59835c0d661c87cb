package features

import "fmt"

// ParseError reports a structurally invalid symbolic score or lyric payload
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeError reports an audio payload that could not be decoded to PCM
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ComparisonError reports a scorer invocation that could not produce a
// similarity value, e.g. feature matrices with no frames
type ComparisonError struct {
	Reference string
	Err       error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("compare against %s: %v", e.Reference, e.Err)
}

func (e *ComparisonError) Unwrap() error { return e.Err }

// EmptyCorpusError reports an analysis attempted with no reference items
// sharing the submission's modality
type EmptyCorpusError struct {
	Modality Modality
}

func (e *EmptyCorpusError) Error() string {
	return fmt.Sprintf("reference corpus holds no %s items", e.Modality)
}
