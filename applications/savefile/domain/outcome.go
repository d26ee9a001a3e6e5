package domain

import "fmt"

type OutcomeKind int

const (
	Success OutcomeKind = iota
	NoFileSubmitted
	NoFilename
	ParseError
	StorageError
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case NoFileSubmitted:
		return "no_file_submitted"
	case NoFilename:
		return "no_filename"
	case ParseError:
		return "parse_error"
	case StorageError:
		return "storage_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the final result of handling one upload.
type Outcome struct {
	Kind OutcomeKind
	// Filename is the name the client declared, set once a file part was found.
	Filename string
	// StoredAs is the sanitized name written to storage.
	StoredAs string
	Size     int64
	Message  string
	Err      error
}

func Succeeded(declared, storedAs string, size int64) Outcome {
	return Outcome{
		Kind:     Success,
		Filename: declared,
		StoredAs: storedAs,
		Size:     size,
		Message:  fmt.Sprintf("File '%s' uploaded successfully.", storedAs),
	}
}

func NoFile() Outcome {
	return Outcome{Kind: NoFileSubmitted, Message: "No file was submitted."}
}

func EmptyFilename() Outcome {
	return Outcome{Kind: NoFilename, Message: "No file was submitted (empty filename)."}
}

func ParseFailed(err error) Outcome {
	return Outcome{
		Kind:    ParseError,
		Message: fmt.Sprintf("Error parsing form data: %v", err),
		Err:     err,
	}
}

func StorageFailed(declared string, err error) Outcome {
	return Outcome{
		Kind:     StorageError,
		Filename: declared,
		Message:  fmt.Sprintf("Error saving file: %v", err),
		Err:      err,
	}
}

// FileReceived reports whether a file part reached the persister.
func (o Outcome) FileReceived() bool {
	switch o.Kind {
	case Success, StorageError, NoFilename:
		return true
	}

	return false
}

// Fragments lists the user facing lines of the outcome in response order.
func (o Outcome) Fragments() []string {
	if !o.FileReceived() {
		return []string{o.Message}
	}

	return []string{
		fmt.Sprintf("Filename received: %s", o.Filename),
		o.Message,
	}
}

// Report collects diagnostics in the order they were produced, then the
// outcome.
type Report struct {
	Diagnostics []string
	Outcome     Outcome
}

func (r *Report) Diagnose(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	r.Diagnostics = append(r.Diagnostics, msg)
	return msg
}
