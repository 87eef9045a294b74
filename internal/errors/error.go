package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryResource Category = "resource"
	CategoryRender   Category = "render"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// Location is a position inside a file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line[:column].
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ResourceRef names a declared resource.
type ResourceRef struct {
	ID   string `json:"id"`
	File string `json:"file,omitempty"`
}

func (r ResourceRef) String() string {
	if r.File == "" {
		return r.ID
	}
	return r.ID + " (" + r.File + ")"
}

// ToolboxError is a structured error with a code, an optional file location,
// the resources involved and a hint on how to fix it.
type ToolboxError struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Location   *Location
	Context    []string
	Resources  []ResourceRef
	Chain      []string
	Suggestion string
	DocURL     string
	Wrapped    error

	// contextStart is the line number of Context[0].
	contextStart int
}

func (e *ToolboxError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *ToolboxError) Unwrap() error {
	return e.Wrapped
}

// WithLocation attaches a file position and reads the surrounding lines.
func (e *ToolboxError) WithLocation(file string, line, column int) *ToolboxError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.contextStart, e.Context = readContextLines(file, line, 5)
	return e
}

// WithOffset attaches the position of a byte offset inside data, as reported
// by encoding/json syntax errors.
func (e *ToolboxError) WithOffset(file string, data []byte, offset int64) *ToolboxError {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return e.WithLocation(file, line, col)
}

// WithResource adds a resource the error is about.
func (e *ToolboxError) WithResource(id, file string) *ToolboxError {
	e.Resources = append(e.Resources, ResourceRef{ID: id, File: file})
	return e
}

// WithChain records a dependency path, outermost resource first.
func (e *ToolboxError) WithChain(ids ...string) *ToolboxError {
	e.Chain = append([]string(nil), ids...)
	return e
}

func (e *ToolboxError) WithSuggestion(s string) *ToolboxError {
	e.Suggestion = s
	return e
}

func (e *ToolboxError) WithDetail(d string) *ToolboxError {
	e.Detail = d
	return e
}

func (e *ToolboxError) Wrap(err error) *ToolboxError {
	e.Wrapped = err
	return e
}

// readContextLines reads up to contextSize lines centred on targetLine and
// returns the number of the first one.
func readContextLines(filename string, targetLine, contextSize int) (int, []string) {
	if targetLine < 1 {
		return 0, nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return 0, nil
	}
	defer file.Close()

	first := max(1, targetLine-contextSize/2)
	last := targetLine + contextSize/2

	var lines []string
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan() && n <= last; n++ {
		if n >= first {
			lines = append(lines, scanner.Text())
		}
	}
	return first, lines
}

// New creates an error from a registered code.
func New(code string) *ToolboxError {
	template, ok := registry[code]
	if !ok {
		return &ToolboxError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &ToolboxError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded error with a formatted message.
func Newf(category Category, format string, args ...any) *ToolboxError {
	return &ToolboxError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err under code unless it already is a *ToolboxError.
func FromError(err error, code string) *ToolboxError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*ToolboxError); ok {
		return te
	}
	return New(code).Wrap(err)
}
