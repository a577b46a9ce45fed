package asset

import "fmt"

// FormatError reports malformed or truncated asset bytes. Offset is the byte
// offset of the defect where known, -1 otherwise. File is filled in by the
// loader via Annotate; codecs that only see a byte slice leave it empty.
type FormatError struct {
	File   string
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	switch {
	case e.File != "" && e.Offset >= 0:
		return fmt.Sprintf("%s: offset %d: %s", e.File, e.Offset, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	case e.Offset >= 0:
		return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
	}
	return e.Msg
}

// ReferenceError reports a decoded index that exceeds the bounds of its
// target table. Kind names the table ("tile", "palette", "metatile", "color").
type ReferenceError struct {
	File  string
	Kind  string
	Index int
	Limit int
}

func (e *ReferenceError) Error() string {
	s := fmt.Sprintf("%s index %d out of range (limit %d)", e.Kind, e.Index, e.Limit)
	if e.File != "" {
		return e.File + ": " + s
	}
	return s
}

// NotFoundError reports a layout, tileset or asset file that could not be
// located under the asset root.
type NotFoundError struct {
	Kind string
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %q not found at %s", e.Kind, e.Name, e.Path)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Annotate attaches the source file to a FormatError or ReferenceError that
// does not already carry one. Other errors pass through unchanged.
func Annotate(err error, file string) error {
	switch e := err.(type) {
	case *FormatError:
		if e.File == "" {
			e.File = file
		}
	case *ReferenceError:
		if e.File == "" {
			e.File = file
		}
	}
	return err
}
