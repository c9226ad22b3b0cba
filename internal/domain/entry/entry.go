// Package entry defines the journal entry model and its validation rules.
package entry

import (
	"fmt"
	"time"
)

// TitleMaxLen is the maximum number of characters allowed in an entry title.
// It mirrors the varchar(127) bound of the entries table.
const TitleMaxLen = 127

// Entry is a single journal post.
type Entry struct {
	ID      int       `json:"id"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// ValidationError reports an input that violates the entry constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the create/edit input constraints. Create and edit share
// the same contract: title required and bounded, text required.
func Validate(title, text string) error {
	if title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if len([]rune(title)) > TitleMaxLen {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("longer than %d characters", TitleMaxLen)}
	}
	if text == "" {
		return &ValidationError{Field: "text", Reason: "required"}
	}
	return nil
}
