package entry

import (
	"fmt"
)

// Field names as they appear in stored documents.
const (
	FieldContent = "content"
	FieldStatus  = "status"
	FieldDate    = "date"
)

// Patch is a merge update: only non-nil fields are written, everything else
// on the stored entry is left untouched.
type Patch struct {
	Content *string
	Status  *Status
	Date    *Day
}

func SetContent(content string) Patch {
	return Patch{Content: &content}
}

func SetStatus(status Status) Patch {
	return Patch{Status: &status}
}

func SetDate(day Day) Patch {
	return Patch{Date: &day}
}

func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Status == nil && p.Date == nil
}

// Fields lists the document fields the patch touches, in a stable order.
func (p Patch) Fields() []string {
	fields := make([]string, 0, 3)
	if p.Content != nil {
		fields = append(fields, FieldContent)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.Date != nil {
		fields = append(fields, FieldDate)
	}
	return fields
}

// Map renders the patch as a field to value mapping.
func (p Patch) Map() map[string]string {
	out := make(map[string]string, 3)
	if p.Content != nil {
		out[FieldContent] = *p.Content
	}
	if p.Status != nil {
		out[FieldStatus] = string(*p.Status)
	}
	if p.Date != nil {
		out[FieldDate] = string(*p.Date)
	}
	return out
}

// Validate rejects empty patches and values that could never be stored.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: empty patch", ErrInvalidEntry)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEntry, *p.Status)
	}
	if p.Date != nil && !p.Date.Valid() {
		return fmt.Errorf("%w: date %q", ErrInvalidEntry, *p.Date)
	}
	return nil
}

// Apply merges the patch into e and reports whether anything changed.
func (p Patch) Apply(e *Entry) bool {
	if e == nil {
		return false
	}
	changed := false
	if p.Content != nil && e.Content != *p.Content {
		e.Content = *p.Content
		changed = true
	}
	if p.Status != nil && e.Status != *p.Status {
		e.Status = *p.Status
		changed = true
	}
	if p.Date != nil && e.Date != *p.Date {
		e.Date = *p.Date
		changed = true
	}
	return changed
}
