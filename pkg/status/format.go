package status

import (
	"fmt"
)

// FileFormatter defines how file outcomes and progress should be formatted
type FileFormatter interface {
	// FormatFileOperation formats a per-file outcome message
	FormatFileOperation(path string, status FileStatus, replacements int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string

	// FormatSummary formats the end-of-run summary line
	FormatSummary(rewritten, unchanged, skipped, replacements int) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a per-file outcome message with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path string, status FileStatus, replacements int) string {
	switch status {
	case StatusRewritten:
		return fmt.Sprintf("📝 Rewrote %s (%d replacements)", path, replacements)
	case StatusUnchanged:
		return fmt.Sprintf("👍 Unchanged %s", path)
	case StatusSkipped:
		return fmt.Sprintf("⏭️  Skipped %s", path)
	case StatusError:
		return fmt.Sprintf("❌ Failed %s", path)
	default:
		return fmt.Sprintf("❓ Unknown %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatSummary formats the end-of-run summary line
func (f *DefaultFileFormatter) FormatSummary(rewritten, unchanged, skipped, replacements int) string {
	return fmt.Sprintf("✅ Done: %d rewritten, %d unchanged, %d skipped (%d replacements)",
		rewritten, unchanged, skipped, replacements)
}
