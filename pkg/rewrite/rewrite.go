package rewrite

import (
	"context"
	"io"

	"gitlab.com/tozd/go/errors"
)

// Result contains the outcome of rewriting one file's content
type Result struct {
	// WasModified indicates if any rule changed the content
	WasModified bool

	// ReplacementCount is the number of call sites and import lines rewritten
	ReplacementCount int

	// OriginalContent is the content before rewriting
	OriginalContent []byte

	// ModifiedContent is the content after rewriting
	ModifiedContent []byte
}

// Rewriter defines the interface for text rewriting operations
type Rewriter interface {
	// Rewrite applies the rules in order over the full content
	Rewrite(ctx context.Context, content io.Reader, rules []Rule) (*Result, error)

	// ValidateRules checks that all rules are usable
	ValidateRules(rules []Rule) error
}

// RegexRewriter implements Rewriter using sequential whole-text substitution
type RegexRewriter struct{}

// NewRegexRewriter creates a new RegexRewriter
func NewRegexRewriter() *RegexRewriter {
	return &RegexRewriter{}
}

// Rewrite implements Rewriter.Rewrite. Rules are applied independently and
// sequentially over the whole text, never scoped to regions matched by
// earlier rules.
func (r *RegexRewriter) Rewrite(ctx context.Context, content io.Reader, rules []Rule) (*Result, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &Result{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)
	for _, rule := range rules {
		if rule.Pattern == nil {
			continue
		}

		matches := len(rule.Pattern.FindAllStringIndex(currentContent, -1))
		if matches == 0 {
			continue
		}

		newContent := rule.Pattern.ReplaceAllString(currentContent, rule.Template)
		if newContent != currentContent {
			result.WasModified = true
			result.ReplacementCount += matches
		}

		currentContent = newContent
	}

	result.ModifiedContent = []byte(currentContent)
	return result, nil
}

// ValidateRules implements Rewriter.ValidateRules
func (r *RegexRewriter) ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.Pattern == nil {
			return errors.Errorf("rule %d: pattern is required", i)
		}
		if rule.Name == "" {
			return errors.Errorf("rule %d: name is required", i)
		}
	}
	return nil
}
