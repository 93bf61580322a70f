package rewrite

import (
	"fmt"
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// Migration describes a logging-facility rename: call sites of the form
// FromFacility.<level>(TAG, "message") are renamed to ToFacility.<level>(...),
// and the facility's import statement is swapped for the target's.
type Migration struct {
	// FromFacility is the identifier whose call sites are rewritten (e.g. "Log")
	FromFacility string `json:"from_facility" yaml:"from_facility"`

	// ToFacility is the replacement identifier (e.g. "Logger")
	ToFacility string `json:"to_facility" yaml:"to_facility"`

	// Levels are the severity methods rewritten in their two-argument
	// (tag + quoted message) form
	Levels []string `json:"levels" yaml:"levels"`

	// WrappedLevels are the severity methods additionally rewritten in their
	// three-argument (tag + quoted message + trailing expression) form
	WrappedLevels []string `json:"wrapped_levels" yaml:"wrapped_levels"`

	// FromImport is the fully qualified name imported for the source facility
	FromImport string `json:"from_import" yaml:"from_import"`

	// ToImport is the fully qualified name imported for the target facility
	ToImport string `json:"to_import" yaml:"to_import"`
}

// DefaultMigration returns the android.util.Log to app Logger migration.
func DefaultMigration() Migration {
	return Migration{
		FromFacility:  "Log",
		ToFacility:    "Logger",
		Levels:        []string{"d", "e", "w", "i", "v"},
		WrappedLevels: []string{"e", "w"},
		FromImport:    "android.util.Log",
		ToImport:      "com.quick.browser.util.Logger",
	}
}

// Rule is a single compiled substitution applied across a file's full text.
type Rule struct {
	// Name is a short description used for logging
	Name string

	// Pattern is the compiled search expression
	Pattern *regexp.Regexp

	// Template is the replacement text, with ${n} capture references
	Template string
}

// identRe matches a plain identifier, the only shape allowed for facility
// names and severity levels
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that the migration is well formed.
func (m Migration) Validate() error {
	if m.FromFacility == "" {
		return errors.Errorf("from_facility is required")
	}
	if m.ToFacility == "" {
		return errors.Errorf("to_facility is required")
	}
	if m.FromFacility == m.ToFacility {
		return errors.Errorf("from_facility and to_facility are identical: %s", m.FromFacility)
	}
	if !identRe.MatchString(m.FromFacility) {
		return errors.Errorf("from_facility is not an identifier: %q", m.FromFacility)
	}
	if !identRe.MatchString(m.ToFacility) {
		return errors.Errorf("to_facility is not an identifier: %q", m.ToFacility)
	}
	if len(m.Levels) == 0 {
		return errors.Errorf("at least one severity level is required")
	}
	for _, level := range m.Levels {
		if !identRe.MatchString(level) {
			return errors.Errorf("level is not an identifier: %q", level)
		}
	}
	for _, level := range m.WrappedLevels {
		if !identRe.MatchString(level) {
			return errors.Errorf("wrapped level is not an identifier: %q", level)
		}
	}
	if m.FromImport != "" && m.ToImport == "" {
		return errors.Errorf("to_import is required when from_import is set")
	}
	return nil
}

// Argument sub-patterns. The tag argument is anything up to the first comma,
// the message is a double-quoted run of non-quote characters (escaped quotes
// make the match fail, leaving the call site unconverted), and the trailing
// expression stops at the first closing parenthesis.
const (
	tagArg      = `([^,]+)`
	messageArg  = `("[^"]*")`
	trailingArg = `([^)]+)`
)

// Compile builds the ordered rule list for the migration: one two-argument
// rule per level, then one three-argument rule per wrapped level, then the
// import swap. The two-argument patterns require the message to be followed
// directly by a closing parenthesis, so they never match three-argument call
// sites and rule order between the two groups is immaterial.
func (m Migration) Compile() ([]Rule, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Errorf("validating migration: %w", err)
	}

	rules := make([]Rule, 0, len(m.Levels)+len(m.WrappedLevels)+1)

	for _, level := range m.Levels {
		pattern, err := regexp.Compile(fmt.Sprintf(`%s\.%s\(%s,\s*%s\)`,
			regexp.QuoteMeta(m.FromFacility), regexp.QuoteMeta(level), tagArg, messageArg))
		if err != nil {
			return nil, errors.Errorf("compiling %s.%s message rule: %w", m.FromFacility, level, err)
		}
		rules = append(rules, Rule{
			Name:     fmt.Sprintf("%s.%s message", m.FromFacility, level),
			Pattern:  pattern,
			Template: fmt.Sprintf("%s.%s(${1}, ${2})", m.ToFacility, level),
		})
	}

	for _, level := range m.WrappedLevels {
		pattern, err := regexp.Compile(fmt.Sprintf(`%s\.%s\(%s,\s*%s,\s*%s\)`,
			regexp.QuoteMeta(m.FromFacility), regexp.QuoteMeta(level), tagArg, messageArg, trailingArg))
		if err != nil {
			return nil, errors.Errorf("compiling %s.%s throwable rule: %w", m.FromFacility, level, err)
		}
		rules = append(rules, Rule{
			Name:     fmt.Sprintf("%s.%s throwable", m.FromFacility, level),
			Pattern:  pattern,
			Template: fmt.Sprintf("%s.%s(${1}, ${2}, ${3})", m.ToFacility, level),
		})
	}

	if m.FromImport != "" {
		pattern, err := regexp.Compile(`import ` + regexp.QuoteMeta(m.FromImport))
		if err != nil {
			return nil, errors.Errorf("compiling import rule: %w", err)
		}
		rules = append(rules, Rule{
			Name:     "import",
			Pattern:  pattern,
			Template: "import " + m.ToImport,
		})
	}

	return rules, nil
}
