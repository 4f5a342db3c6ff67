package extract

import (
	"regexp"

	"github.com/normlens/normlens/internal/model"
)

// Rule is one modality pattern: a matcher, the modality it assigns, and the
// confidence of the assignment. Rules are evaluated in priority order and
// the first match wins, which keeps precedence explicit and testable per
// rule (prohibition cues are checked before obligation cues because
// "must not" contains "must").
type Rule struct {
	Cue        string
	Pattern    *regexp.Regexp
	Modality   model.Modality
	Confidence float64
}

// Match returns the cue location in the segment, or nil
func (r Rule) Match(segment string) []int {
	return r.Pattern.FindStringIndex(segment)
}

func newRule(cue string, modality model.Modality, confidence float64) Rule {
	return Rule{
		Cue:        cue,
		Pattern:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(cue) + `\b`),
		Modality:   modality,
		Confidence: confidence,
	}
}

// DefaultRules returns the ordered modality rule set. Prohibition rules come
// first, then obligation ("must"/"shall" carry confidence >= 0.7), then
// permission.
func DefaultRules() []Rule {
	return []Rule{
		newRule("must not", model.ModalityProhibition, 0.9),
		newRule("shall not", model.ModalityProhibition, 0.9),
		newRule("cannot", model.ModalityProhibition, 0.85),
		newRule("forbidden to", model.ModalityProhibition, 0.85),
		newRule("must", model.ModalityObligation, 0.85),
		newRule("shall", model.ModalityObligation, 0.85),
		newRule("required to", model.ModalityObligation, 0.75),
		newRule("may", model.ModalityPermission, 0.7),
		newRule("can", model.ModalityPermission, 0.6),
	}
}

var (
	// conditionalPattern captures "if <antecedent> then <consequent>"
	conditionalPattern = regexp.MustCompile(`(?i)^\s*if\s+(.+?)\s*,?\s*then\s+(.+)$`)

	// exceptionPattern captures a trailing "except <class>" clause
	exceptionPattern = regexp.MustCompile(`(?i)^(.+?)\s*,?\s+except\s+(.+)$`)
)

// genericSubjects are pronouns that carry no extractable entity; segments
// whose subject resolves to one of these are skipped
var genericSubjects = map[string]bool{
	"it": true, "this": true, "that": true, "these": true, "those": true,
	"there": true, "they": true, "he": true, "she": true, "one": true,
	"we": true, "you": true, "i": true,
}

// leadingArticles are stripped from the front of a subject phrase
var leadingArticles = map[string]bool{
	"the": true, "a": true, "an": true, "all": true, "every": true,
	"each": true, "any": true,
}

// auxiliaryVerbs are stripped from the tail of a subject phrase, so
// "visitors are required to" yields the entity "visitors"
var auxiliaryVerbs = map[string]bool{
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
}

