// Package extract scans legal text for deontic modality cues and produces
// typed statements with provenance. Extraction is pattern-driven with
// confidence scores; it never fails on malformed input.
package extract

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/normlens/normlens/internal/model"
)

// StatementExtractor turns raw legal text into deontic statements using an
// ordered modality rule set. The id counter is owned by the extractor and
// increments monotonically, so ids stay unique across repeated extraction
// calls in the same session.
type StatementExtractor struct {
	rules   []Rule
	counter atomic.Uint64
	now     func() time.Time
}

// NewStatementExtractor creates an extractor with the default rule set
func NewStatementExtractor() *StatementExtractor {
	return &StatementExtractor{
		rules: DefaultRules(),
		now:   time.Now,
	}
}

// ExtractStatements scans text and returns one statement per segment that
// carries a modality cue. Empty or unparsable text yields an empty list.
func (e *StatementExtractor) ExtractStatements(text, documentID string) []model.DeonticStatement {
	segments := splitSegments(text)

	var statements []model.DeonticStatement
	for _, seg := range segments {
		if stmt, ok := e.extractSegment(seg, documentID); ok {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// segment is a sentence-like span with its character offset in the source
type segment struct {
	text     string
	position int
}

func (e *StatementExtractor) extractSegment(seg segment, documentID string) (model.DeonticStatement, bool) {
	// Conditional segments take precedence: "if <antecedent> then <consequent>"
	if m := conditionalPattern.FindStringSubmatch(seg.text); m != nil {
		return e.extractConditional(seg, m[1], m[2], documentID)
	}

	// Trailing exception clause: "<clause> except <class>". An exception
	// segment whose main clause does not parse is skipped outright, so the
	// excepted class never bleeds into a plain-clause action.
	if m := exceptionPattern.FindStringSubmatch(seg.text); m != nil {
		return e.extractException(seg, m[1], m[2], documentID)
	}

	rule, entity, action, ok := e.parseClause(seg.text)
	if !ok {
		return model.DeonticStatement{}, false
	}

	return e.build("stmt", rule.Modality, rule.Confidence, entity, action, seg, documentID, nil, nil), true
}

func (e *StatementExtractor) extractConditional(seg segment, antecedent, consequent, documentID string) (model.DeonticStatement, bool) {
	rule, entity, action, ok := e.parseClause(consequent)
	if !ok {
		return model.DeonticStatement{}, false
	}

	conditions := []string{strings.TrimSpace(antecedent)}
	// Conditionals inherit a slightly reduced confidence from their clause
	confidence := rule.Confidence * 0.9
	stmt := e.build("cond_stmt", model.ModalityConditional, confidence, entity, action, seg, documentID, conditions, nil)
	return stmt, true
}

func (e *StatementExtractor) extractException(seg segment, clause, excepted string, documentID string) (model.DeonticStatement, bool) {
	rule, entity, action, ok := e.parseClause(clause)
	if !ok {
		return model.DeonticStatement{}, false
	}

	exceptions := []string{strings.TrimSpace(trimTerminator(excepted))}
	confidence := rule.Confidence * 0.9
	stmt := e.build("exc_stmt", model.ModalityException, confidence, entity, action, seg, documentID, nil, exceptions)
	return stmt, true
}

// parseClause applies the ordered rules to a clause and splits it into
// subject and action around the first matching cue. It reports false when
// no rule matches, the subject is a generic pronoun, or the action phrase
// has fewer than 2 tokens.
func (e *StatementExtractor) parseClause(clause string) (Rule, string, string, bool) {
	for _, rule := range e.rules {
		loc := rule.Match(clause)
		if loc == nil {
			continue
		}

		entity, ok := subjectOf(clause[:loc[0]])
		if !ok {
			return Rule{}, "", "", false
		}

		action, ok := actionOf(clause[loc[1]:])
		if !ok {
			return Rule{}, "", "", false
		}

		return rule, entity, action, true
	}
	return Rule{}, "", "", false
}

func (e *StatementExtractor) build(prefix string, modality model.Modality, confidence float64, entity, action string, seg segment, documentID string, conditions, exceptions []string) model.DeonticStatement {
	return model.DeonticStatement{
		ID:             fmt.Sprintf("%s_%d", prefix, e.counter.Add(1)),
		Entity:         entity,
		Action:         action,
		Modality:       modality,
		SourceDocument: documentID,
		SourceText:     seg.text,
		Confidence:     confidence,
		Context: model.StatementContext{
			SurroundingText: seg.text,
			Position:        seg.position,
			ExtractedAt:     e.now(),
		},
		Conditions: conditions,
		Exceptions: exceptions,
	}
}

// subjectOf normalizes the text before a modality cue into an entity.
// Returns false for empty subjects and generic pronouns.
func subjectOf(prefix string) (string, bool) {
	words := strings.Fields(strings.ToLower(strings.Trim(prefix, " ,;:")))
	for len(words) > 0 && leadingArticles[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && auxiliaryVerbs[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return "", false
	}
	if len(words) == 1 && genericSubjects[strings.Trim(words[0], ".,;:")] {
		return "", false
	}
	return strings.Join(words, " "), true
}

// actionOf normalizes the text after a modality cue into an action phrase.
// Returns false when fewer than 2 tokens remain.
func actionOf(suffix string) (string, bool) {
	action := trimTerminator(strings.TrimSpace(suffix))
	words := strings.Fields(strings.ToLower(action))
	if len(words) < 2 {
		return "", false
	}
	return strings.Join(words, " "), true
}

func trimTerminator(s string) string {
	return strings.TrimRight(s, ".!?;, ")
}

// splitSegments splits text into sentence-like segments, each tagged with
// its character offset in the source
func splitSegments(text string) []segment {
	var segments []segment
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if len(trimmed) >= 8 && len(trimmed) <= 1000 {
			segments = append(segments, segment{text: trimmed, position: start})
		}
		start = -1
	}

	for i, r := range text {
		switch r {
		case '.', '!', '?', '\n', ';':
			flush(i + 1)
		default:
			if start < 0 && !isSpace(r) {
				start = i
			}
		}
	}
	flush(len(text))

	return segments
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
