package rag

import (
	"fmt"
	"strings"

	"docqa-go/internal/config"
	"docqa-go/internal/model"
)

// Built-in answer templates.
const (
	DefaultGreetingPrefix = "안녕하세요! 업로드된 문서에서 관련 내용을 찾았습니다."
	DefaultQuestionPrefix = "질문에 대한 답변을 찾았습니다:"
	// DefaultFormat takes the original query.
	DefaultFormat = "\"%s\"에 대한 관련 문서를 찾았습니다:"
	// NoRelevantDocumentsAnswer is returned when nothing in the index matches.
	NoRelevantDocumentsAnswer = "관련 문서를 찾을 수 없습니다. 먼저 문서를 업로드해주세요."
)

// Composer turns a query and its ranked sources into answer text. ranked is
// never empty.
type Composer interface {
	Compose(query string, ranked []model.SearchResult) string
}

// Rule is one entry of a RuleComposer. Match receives the lower-cased query,
// Render the original query and the best-ranked result.
type Rule struct {
	Name   string
	Match  func(lowered string) bool
	Render func(query string, top model.SearchResult) string
}

// RuleComposer applies the first matching rule.
type RuleComposer struct {
	Rules []Rule
}

// Compose implements Composer. If no rule matches, the top content is returned as is.
func (c *RuleComposer) Compose(query string, ranked []model.SearchResult) string {
	if len(ranked) == 0 {
		return NoRelevantDocumentsAnswer
	}
	lowered := strings.ToLower(query)
	for _, r := range c.Rules {
		if r.Match(lowered) {
			return r.Render(query, ranked[0])
		}
	}
	return ranked[0].Content
}

// NewRuleComposer builds the greeting, question and default rules. Empty
// fields in cfg keep the built-in templates.
func NewRuleComposer(cfg config.AnswerConfig) *RuleComposer {
	greeting := orDefault(cfg.GreetingPrefix, DefaultGreetingPrefix)
	question := orDefault(cfg.QuestionPrefix, DefaultQuestionPrefix)
	format := orDefault(cfg.DefaultFormat, DefaultFormat)

	return &RuleComposer{Rules: []Rule{
		{
			Name:  "greeting",
			Match: containsAny("안녕", "hello", "hi"),
			Render: func(_ string, top model.SearchResult) string {
				return greeting + "\n\n" + top.Content
			},
		},
		{
			Name:  "question",
			Match: containsAny("?", "？", "무엇", "어떤"),
			Render: func(_ string, top model.SearchResult) string {
				return question + "\n\n" + top.Content
			},
		},
		{
			Name:  "default",
			Match: func(string) bool { return true },
			Render: func(query string, top model.SearchResult) string {
				return fmt.Sprintf(format, query) + "\n\n" + top.Content
			},
		},
	}}
}

// containsAny matches substrings, so "hi" also matches "this".
func containsAny(needles ...string) func(string) bool {
	return func(s string) bool {
		for _, n := range needles {
			if strings.Contains(s, n) {
				return true
			}
		}
		return false
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
