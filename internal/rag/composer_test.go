package rag

import (
	"testing"

	"docqa-go/internal/config"
	"docqa-go/internal/model"
)

func TestRuleComposer(t *testing.T) {
	ranked := []model.SearchResult{{Content: "top chunk"}, {Content: "second chunk"}}
	c := NewRuleComposer(config.AnswerConfig{})

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"english greeting", "Hello there", DefaultGreetingPrefix + "\n\ntop chunk"},
		{"korean greeting", "안녕 문서", DefaultGreetingPrefix + "\n\ntop chunk"},
		{"greeting wins over question", "hi, what now?", DefaultGreetingPrefix + "\n\ntop chunk"},
		{"substring greeting", "this document", DefaultGreetingPrefix + "\n\ntop chunk"},
		{"question mark", "where are we?", DefaultQuestionPrefix + "\n\ntop chunk"},
		{"full-width question mark", "어디？", DefaultQuestionPrefix + "\n\ntop chunk"},
		{"korean question word", "이것은 무엇", DefaultQuestionPrefix + "\n\ntop chunk"},
		{"default", "Paris", "\"Paris\"에 대한 관련 문서를 찾았습니다:\n\ntop chunk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Compose(tc.query, ranked); got != tc.want {
				t.Errorf("Compose(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestRuleComposerConfiguredTemplates(t *testing.T) {
	c := NewRuleComposer(config.AnswerConfig{
		QuestionPrefix: "Answer:",
		DefaultFormat:  "About %q:",
	})
	ranked := []model.SearchResult{{Content: "body"}}
	if got := c.Compose("why?", ranked); got != "Answer:\n\nbody" {
		t.Errorf("question answer = %q", got)
	}
	if got := c.Compose("Rome", ranked); got != "About \"Rome\":\n\nbody" {
		t.Errorf("default answer = %q", got)
	}
	if got := c.Compose("hello", ranked); got != DefaultGreetingPrefix+"\n\nbody" {
		t.Errorf("greeting answer = %q", got)
	}
}

func TestRuleComposerCustomRules(t *testing.T) {
	c := &RuleComposer{Rules: []Rule{{
		Name:   "shout",
		Match:  func(q string) bool { return q == "loud" },
		Render: func(q string, top model.SearchResult) string { return "!" + top.Content },
	}}}
	ranked := []model.SearchResult{{Content: "x"}}
	if got := c.Compose("LOUD", ranked); got != "!x" {
		t.Errorf("matched rule gave %q", got)
	}
	if got := c.Compose("quiet", ranked); got != "x" {
		t.Errorf("unmatched query gave %q", got)
	}
	if got := c.Compose("quiet", nil); got != NoRelevantDocumentsAnswer {
		t.Errorf("empty sources gave %q", got)
	}
}
