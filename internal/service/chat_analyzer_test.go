package service

import (
	"testing"
	"time"

	"cocreate-match/internal/domain"
)

func buildConversation(n int, gap time.Duration, content string) []domain.Message {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		sender := "u1"
		if i%2 == 1 {
			sender = "u2"
		}
		messages = append(messages, domain.Message{
			ID:        "m",
			MatchID:   "match-1",
			SenderID:  sender,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * gap),
		})
	}
	return messages
}

func TestConversationAnalyzer_TooFewMessages(t *testing.T) {
	analyzer := NewConversationAnalyzer()

	_, ok := analyzer.Analyze(buildConversation(9, time.Minute, "hello"))
	if ok {
		t.Fatalf("expected not ok below 10 messages")
	}
	if _, ok := analyzer.Analyze(buildConversation(10, time.Minute, "hello")); !ok {
		t.Fatalf("expected ok at exactly 10 messages")
	}
}

func TestConversationAnalyzer_PositiveRapidFireChat(t *testing.T) {
	analyzer := NewConversationAnalyzer()

	messages := buildConversation(25, time.Minute, "This is great! I love it")
	analysis, ok := analyzer.Analyze(messages)
	if !ok {
		t.Fatalf("expected analysis for 25 messages")
	}

	if analysis.ResponseTime.Pattern != "rapid-fire" {
		t.Fatalf("expected rapid-fire pattern, got %q", analysis.ResponseTime.Pattern)
	}
	if analysis.EmotionalTone.OverallTone != "positive" {
		t.Fatalf("expected positive tone, got %q", analysis.EmotionalTone.OverallTone)
	}
	if !analysis.Balance.IsBalanced {
		t.Fatalf("expected balanced alternating conversation")
	}
	if analysis.Compatibility <= 60 {
		t.Fatalf("expected compatibility above 60, got %v", analysis.Compatibility)
	}
	if analysis.Compatibility > 100 {
		t.Fatalf("compatibility must be capped at 100, got %v", analysis.Compatibility)
	}
}

func TestConversationAnalyzer_ResponsePatternBuckets(t *testing.T) {
	cases := []struct {
		minutes float64
		want    string
	}{
		{2, "rapid-fire"},
		{15, "engaged"},
		{60, "thoughtful"},
		{300, "sporadic"},
	}
	for _, tc := range cases {
		if got := responsePattern(tc.minutes); got != tc.want {
			t.Fatalf("pattern for %v minutes: expected %q, got %q", tc.minutes, tc.want, got)
		}
	}
}

func TestConversationAnalyzer_SplitBySenderIdentity(t *testing.T) {
	analyzer := NewConversationAnalyzer()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Tres mensajes seguidos del mismo remitente: la particion va por
	// identidad, no por posicion.
	messages := []domain.Message{
		{SenderID: "u1", Content: "aaaaaaaaaa", CreatedAt: base},
		{SenderID: "u1", Content: "aaaaaaaaaa", CreatedAt: base.Add(time.Minute)},
		{SenderID: "u1", Content: "aaaaaaaaaa", CreatedAt: base.Add(2 * time.Minute)},
		{SenderID: "u2", Content: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := 4; i < 12; i++ {
		sender := "u1"
		if i%2 == 0 {
			sender = "u2"
		}
		messages = append(messages, domain.Message{
			SenderID:  sender,
			Content:   "aaaaaaaaaa",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	analysis, ok := analyzer.Analyze(messages)
	if !ok {
		t.Fatalf("expected analysis")
	}
	if analysis.MessageLength.AverageA >= analysis.MessageLength.AverageB {
		t.Fatalf("expected sender B average above A: %v vs %v",
			analysis.MessageLength.AverageA, analysis.MessageLength.AverageB)
	}
}

func TestConversationAnalyzer_EmojiAndCuriosity(t *testing.T) {
	analyzer := NewConversationAnalyzer()

	messages := buildConversation(12, time.Minute, "how about you? \U0001F600")
	analysis, ok := analyzer.Analyze(messages)
	if !ok {
		t.Fatalf("expected analysis")
	}
	if analysis.EmotionalTone.EmojiUsage < 1 {
		t.Fatalf("expected one emoji per message, got %v", analysis.EmotionalTone.EmojiUsage)
	}
	if analysis.EmotionalTone.Curiosity < 1 {
		t.Fatalf("expected one question per message, got %v", analysis.EmotionalTone.Curiosity)
	}
}

func TestConversationAnalyzer_TopicsNormalized(t *testing.T) {
	analyzer := NewConversationAnalyzer()

	messages := buildConversation(10, time.Minute, "my job and career plans for the future")
	analysis, ok := analyzer.Analyze(messages)
	if !ok {
		t.Fatalf("expected analysis")
	}
	if len(analysis.Topics) == 0 {
		t.Fatalf("expected topics")
	}
	total := 0.0
	for _, share := range analysis.Topics {
		total += share
	}
	if !almostEqual(total, 1) {
		t.Fatalf("expected topic shares to sum 1, got %v", total)
	}
}

func TestTopTopicsDeterministicTieBreak(t *testing.T) {
	topics := map[string]float64{"work": 0.4, "future": 0.4, "personal": 0.2}

	got := topTopics(topics, 2)
	if len(got) != 2 || got[0] != "future" || got[1] != "work" {
		t.Fatalf("expected alphabetical tie-break [future work], got %v", got)
	}
}

func TestConversationAnalyzer_InsightsMentionTopTopics(t *testing.T) {
	analyzer := NewConversationAnalyzer()

	messages := buildConversation(14, 10*time.Minute, "I believe my career plan matters")
	analysis, ok := analyzer.Analyze(messages)
	if !ok {
		t.Fatalf("expected analysis")
	}
	insights := analyzer.GenerateInsights(analysis)
	found := false
	for _, insight := range insights {
		if len(insight) > 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one insight, got %v", insights)
	}
}
