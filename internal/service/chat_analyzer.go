package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cocreate-match/internal/domain"
)

// Minimo de mensajes para que el analisis tenga sentido; por debajo se
// devuelve "sin datos suficientes", que es un estado definido, no un error.
const minMessagesForAnalysis = 10

// Minimo de mensajes para que el agregado de chat sea elegible para cache.
// El trigger lo aplica quien encola, y el job lo reverifica.
const minMessagesForChatCache = 20

var positiveWords = []string{
	"love", "great", "awesome", "happy", "excited",
	"wonderful", "amazing", "fantastic", "good", "like",
}

var negativeWords = []string{
	"hate", "bad", "terrible", "sad", "angry",
	"awful", "horrible", "dislike", "upset", "frustrated",
}

var topicKeywords = map[string][]string{
	"personal":   {"family", "friend", "life", "story", "experience", "childhood", "memory"},
	"work":       {"work", "job", "career", "project", "business", "professional", "office"},
	"hobbies":    {"hobby", "interest", "fun", "enjoy", "love to", "passion", "free time"},
	"philosophy": {"think", "believe", "meaning", "purpose", "why", "philosophy", "opinion"},
	"future":     {"future", "plan", "goal", "dream", "hope", "will", "going to"},
	"emotions":   {"feel", "emotion", "happy", "sad", "love", "afraid", "excited"},
}

// ConversationAnalyzer deriva la senal de compatibilidad de comunicacion a
// partir del historial ordenado de mensajes de un par.
type ConversationAnalyzer struct{}

func NewConversationAnalyzer() *ConversationAnalyzer {
	return &ConversationAnalyzer{}
}

// Analyze procesa el historial y devuelve las sub-senales mas el agregado
// 0-100. ok es false con menos de 10 mensajes.
func (a *ConversationAnalyzer) Analyze(messages []domain.Message) (domain.ConversationAnalysis, bool) {
	if len(messages) < minMessagesForAnalysis {
		return domain.ConversationAnalysis{}, false
	}

	analysis := domain.ConversationAnalysis{
		ResponseTime:  a.analyzeResponseTimes(messages),
		MessageLength: a.analyzeMessageLengths(messages),
		EmotionalTone: a.analyzeEmotionalTone(messages),
		Topics:        a.extractTopics(messages),
		Balance:       a.analyzeBalance(messages),
	}
	analysis.Compatibility = a.aggregateCompatibility(analysis)

	return analysis, true
}

// analyzeResponseTimes promedia los minutos entre mensajes consecutivos de
// remitentes distintos y clasifica el patron.
func (a *ConversationAnalyzer) analyzeResponseTimes(messages []domain.Message) domain.ResponseTimes {
	var totalMinutes float64
	count := 0
	for i := 1; i < len(messages); i++ {
		if messages[i].SenderID == messages[i-1].SenderID {
			continue
		}
		totalMinutes += messages[i].CreatedAt.Sub(messages[i-1].CreatedAt).Minutes()
		count++
	}

	if count == 0 {
		return domain.ResponseTimes{Pattern: "sporadic"}
	}

	avg := totalMinutes / float64(count)
	return domain.ResponseTimes{
		AverageMinutes: avg,
		Pattern:        responsePattern(avg),
	}
}

func responsePattern(avgMinutes float64) string {
	switch {
	case avgMinutes < 5:
		return "rapid-fire"
	case avgMinutes < 30:
		return "engaged"
	case avgMinutes < 120:
		return "thoughtful"
	default:
		return "sporadic"
	}
}

// analyzeMessageLengths separa por identidad de remitente (no por paridad de
// indice) y compara los largos promedio.
func (a *ConversationAnalyzer) analyzeMessageLengths(messages []domain.Message) domain.MessageLengths {
	bySender := splitBySender(messages)

	avgA := avgLength(bySender.a)
	avgB := avgLength(bySender.b)

	result := domain.MessageLengths{AverageA: avgA, AverageB: avgB}
	longest := math.Max(avgA, avgB)
	if longest > 0 {
		result.Similarity = 1 - math.Abs(avgA-avgB)/longest
	}
	return result
}

func (a *ConversationAnalyzer) analyzeEmotionalTone(messages []domain.Message) domain.EmotionalTone {
	var positive, negative, emojis, exclamations, questions, totalWords int

	for _, msg := range messages {
		content := strings.ToLower(msg.Content)
		for _, word := range positiveWords {
			if strings.Contains(content, word) {
				positive++
			}
		}
		for _, word := range negativeWords {
			if strings.Contains(content, word) {
				negative++
			}
		}
		for _, r := range msg.Content {
			switch {
			case r >= 0x1F300 && r <= 0x1F9FF:
				emojis++
			case r == '!':
				exclamations++
			case r == '?':
				questions++
			}
		}
		totalWords += len(strings.Fields(msg.Content))
	}

	tone := domain.EmotionalTone{OverallTone: "neutral"}
	if totalWords > 0 {
		tone.Positivity = float64(positive) / float64(totalWords)
		tone.Negativity = float64(negative) / float64(totalWords)
	}
	messageCount := float64(len(messages))
	tone.EmojiUsage = float64(emojis) / messageCount
	tone.Enthusiasm = float64(exclamations) / messageCount
	tone.Curiosity = float64(questions) / messageCount

	if positive > negative*2 {
		tone.OverallTone = "positive"
	} else if negative > positive*2 {
		tone.OverallTone = "negative"
	}
	return tone
}

// extractTopics cuenta hits por categoria y normaliza a proporciones.
func (a *ConversationAnalyzer) extractTopics(messages []domain.Message) map[string]float64 {
	counts := make(map[string]int)
	total := 0

	for _, msg := range messages {
		content := strings.ToLower(msg.Content)
		for topic, keywords := range topicKeywords {
			for _, keyword := range keywords {
				if strings.Contains(content, keyword) {
					counts[topic]++
					total++
				}
			}
		}
	}

	topics := make(map[string]float64, len(counts))
	if total == 0 {
		return topics
	}
	for topic, count := range counts {
		topics[topic] = float64(count) / float64(total)
	}
	return topics
}

func (a *ConversationAnalyzer) analyzeBalance(messages []domain.Message) domain.ConversationBalance {
	bySender := splitBySender(messages)

	countA := float64(len(bySender.a))
	countB := float64(len(bySender.b))
	if countA == 0 || countB == 0 {
		return domain.ConversationBalance{}
	}

	balance := math.Min(countA, countB) / math.Max(countA, countB)
	return domain.ConversationBalance{
		MessageCountBalance: balance,
		IsBalanced:          balance > 0.7,
	}
}

// aggregateCompatibility pondera las sub-senales en un 0-100 con tope 100.
func (a *ConversationAnalyzer) aggregateCompatibility(analysis domain.ConversationAnalysis) float64 {
	score := 0.0

	if analysis.ResponseTime.Pattern == "engaged" {
		score += 20
	}
	score += analysis.MessageLength.Similarity * 20
	if analysis.EmotionalTone.OverallTone == "positive" {
		score += 20
	}
	score += math.Min(analysis.EmotionalTone.Positivity*100, 10)
	if analysis.Balance.IsBalanced {
		score += 20
	}
	score += math.Min(float64(len(analysis.Topics))*2, 10)

	return math.Min(math.Round(score), 100)
}

// GenerateInsights produce frases cortas de las sub-senales que cruzaron
// umbral.
func (a *ConversationAnalyzer) GenerateInsights(analysis domain.ConversationAnalysis) []string {
	var insights []string

	switch analysis.ResponseTime.Pattern {
	case "rapid-fire":
		insights = append(insights, "You both enjoy quick, energetic conversations")
	case "thoughtful":
		insights = append(insights, "You take time to craft meaningful responses")
	}

	if analysis.MessageLength.Similarity > 0.8 {
		insights = append(insights, "Your communication styles are well-matched")
	}
	if analysis.EmotionalTone.EmojiUsage > 0.3 {
		insights = append(insights, "Lots of emotional expression through emojis")
	}
	if analysis.EmotionalTone.Curiosity > 0.2 {
		insights = append(insights, "Great at asking questions and showing interest")
	}

	if topTopics := topTopics(analysis.Topics, 2); len(topTopics) > 0 {
		insights = append(insights, fmt.Sprintf("You connect well discussing: %s", strings.Join(topTopics, " and ")))
	}

	return insights
}

func topTopics(topics map[string]float64, n int) []string {
	type topicShare struct {
		topic string
		share float64
	}
	ranked := make([]topicShare, 0, len(topics))
	for topic, share := range topics {
		ranked = append(ranked, topicShare{topic, share})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].share != ranked[j].share {
			return ranked[i].share > ranked[j].share
		}
		return ranked[i].topic < ranked[j].topic
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	names := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		names = append(names, entry.topic)
	}
	return names
}

type senderSplit struct {
	a []domain.Message
	b []domain.Message
}

// splitBySender agrupa por identidad del remitente: el primer remitente
// observado es A, el primero distinto es B.
func splitBySender(messages []domain.Message) senderSplit {
	var split senderSplit
	if len(messages) == 0 {
		return split
	}

	senderA := messages[0].SenderID
	for _, msg := range messages {
		if msg.SenderID == senderA {
			split.a = append(split.a, msg)
		} else {
			split.b = append(split.b, msg)
		}
	}
	return split
}

func avgLength(messages []domain.Message) float64 {
	if len(messages) == 0 {
		return 0
	}
	total := 0
	for _, msg := range messages {
		total += len(msg.Content)
	}
	return float64(total) / float64(len(messages))
}
