package model

// Category is the classifier's bucket for an inbound message.
type Category string

const (
	CategoryUrgent      Category = "urgent"
	CategoryImportant   Category = "important"
	CategoryPromotional Category = "promotional"
	CategoryNewsletter  Category = "newsletter"
	CategorySpam        Category = "spam"
	CategoryGeneral     Category = "general"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryUrgent, CategoryImportant, CategoryPromotional,
		CategoryNewsletter, CategorySpam, CategoryGeneral:
		return true
	}
	return false
}

// Priority is the classifier's urgency level for an inbound message.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Score returns the numeric weight of the priority: high=3, medium=2,
// low=1. Unknown priorities score 0.
func (p Priority) Score() float64 {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Sentiment is the summarizer's read of the message's emotional register.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentUrgent   Sentiment = "urgent"
)

// Valid reports whether s is one of the known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentUrgent:
		return true
	}
	return false
}

// Tone is the register of a drafted reply.
type Tone string

const (
	ToneFormal       Tone = "formal"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
)

// Valid reports whether t is one of the known tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneProfessional, ToneCasual, ToneFriendly:
		return true
	}
	return false
}

// Classification is the classifier's verdict for a single message.
// Created once per message and never mutated afterwards.
type Classification struct {
	// Category is the message bucket.
	Category Category `json:"category"`

	// Priority is the urgency level.
	Priority Priority `json:"priority"`

	// Confidence is the generation service's self-reported certainty
	// in [0, 1]. Fallback classifications carry 0 so degraded output is
	// visibly distinguishable from trusted output.
	Confidence float64 `json:"confidence"`

	// Reasoning is a brief free-text explanation of the verdict.
	Reasoning string `json:"reasoning"`

	// AutoRespond records whether the auto-response policy gate passed
	// for this classification.
	AutoRespond bool `json:"auto_respond"`
}

// Summary is the summarizer's extraction for a single message.
type Summary struct {
	// Summary is a 2-3 sentence digest of the message.
	Summary string `json:"summary"`

	// KeyPoints are the important details, in source order.
	KeyPoints []string `json:"key_points"`

	// ActionItems are the requests or tasks the message asks for.
	ActionItems []string `json:"action_items"`

	// Sentiment is the message's emotional register. Urgent wins over
	// negative when a message exhibits both.
	Sentiment Sentiment `json:"sentiment"`
}

// Draft is a candidate reply. It is mutable across refinement rounds
// within a single approval session; each refinement replaces the prior
// value.
type Draft struct {
	// Subject is the reply subject line.
	Subject string `json:"subject"`

	// Body is the reply body text.
	Body string `json:"body"`

	// Tone is the register the reply was written in.
	Tone Tone `json:"tone"`

	// Confidence is the generation service's self-reported certainty
	// in [0, 1]. Templated fallback drafts carry 0.
	Confidence float64 `json:"confidence"`
}
