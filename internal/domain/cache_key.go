package domain

import "strings"

// IdeaType is the coarse category an idea is bucketed under.
type IdeaType string

const (
	IdeaTechnical IdeaType = "technical"
	IdeaBusiness  IdeaType = "business"
	IdeaContent   IdeaType = "content"
	IdeaLearning  IdeaType = "learning"
	IdeaPersonal  IdeaType = "personal"
	IdeaGeneral   IdeaType = "general"
)

// LengthCategory buckets ideas by word count.
type LengthCategory string

const (
	LengthShort  LengthCategory = "short"
	LengthMedium LengthCategory = "medium"
	LengthLong   LengthCategory = "long"
)

const (
	shortMaxWords  = 10
	mediumMaxWords = 25
)

type ideaKeywords struct {
	ideaType IdeaType
	keywords []string
}

// Order matters: the first list with a substring match wins.
//
//nolint:gochecknoglobals // read-only classification table
var ideaTypeKeywords = []ideaKeywords{
	{IdeaTechnical, []string{
		"app", "software", "api", "code", "program", "platform", "database", "algorithm",
		"automation", "automate", "website", "web ", "mobile", "server", "cloud", "machine learning",
		"plugin", "extension", "framework", "library", "chatbot", "tool",
	}},
	{IdeaBusiness, []string{
		"business", "startup", "revenue", "market", "customer", "sales", "sell", "profit",
		"company", "subscription", "pricing", "monetiz", "invest", "client", "service", "agency",
	}},
	{IdeaContent, []string{
		"blog", "article", "video", "podcast", "newsletter", "youtube", "write", "post",
		"content", "book", "ebook", "story", "tweet", "thread",
	}},
	{IdeaLearning, []string{
		"learn", "study", "course", "skill", "tutorial", "practice", "understand", "research",
		"read", "language", "certification", "master",
	}},
	{IdeaPersonal, []string{
		"health", "habit", "family", "fitness", "exercise", "travel", "hobby", "home",
		"diet", "sleep", "meditat", "friend", "garden",
	}},
}

// CacheKey scopes the semantic search space. It is compared for equality
// only, never fuzzily.
type CacheKey struct {
	IdeaType       IdeaType
	LengthCategory LengthCategory
	ProviderType   ProviderType
	PromptVersion  string
}

// NewCacheKey classifies idea and binds it to the provider and prompt version.
func NewCacheKey(idea string, provider ProviderType, promptVersion string) CacheKey {
	return CacheKey{
		IdeaType:       ClassifyIdeaType(idea),
		LengthCategory: ClassifyLength(idea),
		ProviderType:   provider,
		PromptVersion:  promptVersion,
	}
}

// ClassifyIdeaType returns the first category whose keyword list has a
// substring match in the lower-cased idea, or IdeaGeneral.
func ClassifyIdeaType(idea string) IdeaType {
	lower := strings.ToLower(idea)
	for _, group := range ideaTypeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.ideaType
			}
		}
	}
	return IdeaGeneral
}

// ClassifyLength buckets idea by whitespace-separated word count.
func ClassifyLength(idea string) LengthCategory {
	switch words := len(strings.Fields(idea)); {
	case words <= shortMaxWords:
		return LengthShort
	case words <= mediumMaxWords:
		return LengthMedium
	default:
		return LengthLong
	}
}

// String renders the key for logs and metric labels.
func (k CacheKey) String() string {
	return string(k.IdeaType) + "/" + string(k.LengthCategory) + "/" + string(k.ProviderType) + "/" + k.PromptVersion
}
