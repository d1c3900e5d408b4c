package textsim

//nolint:gochecknoglobals // read-only lookup tables
var stopWords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "of", "at", "by", "for",
	"with", "about", "against", "between", "into", "through", "during",
	"before", "after", "above", "below", "to", "from", "up", "down", "in",
	"out", "on", "off", "over", "under", "again", "further", "then", "once",
	"here", "there", "when", "where", "why", "how", "all", "any", "both",
	"each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "can", "will",
	"just", "should", "now", "i", "me", "my", "we", "our", "you", "your",
	"he", "him", "his", "she", "her", "it", "its", "they", "them", "their",
	"what", "which", "who", "whom", "this", "that", "these", "those", "am",
	"is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "would", "could", "make", "want",
)

// DefaultSynonyms folds common idea-domain paraphrases onto one term so that
// reworded ideas share vocabulary.
//
//nolint:gochecknoglobals // read-only lookup table
var DefaultSynonyms = map[string]string{
	"application":  "app",
	"applications": "app",
	"apps":         "app",
	"create":       "build",
	"creating":     "build",
	"develop":      "build",
	"developing":   "build",
	"building":     "build",
	"construct":    "build",
	"exercise":     "fitness",
	"exercises":    "fitness",
	"workout":      "fitness",
	"workouts":     "fitness",
	"track":        "tracking",
	"tracker":      "tracking",
	"monitor":      "tracking",
	"business":     "company",
	"startup":      "company",
	"website":      "site",
	"webpage":      "site",
	"article":      "blog",
	"articles":     "blog",
	"post":         "blog",
	"posts":        "blog",
	"recipe":       "recipes",
	"learn":        "learning",
	"study":        "learning",
	"studying":     "learning",
	"users":        "user",
	"customers":    "customer",
	"clients":      "customer",
	"client":       "customer",
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
