package index

// Bilingual stop-word set for the knowledge base corpus. The corpus mixes
// Russian product documentation with English technical terms, so both
// languages are filtered before stemming.
var defaultStopWords = []string{
	// Russian
	"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а",
	"то", "все", "всё", "она", "так", "его", "но", "да", "ты", "к", "у",
	"же", "вы", "за", "бы", "по", "только", "ее", "её", "мне", "было",
	"вот", "от", "меня", "еще", "ещё", "нет", "о", "из", "ему", "теперь",
	"когда", "даже", "ну", "вдруг", "ли", "если", "уже", "или", "ни",
	"быть", "был", "него", "до", "вас", "нибудь", "опять", "уж", "вам",
	"ведь", "там", "потом", "себя", "ничего", "ей", "может", "они", "тут",
	"где", "есть", "надо", "ней", "для", "мы", "тебя", "их", "чем", "была",
	"сам", "чтоб", "без", "будто", "чего", "раз", "тоже", "себе", "под",
	"будет", "тогда", "кто", "этот", "это", "эти", "при", "чтобы",
	// English
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"had", "has", "have", "he", "her", "his", "how", "if", "in", "into",
	"is", "it", "its", "no", "not", "of", "on", "or", "our", "she", "such",
	"that", "the", "their", "then", "there", "these", "they", "this", "to",
	"was", "we", "what", "when", "where", "which", "who", "will", "with",
	"would", "you", "your", "can", "could", "should", "do", "does", "about",
}

// stopWords is the process-wide lookup set built once at init.
var stopWords = buildStopWordMap(defaultStopWords)

// buildStopWordMap converts a slice of stop words to a set for O(1) lookup.
func buildStopWordMap(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsStopWord reports whether the lowercased token is in the bilingual stop set.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
