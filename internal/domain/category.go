package domain

import "strings"

// InferCategory buckets a URL by keywords in its host name.
func InferCategory(rawURL string) string {
	host := Hostname(rawURL)
	switch {
	case host == "":
		return "general"
	case containsAny(host, "github", "gitlab", "stackoverflow", "golang", "npmjs"):
		return "development"
	case containsAny(host, "youtube", "netflix", "twitch", "spotify"):
		return "entertainment"
	case containsAny(host, "news", "cnn", "bbc", "reuters"):
		return "news"
	case containsAny(host, "learn", "course", "edu", "udemy", "coursera"):
		return "education"
	case containsAny(host, "shop", "amazon", "store", "ebay"):
		return "shopping"
	default:
		return "general"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
