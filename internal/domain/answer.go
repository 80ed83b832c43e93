package domain

// MaxAnswerLinks caps the number of supporting links in an answer.
const MaxAnswerLinks = 3

// Link is a supporting reference attached to an answer.
type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Answer is the externally visible result of a question: free text plus
// up to MaxAnswerLinks supporting links, best evidence first.
type Answer struct {
	Answer string `json:"answer"`
	Links  []Link `json:"links"`
}

// LinksFromResults projects the top evidence items into answer links.
func LinksFromResults(results []SearchResult) []Link {
	n := len(results)
	if n > MaxAnswerLinks {
		n = MaxAnswerLinks
	}
	links := make([]Link, 0, n)
	for _, r := range results[:n] {
		links = append(links, Link{URL: r.URL, Text: r.Title})
	}
	return links
}
