package catalog

import "github.com/sahilm/fuzzy"

// endpointSource adapts a slice of endpoints to fuzzy.Source
type endpointSource []Endpoint

func (s endpointSource) String(i int) string { return s[i].Name }
func (s endpointSource) Len() int            { return len(s) }

// Search fuzzy-matches query against endpoint names, best match first.
// An empty query returns the whole catalog in presentation order.
func Search(query string) []Endpoint {
	return SearchIn(All(), query)
}

// SearchIn is Search over an arbitrary endpoint list
func SearchIn(list []Endpoint, query string) []Endpoint {
	if query == "" {
		return list
	}
	matches := fuzzy.FindFrom(query, endpointSource(list))
	out := make([]Endpoint, 0, len(matches))
	for _, m := range matches {
		out = append(out, list[m.Index])
	}
	return out
}
