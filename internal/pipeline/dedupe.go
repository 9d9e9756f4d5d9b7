package pipeline

import "strings"

// ProtocolAgnosticKey returns link without its scheme: everything up to
// and including the first ':' is dropped. A link without ':' is its own key.
//
//	"https://x.com/a" -> "//x.com/a"
//	"/relative"       -> "/relative"
func ProtocolAgnosticKey(link string) string {
	if i := strings.IndexByte(link, ':'); i >= 0 {
		return link[i+1:]
	}
	return link
}

// Dedupe returns links with every entry whose ProtocolAgnosticKey was
// already seen removed. Order is preserved and the first occurrence wins.
func Dedupe(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	unique := make([]string, 0, len(links))
	for _, link := range links {
		key := ProtocolAgnosticKey(link)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, link)
	}
	return unique
}
