package scrape

import "github.com/tidwall/gjson"

// EmbeddedJSON returns the first embedded object found at path, checking
// __NEXT_DATA__ before ld+json blocks. When no document has an object at
// path, the first document whose root is an object is returned instead.
func (p *Page) EmbeddedJSON(path string) (gjson.Result, bool) {
	var roots []gjson.Result
	for _, doc := range p.documents() {
		if !gjson.Valid(doc) {
			continue
		}
		roots = append(roots, gjson.Parse(doc))
	}

	if path != "" {
		for _, root := range roots {
			if v := root.Get(path); v.IsObject() {
				return v, true
			}
		}
	}
	for _, root := range roots {
		if root.IsObject() {
			return root, true
		}
	}
	return gjson.Result{}, false
}

func (p *Page) documents() []string {
	docs := make([]string, 0, len(p.LDJSON)+1)
	if p.NextData != "" {
		docs = append(docs, p.NextData)
	}
	return append(docs, p.LDJSON...)
}
