package theme

// Category groups color keys under a heading in the colors panel.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is one editable color key.
type Item struct {
	Key         string `json:"key"`
	Description string `json:"description"`
}

// Keys returns every color key of the given categories in order.
func Keys(cats []Category) []string {
	var keys []string
	for _, c := range cats {
		for _, it := range c.Items {
			keys = append(keys, it.Key)
		}
	}
	return keys
}
