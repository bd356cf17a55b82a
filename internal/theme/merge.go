package theme

// MergeColors returns base with every key of add that base lacks. Base wins
// on conflicts.
func MergeColors(base, add map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(add))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range add {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// MergeTokenRules merges rules keyed by scope. Base rules go first; base
// rules sharing a key collapse into the first one's position with the last
// one's settings. Rules of add follow in order when their key is new.
func MergeTokenRules(base, add []TokenRule) []TokenRule {
	slot := make(map[string]int, len(base)+len(add))
	out := make([]TokenRule, 0, len(base)+len(add))
	put := func(r TokenRule, replace bool) {
		k := r.Scope.Key()
		r.Scope = r.Scope.clone()
		if i, ok := slot[k]; ok {
			if replace {
				out[i] = r
			}
			return
		}
		slot[k] = len(out)
		out = append(out, r)
	}
	for _, r := range base {
		put(r, true)
	}
	for _, r := range add {
		put(r, false)
	}
	return out
}

// MergeSemanticRules returns base followed by the selectors of add that base
// lacks, in add's order.
func MergeSemanticRules(base, add SemanticRules) SemanticRules {
	out := base.Clone()
	for _, k := range add.keys {
		if !out.Has(k) {
			out.Set(k, add.values[k])
		}
	}
	return out
}

// Merge combines two models with base winning every conflict.
func Merge(base, add Model) Model {
	return Model{
		Colors:        MergeColors(base.Colors, add.Colors),
		TokenRules:    MergeTokenRules(base.TokenRules, add.TokenRules),
		SemanticRules: MergeSemanticRules(base.SemanticRules, add.SemanticRules),
	}
}
