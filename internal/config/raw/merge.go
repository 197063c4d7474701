package raw

import "sort"

// Merge combines two trees. Values in src override values in dst:
// mappings merge key by key recursively, everything else (scalars and
// whole sequences) is replaced. A null src leaves dst untouched.
// Neither argument is modified.
func Merge(dst, src Value) Value {
	if src.kind == KindNull {
		return dst
	}
	if src.kind != KindMap || dst.kind != KindMap {
		return src
	}

	out := Map(dst.m)
	for key, srcVal := range src.m {
		dstVal, exists := out.m[key]
		if !exists {
			out.m[key] = srcVal
			continue
		}
		out.m[key] = Merge(dstVal, srcVal)
	}
	return out
}

// Equal reports whether a and b hold the same tree.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Diff returns the sorted paths at which a and b differ.
// Mappings are compared key by key; any other pair of values is reported
// at its own path when unequal.
func Diff(a, b Value) []string {
	var out []string
	diff("", a, b, &out)
	sort.Strings(out)
	return out
}

func diff(path string, a, b Value, out *[]string) {
	if a.kind != KindMap || b.kind != KindMap {
		if !Equal(a, b) {
			*out = append(*out, path)
		}
		return
	}

	for k, av := range a.m {
		bv, ok := b.m[k]
		if !ok {
			*out = append(*out, joinPath(path, k))
			continue
		}
		diff(joinPath(path, k), av, bv, out)
	}
	for k := range b.m {
		if _, ok := a.m[k]; !ok {
			*out = append(*out, joinPath(path, k))
		}
	}
}
