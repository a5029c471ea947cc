package narrative

// Rule produces a value when its precondition holds.
type Rule[T any] struct {
	Name string
	When func(*Facts) bool
	Make func(*Facts) T
}

// Apply evaluates rules in order and collects the output of every rule whose
// precondition holds, up to limit values. The result is never nil.
func Apply[T any](f *Facts, rules []Rule[T], limit int) []T {
	out := make([]T, 0, min(len(rules), limit))
	for _, r := range rules {
		if len(out) >= limit {
			break
		}
		if r.When(f) {
			out = append(out, r.Make(f))
		}
	}
	return out
}

// First returns the output of the first rule whose precondition holds.
func First[T any](f *Facts, rules []Rule[T]) (T, bool) {
	for _, r := range rules {
		if r.When(f) {
			return r.Make(f), true
		}
	}
	var zero T
	return zero, false
}

func always(*Facts) bool { return true }
