package skemac

// IssueAt creates an Issue at the given path with provided code, keyword, category, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, keyword string, cat Category, msg string, params map[string]any) Issue {
	is := p.Issue(code, keyword, msg, params)
	is.Category = cat
	return is
}
