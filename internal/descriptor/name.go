package descriptor

import "strings"

// Normalize canonicalizes a task or setting identifier: lowercase, with
// underscores converted to dashes. Registration and lookup both go through
// this, so `Build_All` and `build-all` name the same task.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// SplitDoc splits a documentation string into a one-line hint and a
// dedented multi-line help body, mirroring the first-line/rest docstring
// convention. An empty doc yields empty hint and help.
func SplitDoc(doc string) (hint, help string) {
	doc = strings.Trim(doc, "\n")
	if doc == "" {
		return "", ""
	}
	lines := strings.Split(doc, "\n")
	hint = strings.TrimSpace(lines[0])
	if len(lines) < 2 {
		return hint, ""
	}
	body := dedent(lines[1:])
	return hint, strings.Trim(strings.Join(body, "\n"), "\n")
}

// dedent removes the longest common leading whitespace from every
// non-blank line.
func dedent(lines []string) []string {
	margin := -1
	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(l) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= margin {
			out[i] = l[margin:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}
