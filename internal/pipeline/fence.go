package pipeline

import "strings"

const fence = "```"

// StripCodeFence removes a single Markdown code fence surrounding s, such as
// "```python\n...\n```". Anything else is returned unchanged.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, fence) || !strings.HasSuffix(trimmed, fence) || len(trimmed) < 2*len(fence) {
		return s
	}

	nl := strings.IndexByte(trimmed, '\n')
	if nl < 0 {
		return s
	}
	// The info string may name a language but never contains backticks.
	if strings.Contains(trimmed[len(fence):nl], "`") {
		return s
	}

	body := trimmed[nl+1 : len(trimmed)-len(fence)]
	if strings.Contains(body, "\n"+fence) || strings.HasPrefix(body, fence) {
		// More than one fenced block; leave the answer as is.
		return s
	}
	return strings.TrimRight(body, "\n") + "\n"
}
