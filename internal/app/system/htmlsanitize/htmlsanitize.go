// Package htmlsanitize strips unsafe markup from admin-supplied content
// before it is stored and served to the public site.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	rich       *bluemonday.Policy
	policyOnce sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		rich = bluemonday.UGCPolicy()
		rich.AllowElements("u", "s", "sub", "sup", "mark")
		rich.RequireNoFollowOnLinks(true)
		rich.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return strict, rich
}

// Text removes all markup from s and trims surrounding space. Entities are
// decoded afterwards so plain text such as "A & B" or a URL query string is
// stored as typed; markup hidden behind entities is stripped on a later pass.
func Text(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	for i := 0; i < 3; i++ {
		out := html.UnescapeString(p.Sanitize(s))
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}

// Rich keeps safe formatting (emphasis, lists, links) and drops the rest.
func Rich(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return p.Sanitize(s)
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}

// Fields cleans every string value in fields in place. Keys listed in
// richKeys keep safe formatting; all others become plain text. String
// slices are cleaned element by element.
func Fields(fields map[string]any, richKeys ...string) {
	keep := make(map[string]bool, len(richKeys))
	for _, k := range richKeys {
		keep[k] = true
	}
	clean := Text
	for k, v := range fields {
		if keep[k] {
			clean = Rich
		} else {
			clean = Text
		}
		switch val := v.(type) {
		case string:
			fields[k] = clean(val)
		case []string:
			out := make([]string, len(val))
			for i, s := range val {
				out[i] = clean(s)
			}
			fields[k] = out
		}
	}
}
