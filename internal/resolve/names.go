package resolve

import "strings"

// kebabToPascal converts "my-member" to "MyMember". A segment with no
// hyphens is simply capitalized.
func kebabToPascal(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(capitalize(p))
	}
	return b.String()
}

// kebabToCamel converts "my-member" to "myMember".
func kebabToCamel(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	for i, p := range parts {
		if i == 0 {
			b.WriteString(strings.ToLower(p))
		} else {
			b.WriteString(capitalize(p))
		}
	}
	return b.String()
}

// kebabToSnake converts "my-member" to "my_member".
func kebabToSnake(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "-", "_"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
