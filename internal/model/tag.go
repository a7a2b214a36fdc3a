package model

import "strings"

// ParseTags splits a free-text, comma separated tag string. Tags are not
// validated; surrounding whitespace and empty entries are dropped.
func ParseTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// DisplayTag returns the tag name with a # prefix if not already present
func DisplayTag(tag string) string {
	if strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}
