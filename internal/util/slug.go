package util

import "github.com/gosimple/slug"

// Slugify turns a display name into a lowercase, hyphenated ASCII slug.
// Collisions are the caller's problem: slugs are never suffixed.
func Slugify(name string) string {
	return slug.Make(name)
}
