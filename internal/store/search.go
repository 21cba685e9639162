package store

import "strings"

// LikeEscape is the escape character used by SearchPattern.
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern turns a free-text search term into a LIKE pattern matching
// any value that contains the term. Wildcards in the term match literally.
// The pattern is lower-cased with Unicode case folding so backends without
// ILIKE can compare it against a lower-cased column.
func SearchPattern(term string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
