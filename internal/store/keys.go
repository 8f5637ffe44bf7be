package store

import "strings"

// Key layout. Every entity lives under its own prefix:
//
//	{prefix}{id}                          -> entity JSON
//	{prefix}idx:{index}:{value}           -> id      (unique index)
//	{prefix}rel:{index}:{value}:{id}      -> empty   (lookup index, many ids per value)
//
// Ids never contain ':' so lookup values built from ids scan unambiguously.
const (
	uniqueSegment = "idx:"
	lookupSegment = "rel:"
	keySeparator  = ":"
)

// Entity prefixes.
const (
	userPrefix     = "user:"
	bookmarkPrefix = "bookmark:"
	tagPrefix      = "tag:"
	personaPrefix  = "persona:"
	followPrefix   = "follow:"
	likePrefix     = "like:"
)

func recordKey(prefix, id string) []byte {
	return []byte(prefix + id)
}

func uniqueKey(prefix, index, value string) []byte {
	return []byte(prefix + uniqueSegment + index + keySeparator + value)
}

func lookupPrefix(prefix, index, value string) []byte {
	return []byte(prefix + lookupSegment + index + keySeparator + value + keySeparator)
}

func lookupKey(prefix, index, value, id string) []byte {
	return append(lookupPrefix(prefix, index, value), id...)
}

// pair joins two key parts into one composite index value.
func pair(a, b string) string {
	return a + keySeparator + b
}

// isIndexKey reports whether the part of a key after the entity prefix
// belongs to an index rather than a record.
func isIndexKey(rest string) bool {
	return strings.HasPrefix(rest, uniqueSegment) || strings.HasPrefix(rest, lookupSegment)
}
