package domain

import "strings"

// DefaultDatabase is the namespace used when the operator does not name one.
const DefaultDatabase = "umls"

// Keyspace derives store keys and index names from a database name.
// "umls" -> "umls:concept:C0000005", "umls:concept:idx", "umls:string:42", "umls:meta".
type Keyspace struct {
	prefix string
}

// NewKeyspace creates a Keyspace for the given database name. A trailing ':' is optional.
func NewKeyspace(database string) Keyspace {
	if database == "" {
		database = DefaultDatabase
	}
	return Keyspace{prefix: strings.TrimSuffix(database, ":") + ":"}
}

// Prefix returns the namespace prefix including the trailing ':'.
func (k Keyspace) Prefix() string { return k.prefix }

// ConceptPrefix is the key prefix shared by all concept documents.
func (k Keyspace) ConceptPrefix() string { return k.prefix + "concept:" }

// ConceptKey returns the key of a concept document.
func (k Keyspace) ConceptKey(id string) string { return k.ConceptPrefix() + id }

// ConceptIndex returns the FT index name for concept documents.
func (k Keyspace) ConceptIndex() string { return k.prefix + "concept:idx" }

// StringPrefix is the key prefix shared by all string index entries.
func (k Keyspace) StringPrefix() string { return k.prefix + "string:" }

// StringKey returns the key of a string index entry.
func (k Keyspace) StringKey(id string) string { return k.StringPrefix() + id }

// StringIndex returns the FT index name for string index entries.
func (k Keyspace) StringIndex() string { return k.prefix + "string:idx" }

// MetaKey returns the key of the run metadata hash.
func (k Keyspace) MetaKey() string { return k.prefix + "meta" }

// IDFromKey strips prefix from key. ok is false when key does not start with prefix.
func IDFromKey(key, prefix string) (id string, ok bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}
