package store

// Namespace prefixes partition the single Pebble keyspace into one ordered
// map per entity type. Keys never collide across namespaces because no
// prefix is a prefix of another.
const (
	NSProfile    = "profile:"
	NSTune       = "tune:"
	NSSession    = "session:"
	NSInstrument = "instrument:"
	NSForum      = "forum:"
	NSPost       = "post:"
)
