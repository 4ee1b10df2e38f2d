package badgerdb

import (
	"fmt"
	"math"
	"strings"

	"github.com/listenupapp/guestbook/internal/id"
)

// Key layout:
//
//	book:<id>                                 -> Book JSON
//	book:idx:name:<escaped name>\x00\x00<id>   -> <id>   (NUL in name -> \x00\xff)
//	greeting:<id>                             -> Greeting JSON
//	greeting:idx:book:<bookID>:<date>:<id>    -> <id>   (date and id inverted)
//	seq:book, seq:greeting                    -> badger sequences
const (
	bookPrefix     = "book:"
	greetingPrefix = "greeting:"

	bookSeqKey     = "seq:book"
	greetingSeqKey = "seq:greeting"
)

func bookKey(bookID int64) []byte {
	return buildKey(bookPrefix, id.Key(bookID))
}

func greetingKey(greetingID int64) []byte {
	return buildKey(greetingPrefix, id.Key(greetingID))
}

// bookNamePrefix is the prefix shared by every name index entry.
func bookNamePrefix() []byte {
	return buildIndexKey(bookPrefix, "name", "")
}

// bookNameKey sorts by the raw bytes of the name, then by ascending id.
// The name is escaped so that a name is always ordered before any longer
// name it prefixes, even when the next byte is NUL.
func bookNameKey(name string, bookID int64) []byte {
	return buildIndexKey(bookPrefix, "name", escapeName(name)+"\x00\x00"+id.Key(bookID))
}

// escapeName rewrites each NUL as NUL 0xFF. The terminator NUL NUL then
// sorts below every escaped byte sequence.
func escapeName(name string) string {
	return strings.ReplaceAll(name, "\x00", "\x00\xff")
}

// bookGreetingsPrefix scopes a scan to a single book's greetings.
func bookGreetingsPrefix(bookID int64) []byte {
	return buildIndexKey(greetingPrefix, "book", id.Key(bookID)+":")
}

// bookGreetingKey sorts newest first, then by descending id.
func bookGreetingKey(bookID, dateNanos, greetingID int64) []byte {
	return buildIndexKey(greetingPrefix, "book",
		id.Key(bookID)+":"+descending(dateNanos)+":"+descending(greetingID))
}

func buildKey(prefix, suffix string) []byte {
	buf := make([]byte, 0, len(prefix)+len(suffix))
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

func buildIndexKey(prefix, indexName, value string) []byte {
	buf := make([]byte, 0, len(prefix)+len("idx:")+len(indexName)+1+len(value))
	buf = append(buf, prefix...)
	buf = append(buf, "idx:"...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	return buf
}

// descending encodes n so that larger values sort first byte-wise.
// Flipping the sign bit maps int64 order onto uint64 order, including
// negatives (dates before 1970).
func descending(n int64) string {
	u := uint64(n) ^ (1 << 63)
	return fmt.Sprintf("%020d", math.MaxUint64-u)
}
