// Package decoder recovers stream URLs from the obfuscated payload of the final embed page.
//
// The page labels its payload with a marker. Each registry entry pairs an opaque key with a
// reversible transform; an entry applies when its key, reordered in reverse three-character
// chunks, equals the marker. Decoded text may list alternatives separated by "or", of which the
// first wins, and may carry {v1}..{v5} host placeholders.
package decoder

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/streamio/streamio/constant"
)

// Func decodes a ciphertext into text. It must fail rather than panic on arbitrary input.
type Func func(ciphertext string) (string, error)

// Entry is one registry slot.
type Entry struct {
	Key    string
	Decode Func
}

// Marker returns the page marker that selects this entry.
func (e Entry) Marker() string {
	return TransformKey(e.Key)
}

// entries is the fixed decoder table.
var entries = []Entry{
	{"Iry9MQXnLs", hexXorShiftBase64},
	{"IGLImMhWrI", rot13Base64},
	{"GTAxQyTyBx", alternateBase64},
	{"C66jPHx8qu", reversedHexXor},
	{"MyL1IRSfHe", reversedShiftHex},
	{"detdj7JHiK", trimmedBase64Xor},
	{"nZlUnj2VSo", caesar3},
	{"laM1dAi3vO", urlSafeBase64Shift(5)},
	{"GuxKGDsA2T", urlSafeBase64Shift(7)},
	{"LXVUMCoAHJ", urlSafeBase64Shift(3)},
}

// Entries returns a copy of the decoder table in registration order.
func Entries() []Entry {
	return append([]Entry(nil), entries...)
}

// TransformKey splits key into consecutive three-character chunks and joins them in reverse order.
func TransformKey(key string) string {
	chunks := lo.ChunkString(key, 3)
	var b strings.Builder
	b.Grow(len(key))
	for i := len(chunks) - 1; i >= 0; i-- {
		b.WriteString(chunks[i])
	}
	return b.String()
}

// placeholders are the host slots substituted in decoded URLs.
var placeholders = []string{"{v1}", "{v2}", "{v3}", "{v4}", "{v5}"}

// Registry maps markers to decoders. It is immutable after construction and safe for concurrent use.
type Registry struct {
	host     string
	byMarker map[string]Entry
	hosts    *strings.Replacer
}

// New builds a registry that substitutes host for the {v1}..{v5} placeholders.
func New(host string) *Registry {
	pairs := make([]string, 0, len(placeholders)*2)
	for _, p := range placeholders {
		pairs = append(pairs, p, host)
	}

	return &Registry{
		host: host,
		byMarker: lo.SliceToMap(entries, func(e Entry) (string, Entry) {
			return e.Marker(), e
		}),
		hosts: strings.NewReplacer(pairs...),
	}
}

// Default substitutes the stock stream host.
var Default = New(constant.StreamHost)

// Host returns the substituted host literal.
func (r *Registry) Host() string {
	return r.host
}

// Lookup returns the entry selected by marker.
func (r *Registry) Lookup(marker string) (Entry, bool) {
	e, ok := r.byMarker[marker]
	return e, ok
}

// SubstituteHost replaces every host placeholder. Applying it twice is the same as applying it once.
func (r *Registry) SubstituteHost(s string) string {
	return r.hosts.Replace(s)
}

// FirstCandidate keeps the text before the first literal "or", trimmed.
func FirstCandidate(decoded string) string {
	head, _, _ := strings.Cut(decoded, "or")
	return strings.TrimSpace(head)
}

// Decode runs the decoder selected by marker and returns the host-substituted stream URL.
func (r *Registry) Decode(marker, ciphertext string) (string, error) {
	entry, ok := r.Lookup(marker)
	if !ok {
		return "", fmt.Errorf("no decoder for marker %q", marker)
	}

	plain, err := entry.Decode(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decoder %s: %w", entry.Key, err)
	}

	return r.SubstituteHost(FirstCandidate(plain)), nil
}

// StreamLink is Decode with failures collapsed to an absent value.
func (r *Registry) StreamLink(marker, ciphertext string) mo.Option[string] {
	link, err := r.Decode(marker, ciphertext)
	if err != nil {
		return mo.None[string]()
	}
	return mo.Some(link)
}
