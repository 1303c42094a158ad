// Package icon renders status symbols for CLI output in the configured variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/streamio/streamio/key"
)

const (
	emoji = "emoji"
	plain = "plain"
)

// AvailableVariants returns the supported icons.variant values.
func AvailableVariants() []string {
	return []string{emoji, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Link
	Server
)

type iconDef struct {
	emoji string
	plain string
}

var icons = map[Icon]iconDef{
	Success:  {emoji: "✅", plain: "✓"},
	Fail:     {emoji: "❌", plain: "✖"},
	Progress: {emoji: "⏳", plain: "…"},
	Link:     {emoji: "🔗", plain: "->"},
	Server:   {emoji: "📡", plain: "*"},
}

// Get renders i in the configured variant. Unknown variants render as empty.
func Get(i Icon) string {
	def := icons[i]
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return def.emoji
	case plain:
		return def.plain
	default:
		return ""
	}
}
