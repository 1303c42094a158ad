package source

import "strings"

// uiErrorTexts mark the placeholder element the player shows instead of a payload.
var uiErrorTexts = []string{"Wrong Video", "Sent report"}

// MarkerPair is the payload of the hidden element on the final embed page.
type MarkerPair struct {
	// Marker selects the decoder; it is the element's id attribute.
	Marker string
	// Ciphertext is the element's trimmed text content.
	Ciphertext string
}

// NewMarkerPair builds a pair from the raw element values, blanking both when the text is a UI error placeholder.
func NewMarkerPair(marker, text string) MarkerPair {
	text = strings.TrimSpace(text)
	for _, s := range uiErrorTexts {
		if strings.Contains(text, s) {
			return MarkerPair{}
		}
	}
	return MarkerPair{Marker: marker, Ciphertext: text}
}

// Valid reports whether both fields are usable. Either being empty means the fallback applies.
func (p MarkerPair) Valid() bool {
	if p.Marker == "" || p.Ciphertext == "" {
		return false
	}
	for _, s := range uiErrorTexts {
		if strings.Contains(p.Ciphertext, s) {
			return false
		}
	}
	return true
}
