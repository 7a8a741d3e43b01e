/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import "github.com/rs/zerolog/log"

// Format selects the serialization of analysis results.
type Format int

const (
	// FormatBase64 is the binary record; transports base64 it on the wire.
	FormatBase64 Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "base64"
}

// ParseFormat reads metadata_settings.format, falling back to FormatBase64.
func ParseFormat(root Object) Format {
	settings, ok := root.Object("metadata_settings")
	if !ok {
		return FormatBase64
	}
	v, lookup := settings.Number("format")
	if lookup != Found {
		return FormatBase64
	}
	switch Format(v) {
	case FormatBase64, FormatJSON:
		return Format(v)
	}
	log.Warn().Float64("format", v).Msg("Unknown metadata format, using base64")
	return FormatBase64
}
