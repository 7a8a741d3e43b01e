/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package params

import (
	"math"

	"github.com/rs/zerolog/log"
)

// Status is the outcome of a single extractor.
type Status int

const (
	// StatusOk means the field was read as-is, or an optional field took its default.
	StatusOk Status = iota
	// StatusInvalid means a required field was missing or ill-typed and took its default.
	StatusInvalid
	// StatusOutOfRange means the value was outside its domain and took its default.
	StatusOutOfRange
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusInvalid:
		return "invalid"
	case StatusOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// Extractor reads one field of obj into p. When the field cannot be used
// as given, the extractor stores the default both in p and in obj.
type Extractor[P any] func(obj Object, p *P) Status

// Run applies every extractor and returns the first non-ok status. All
// extractors run even after a failure so that one pass leaves p fully valid.
func Run[P any](obj Object, p *P, extractors []Extractor[P]) Status {
	res := StatusOk
	for _, extract := range extractors {
		if st := extract(obj, p); st != StatusOk && res == StatusOk {
			res = st
		}
	}
	return res
}

// Number builds a required numeric field bounded to [lo, hi].
func Number[P any](key string, def, lo, hi float64, set func(*P, float64)) Extractor[P] {
	return func(obj Object, p *P) Status {
		v, lookup := obj.Number(key)
		switch lookup {
		case Missing:
			log.Info().Str("param", key).Float64("default", def).Msg("Parameter missing, using default value")
			set(p, def)
			obj.Set(key, def)
			return StatusInvalid
		case WrongType:
			log.Warn().Str("param", key).Float64("default", def).Msg("Parameter is not a number, using default value")
			set(p, def)
			obj.Set(key, def)
			return StatusInvalid
		}
		if v < lo || v > hi {
			log.Warn().Str("param", key).Float64("value", v).Float64("default", def).Msg("Parameter out of range, using default value")
			set(p, def)
			obj.Set(key, def)
			return StatusOutOfRange
		}
		set(p, v)
		return StatusOk
	}
}

// Integer is Number for fields stored as integers; fractional parts are
// truncated toward zero.
func Integer[P any](key string, def, lo, hi int, set func(*P, int)) Extractor[P] {
	return Number(key, float64(def), float64(lo), float64(hi), func(p *P, v float64) {
		set(p, int(math.Trunc(v)))
	})
}

// Bool builds an optional boolean field.
func Bool[P any](key string, def bool, set func(*P, bool)) Extractor[P] {
	return func(obj Object, p *P) Status {
		v, lookup := obj.Bool(key)
		if lookup != Found {
			if lookup == WrongType {
				log.Warn().Str("param", key).Bool("default", def).Msg("Parameter is not a boolean, using default value")
			}
			set(p, def)
			obj.Set(key, def)
			return StatusOk
		}
		set(p, v)
		return StatusOk
	}
}

// Enum builds an optional string field restricted to the names accepted
// by parse. Unknown names are out of range.
func Enum[P any, E any](key string, def string, parse func(string) (E, bool), set func(*P, E)) Extractor[P] {
	return func(obj Object, p *P) Status {
		defValue, _ := parse(def)
		s, lookup := obj.String(key)
		if lookup != Found {
			set(p, defValue)
			obj.Set(key, def)
			return StatusOk
		}
		v, ok := parse(s)
		if !ok {
			log.Warn().Str("param", key).Str("value", s).Str("default", def).Msg("Unknown parameter value, using default value")
			set(p, defValue)
			obj.Set(key, def)
			return StatusOutOfRange
		}
		log.Info().Str("param", key).Str("value", s).Msg("Parameter set")
		set(p, v)
		return StatusOk
	}
}
