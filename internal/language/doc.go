// Package language provides unified language code normalization and mapping.
//
// Conversions between human-readable names, ISO 639-1/639-2 codes, and the
// BCP-47 locale codes expected by the speech synthesizer are consolidated
// here so the translation and synthesis stages agree on what a target
// language means.
package language
