// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper so failures from yt-dlp,
//     ffmpeg and the Google APIs carry a consistent component/operation prefix.
//
// Integrations live in subpackages (gemini, llm, tts); use these helpers when
// wiring them so error text and log fields stay uniform across the pipeline.
package services
