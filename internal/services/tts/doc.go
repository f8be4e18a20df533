// Package tts synthesizes speech with the Google Cloud Text-to-Speech REST API.
//
// Requests are limited to a few thousand bytes of input, so Synthesize splits
// long text on sentence boundaries, synthesizes each chunk as MP3, and writes
// the concatenated frames to the output path through a temporary file.
package tts
