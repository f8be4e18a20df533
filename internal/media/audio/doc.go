// Package audio picks the audio stream that carries the main spoken track of
// a downloaded video.
//
// Most downloads hold a single audio stream. When there are several (dubbed
// versions, commentary, audio description), SelectSpeech skips commentary and
// description tracks, prefers the stream flagged as default, and breaks ties
// on channel count and then stream order.
package audio
