// Package ffprobe wraps the ffprobe CLI to inspect media containers.
//
// The fetcher and the muxer use it to confirm that a downloaded or muxed file
// actually carries a video stream and an audio stream before a stage reports
// success.
package ffprobe
