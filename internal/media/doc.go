// Package media composes the downloader, the audio extractor and ffprobe
// inspection into the fetch step of the dubbing pipeline.
//
// Artifact file names are fixed so every run writes to the same locations
// inside the output directory.
package media
