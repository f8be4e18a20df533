// Package gemini transcribes audio through the Gemini Files and
// generateContent REST APIs.
//
// A transcription uploads the audio with the resumable upload protocol, polls
// the file until Gemini reports it ACTIVE, asks the configured model for a
// verbatim transcript, and finally deletes the uploaded file. Polling backs
// off exponentially between PollInterval and PollMaxInterval and gives up
// with services.ErrTimeout once PollTimeout elapses, so a hung upload can
// never stall a run forever.
package gemini
