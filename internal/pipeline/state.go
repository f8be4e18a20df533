package pipeline

import (
	"encoding/json"
	"slices"
	"strings"
)

// Field names a State field using its wire key.
type Field string

const (
	FieldSourceURL         Field = "source_url"
	FieldTargetLanguage    Field = "target_language"
	FieldOriginalVideoPath Field = "original_video_path"
	FieldOriginalAudioPath Field = "original_audio_path"
	FieldTranscription     Field = "transcription"
	FieldTranslatedText    Field = "translated_text"
	FieldDubbedAudioPath   Field = "dubbed_audio_path"
	FieldFinalVideoPath    Field = "final_video_path"
)

// Fields lists every data field in pipeline order.
var Fields = []Field{
	FieldSourceURL,
	FieldTargetLanguage,
	FieldOriginalVideoPath,
	FieldOriginalAudioPath,
	FieldTranscription,
	FieldTranslatedText,
	FieldDubbedAudioPath,
	FieldFinalVideoPath,
}

// State is the record threaded through the stages of one run.
type State struct {
	SourceURL         string `json:"source_url"`
	TargetLanguage    string `json:"target_language"`
	OriginalVideoPath string `json:"original_video_path"`
	OriginalAudioPath string `json:"original_audio_path"`
	Transcription     string `json:"transcription"`
	TranslatedText    string `json:"translated_text"`
	DubbedAudioPath   string `json:"dubbed_audio_path"`
	FinalVideoPath    string `json:"final_video_path"`
	Error             string `json:"-"`

	// RunID correlates log lines; stages never write it.
	RunID string `json:"run_id,omitempty"`
}

// NewState returns a fresh state carrying the two caller inputs.
func NewState(sourceURL, targetLanguage string) State {
	return State{
		SourceURL:      strings.TrimSpace(sourceURL),
		TargetLanguage: strings.TrimSpace(targetLanguage),
	}
}

// Failed reports whether an error has been recorded.
func (s State) Failed() bool {
	return s.Error != ""
}

// WithError returns a copy carrying msg as its error. The first error wins.
func (s State) WithError(msg string) State {
	if s.Failed() {
		return s
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = "unknown error"
	}
	s.Error = msg
	return s
}

// Get returns the value of field f, or "" for an unknown field.
func (s State) Get(f Field) string {
	switch f {
	case FieldSourceURL:
		return s.SourceURL
	case FieldTargetLanguage:
		return s.TargetLanguage
	case FieldOriginalVideoPath:
		return s.OriginalVideoPath
	case FieldOriginalAudioPath:
		return s.OriginalAudioPath
	case FieldTranscription:
		return s.Transcription
	case FieldTranslatedText:
		return s.TranslatedText
	case FieldDubbedAudioPath:
		return s.DubbedAudioPath
	case FieldFinalVideoPath:
		return s.FinalVideoPath
	default:
		return ""
	}
}

// Missing returns the names of the given fields that are blank.
func (s State) Missing(fields ...Field) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(s.Get(f)) == "" {
			missing = append(missing, string(f))
		}
	}
	return missing
}

// Populated returns the names of non-empty data fields in pipeline order.
func (s State) Populated() []string {
	var out []string
	for _, f := range Fields {
		if s.Get(f) != "" {
			out = append(out, string(f))
		}
	}
	return out
}

// MarshalJSON renders an empty error as null.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	var errValue *string
	if s.Failed() {
		msg := s.Error
		errValue = &msg
	}
	return json.Marshal(struct {
		plain
		Error *string `json:"error"`
	}{plain: plain(s), Error: errValue})
}

// writtenOutside lists fields that differ between before and after but are
// not in allowed.
func writtenOutside(before, after State, allowed []Field) []string {
	var out []string
	for _, f := range Fields {
		if before.Get(f) == after.Get(f) || slices.Contains(allowed, f) {
			continue
		}
		out = append(out, string(f))
	}
	return out
}

// rewritten lists fields that were set in before and differ in after, plus
// run metadata changes.
func rewritten(before, after State) []string {
	var out []string
	for _, f := range Fields {
		prev := before.Get(f)
		if prev != "" && after.Get(f) != prev {
			out = append(out, string(f))
		}
	}
	if before.RunID != after.RunID {
		out = append(out, "run_id")
	}
	return out
}
