package audio

import (
	"strconv"
	"strings"

	"dubsync/internal/media/ffprobe"
)

// Selection identifies the chosen stream. Ordinal is its position among the
// audio streams, as used by an ffmpeg "0:a:N" map; -1 means no audio stream.
type Selection struct {
	Stream  ffprobe.Stream
	Ordinal int
	// Candidates counts the audio streams that were considered.
	Candidates int
	Reason     string
}

// Found reports whether an audio stream was selected.
func (s Selection) Found() bool {
	return s.Ordinal >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// SelectSpeech returns the audio stream best suited for transcription.
func SelectSpeech(streams []ffprobe.Stream) Selection {
	candidates := buildCandidates(streams)
	if len(candidates) == 0 {
		return Selection{Ordinal: -1, Reason: "no audio streams"}
	}
	if len(candidates) == 1 {
		return Selection{Stream: candidates[0].stream, Ordinal: 0, Candidates: 1, Reason: "only audio stream"}
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if cand.score() > best.score() {
			best = cand
		}
	}
	return Selection{
		Stream:     best.stream,
		Ordinal:    best.ordinal,
		Candidates: len(candidates),
		Reason:     best.reason(),
	}
}

// candidate captures the derived metadata used for ranking.
type candidate struct {
	stream         ffprobe.Stream
	ordinal        int
	title          string
	channels       int
	defaultFlagged bool
	secondary      bool
}

func (c candidate) score() float64 {
	score := 0.0
	if !c.secondary {
		score += 1000
	}
	if c.defaultFlagged {
		score += 100
	}
	// Speech is intelligible in stereo; more channels only break ties.
	score += float64(min(c.channels, 8))
	return score - float64(c.ordinal)*0.01
}

func (c candidate) reason() string {
	switch {
	case c.defaultFlagged && !c.secondary:
		return "default audio stream"
	case !c.secondary:
		return "first main audio stream with the most channels"
	default:
		return "only secondary audio streams present"
	}
}

func buildCandidates(streams []ffprobe.Stream) []candidate {
	result := make([]candidate, 0, len(streams))
	ordinal := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		cand := candidate{
			stream:         stream,
			ordinal:        ordinal,
			title:          normalizeTitle(stream.Tags),
			channels:       channelCount(stream),
			defaultFlagged: stream.Disposition["default"] == 1,
		}
		cand.secondary = isSecondary(stream, cand.title)
		result = append(result, cand)
		ordinal++
	}
	return result
}

var secondaryKeywords = []string{
	"commentary",
	"audio description",
	"descriptive",
	"described",
	"director",
}

func isSecondary(stream ffprobe.Stream, title string) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	for _, keyword := range secondaryKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func normalizeTitle(tags map[string]string) string {
	for _, key := range []string{"title", "TITLE", "handler_name", "HANDLER_NAME"} {
		if value, ok := tags[key]; ok {
			return strings.ToLower(strings.TrimSpace(value))
		}
	}
	return ""
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	}
	total := 0
	for _, part := range strings.Split(layout, ".") {
		part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
		if n, err := strconv.Atoi(part); err == nil {
			total += n
		}
	}
	return total
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := stream.Language(); lang != "" {
		parts = append(parts, lang)
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
