package domain

// Language used for every synthesis request.
const SpeechLanguage = "en"

// SpeechArtifact is a synthesized audio file owned by the caller until it is
// handed to PlayAndDispose.
type SpeechArtifact struct {
	Path string
}

type PlaybackOutcome string

const (
	PlaybackPlayed  PlaybackOutcome = "played"
	PlaybackSkipped PlaybackOutcome = "skipped"
	PlaybackFailed  PlaybackOutcome = "failed"
)

type Availability struct {
	AudioOutput bool `json:"audio_output"`
	Microphone  bool `json:"microphone"`
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
