package transcription

// Task selects the decoding task a backend runs.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// Format is a response format accepted by the audio endpoints.
type Format string

const (
	FormatJSON        Format = "json"
	FormatVerboseJSON Format = "verbose_json"
	FormatSRT         Format = "srt"
	FormatVTT         Format = "vtt"
)

// Granularity is a timestamp level that can be requested for transcriptions.
type Granularity string

const (
	GranularitySegment Granularity = "segment"
	GranularityWord    Granularity = "word"
)

// DefaultGranularities applies when a transcription request names none.
var DefaultGranularities = []Granularity{GranularitySegment}

// supportedFormats lists, per task, the formats a backend result can be
// rendered into.
var supportedFormats = map[Task]map[Format]bool{
	TaskTranscribe: {FormatJSON: true, FormatVerboseJSON: true, FormatSRT: true, FormatVTT: true},
	TaskTranslate:  {FormatJSON: true, FormatVerboseJSON: true, FormatSRT: true, FormatVTT: true},
}

// Supports reports whether results of task can be rendered as f.
func (t Task) Supports(f Format) bool {
	return supportedFormats[t][f]
}

// IsText reports whether f renders to a plain-text body rather than JSON.
func (f Format) IsText() bool {
	return f == FormatSRT || f == FormatVTT
}

// Word is a single word with its timing, present only when word
// timestamps were requested from the backend.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one recognized span of speech as returned by a backend.
// Words is nil when the backend produced no word-level data.
type Segment struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Words            []Word  `json:"words,omitempty"`
}

// DecodingOptions are the options a backend ran with.
type DecodingOptions struct {
	Task           Task    `json:"task"`
	Language       *string `json:"language,omitempty"`
	Prompt         *string `json:"initial_prompt,omitempty"`
	Temperature    float64 `json:"temperature"`
	WordTimestamps bool    `json:"word_timestamps"`
}

// RunMetadata describes a completed backend run.
type RunMetadata struct {
	Language string          `json:"language"`
	Duration float64         `json:"duration"`
	Options  DecodingOptions `json:"transcription_options"`
}

// Result is the raw output of a backend call: segments in the order the
// backend produced them plus run metadata.
type Result struct {
	Segments []Segment   `json:"segments"`
	Metadata RunMetadata `json:"info"`
}
