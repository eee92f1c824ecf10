package transcription

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kbukum/whisper-gateway/errors"
)

// Output is a rendered result. Exactly one of JSON or Text is set,
// selected by the requested format.
type Output struct {
	Format Format
	JSON   any
	Text   string
}

// ContentType is the MIME type the output should be served with.
func (o *Output) ContentType() string {
	if o.Format.IsText() {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// TextResponse is the body of a json response.
type TextResponse struct {
	Text string `json:"text"`
}

// SegmentResponse is one entry of the verbose_json segments array.
type SegmentResponse struct {
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
}

// VerboseResponse is the body of a verbose_json response. Words and
// Segments are nil, and omitted, unless they were requested; a requested
// but empty array is still encoded.
type VerboseResponse struct {
	Task     Task               `json:"task"`
	Language string             `json:"language"`
	Duration float64            `json:"duration"`
	Text     string             `json:"text"`
	Words    *[]Word            `json:"words,omitempty"`
	Segments *[]SegmentResponse `json:"segments,omitempty"`
}

// renderers maps each format to its rendering function.
var renderers = map[Format]func(Task, *Result, []Granularity) Output{
	FormatJSON:        renderJSON,
	FormatVerboseJSON: renderVerbose,
	FormatSRT:         renderSRT,
	FormatVTT:         renderVTT,
}

// Render renders a backend result. Segments are emitted in the order they
// appear in res; they are never re-sorted. Translations always carry the
// full segments array under verbose_json.
func Render(task Task, res *Result, format Format, granularities []Granularity) (*Output, error) {
	render, ok := renderers[format]
	if !ok {
		return nil, errors.InvalidInput("response_format", fmt.Sprintf("Invalid response format %s", format))
	}
	if task == TaskTranslate {
		granularities = DefaultGranularities
	}
	out := render(task, res, granularities)
	return &out, nil
}

// FormatRequest renders res using the format and granularities of req.
func FormatRequest(req Request, res *Result) (*Output, error) {
	return Render(req.Task(), res, req.Common().ResponseFormat, req.Granularities())
}

// JoinText concatenates segment texts with single spaces.
func JoinText(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}

func renderJSON(_ Task, res *Result, _ []Granularity) Output {
	return Output{Format: FormatJSON, JSON: TextResponse{Text: JoinText(res.Segments)}}
}

func renderVerbose(task Task, res *Result, granularities []Granularity) Output {
	body := VerboseResponse{
		Task:     task,
		Language: res.Metadata.Language,
		Duration: res.Metadata.Duration,
		Text:     JoinText(res.Segments),
	}

	if slices.Contains(granularities, GranularityWord) {
		words := []Word{}
		for _, s := range res.Segments {
			words = append(words, s.Words...)
		}
		body.Words = &words
	}
	if slices.Contains(granularities, GranularitySegment) {
		segments := make([]SegmentResponse, len(res.Segments))
		for i, s := range res.Segments {
			segments[i] = SegmentResponse{
				ID:               s.ID,
				Seek:             s.Seek,
				Start:            s.Start,
				End:              s.End,
				Text:             s.Text,
				Tokens:           s.Tokens,
				Temperature:      s.Temperature,
				AvgLogprob:       s.AvgLogprob,
				CompressionRatio: s.CompressionRatio,
				NoSpeechProb:     s.NoSpeechProb,
			}
		}
		body.Segments = &segments
	}
	return Output{Format: FormatVerboseJSON, JSON: body}
}

func renderSRT(_ Task, res *Result, _ []Granularity) Output {
	var b strings.Builder
	for i, s := range res.Segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, Timestamp(s.Start, ','), Timestamp(s.End, ','), strings.TrimSpace(s.Text))
	}
	return Output{Format: FormatSRT, Text: b.String()}
}

func renderVTT(_ Task, res *Result, _ []Granularity) Output {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range res.Segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			Timestamp(s.Start, '.'), Timestamp(s.End, '.'), strings.TrimSpace(s.Text))
	}
	return Output{Format: FormatVTT, Text: b.String()}
}

// Timestamp renders seconds as HH:MM:SS<sep>mmm. Milliseconds are the
// floor of the fractional second; hours are not capped at two digits.
func Timestamp(seconds float64, sep byte) string {
	hours := math.Floor(seconds / 3600)
	rem := seconds - hours*3600
	minutes := math.Floor(rem / 60)
	secs := rem - minutes*60
	whole := math.Floor(secs)
	millis := int(math.Floor((secs - whole) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", int(hours), int(minutes), int(whole), sep, millis)
}
