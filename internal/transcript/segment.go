package transcript

import (
	"strings"

	"github.com/fmuoria/interview-analyzer/internal/models"
)

// Segment splits a raw transcript into per-speaker utterances.
// A line is "Speaker: utterance" when it contains a colon; the text before the
// first colon is taken as the speaker without any validation, so "12:30 started"
// lands under speaker "12". Lines without a colon go to models.UnknownSpeaker.
func Segment(raw string) *models.SpeakerTranscript {
	st := models.NewSpeakerTranscript()

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, utterance, found := strings.Cut(line, ":")
		if !found {
			st.Add(models.UnknownSpeaker, line)
			continue
		}

		st.Add(strings.TrimSpace(speaker), strings.TrimSpace(utterance))
	}

	return st
}
