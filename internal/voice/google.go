package voice

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/akashs101199/gcp-banking-personal-assistant/internal/config"
)

// GoogleTranscriber recognizes browser-captured WebM/Opus audio via the
// Cloud Speech-to-Text API.
type GoogleTranscriber struct {
	client *speech.Client
	cfg    config.VoiceConfig
}

func NewGoogleTranscriber(ctx context.Context, cfg config.VoiceConfig) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("voice.NewGoogleTranscriber: %w", err)
	}
	return &GoogleTranscriber{client: client, cfg: cfg}, nil
}

func (t *GoogleTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            int32(t.cfg.SampleRate),
			LanguageCode:               t.cfg.LanguageCode,
			Model:                      "latest_long",
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("voice.GoogleTranscriber.Transcribe: %w", err)
	}

	var sb strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(result.Alternatives[0].Transcript)
	}

	return strings.TrimSpace(sb.String()), nil
}

func (t *GoogleTranscriber) Close() error {
	return t.client.Close()
}

// GoogleSynthesizer renders utterances as MP3 via the Cloud Text-to-Speech
// API.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	cfg    config.VoiceConfig
}

func NewGoogleSynthesizer(ctx context.Context, cfg config.VoiceConfig) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("voice.NewGoogleSynthesizer: %w", err)
	}
	return &GoogleSynthesizer{client: client, cfg: cfg}, nil
}

func (s *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.cfg.LanguageCode,
			Name:         s.cfg.VoiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("voice.GoogleSynthesizer.Synthesize: %w", err)
	}

	return resp.AudioContent, nil
}

func (s *GoogleSynthesizer) Close() error {
	return s.client.Close()
}
