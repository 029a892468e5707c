package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"schedbot/config"
	"schedbot/services/dialogue"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	maxAudioFileSize = 5 * 1024 * 1024
	audioExtension   = ".wav"
)

// VoiceChatHandler transcribes an uploaded recording and feeds the
// transcript through the same conversation pipeline as typed text.
type VoiceChatHandler struct {
	Dialogue dialogue.DialogueService
	Logger   *zap.Logger
}

func NewVoiceChatHandler(svc dialogue.DialogueService, logger *zap.Logger) *VoiceChatHandler {
	return &VoiceChatHandler{Dialogue: svc, Logger: logger}
}

// isWave checks the RIFF/WAVE magic at the start of the file.
func isWave(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}

// transcodeAudio normalizes arbitrary WAV input to 16kHz mono LINEAR16,
// which is what the recognition config below declares.
func transcodeAudio(inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %w", err)
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

func (h *VoiceChatHandler) transcribe(c *gin.Context, audioData []byte, language string) (string, error) {
	ctx := c.Request.Context()

	var opts []option.ClientOption
	if config.AppConfig.GoogleServiceAccountFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.AppConfig.GoogleServiceAccountFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("speech client setup: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   16000,
			LanguageCode:      language,
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript.WriteString(result.Alternatives[0].Transcript)
		}
	}
	return strings.TrimSpace(transcript.String()), nil
}

// Handle accepts a multipart WAV upload, transcribes it, and runs the
// transcript as a normal chat turn.
func (h *VoiceChatHandler) Handle(c *gin.Context) {
	language := c.DefaultPostForm("language", "en-US")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required", "details": err.Error()})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != audioExtension {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid file type",
			"details": fmt.Sprintf("expected %s, got %s", audioExtension, ext),
		})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxAudioFileSize))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audio file"})
		return
	}
	if !isWave(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a valid WAV recording"})
		return
	}

	tempInput, err := os.CreateTemp("", "voice-*.wav")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create temp file"})
		return
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()

	if _, err := tempInput.Write(raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save audio file"})
		return
	}

	tempOutput, err := os.CreateTemp("", "voice-16k-*.wav")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create temp file"})
		return
	}
	defer os.Remove(tempOutput.Name())
	defer tempOutput.Close()

	if err := transcodeAudio(tempInput.Name(), tempOutput.Name()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio conversion failed", "details": err.Error()})
		return
	}

	audioData, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read converted audio"})
		return
	}

	transcript, err := h.transcribe(c, audioData, language)
	if err != nil {
		h.Logger.Error("transcription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transcription failed"})
		return
	}
	if transcript == "" {
		c.JSON(http.StatusOK, gin.H{"transcript": "", "response": "I couldn't hear anything in that recording. Could you try again?"})
		return
	}

	sessionID := resolveSessionID(c, c.PostForm("sessionId"))
	result, err := h.Dialogue.ProcessTurn(c.Request.Context(), sessionID, transcript)
	if err != nil {
		h.Logger.Error("voice chat turn failed", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":  sessionID,
		"transcript": transcript,
		"response":   result.Message,
		"timeSlots":  result.TimeSlots,
		"state":      result.State,
	})
}
