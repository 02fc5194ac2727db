package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/basexlabs/basex-oracle/analysis/completion"
	"github.com/basexlabs/basex-oracle/protocol"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// Completer answers a chat prompt.
type Completer interface {
	Complete(ctx context.Context, messages []completion.Message) (string, error)
}

// Service turns a video id into a "<metadata>|<score>" analysis payload.
type Service struct {
	lggr      logger.Logger
	videos    protocol.VideoSource
	completer Completer
}

var _ protocol.AnalysisAPI = (*Service)(nil)

func NewService(lggr logger.Logger, videos protocol.VideoSource, completer Completer) (*Service, error) {
	var errs []error
	appendIfNil := func(field any, fieldName string) {
		if field == nil {
			errs = append(errs, fmt.Errorf("%s is not set", fieldName))
		}
	}
	appendIfNil(lggr, "logger")
	appendIfNil(videos, "video source")
	appendIfNil(completer, "completer")
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Service{
		lggr:      logger.Named(lggr, "AnalysisService"),
		videos:    videos,
		completer: completer,
	}, nil
}

// Analyze fetches the video metadata, asks the model for keywords and a score and formats the answer.
func (s *Service) Analyze(ctx context.Context, videoID string) (string, error) {
	if !protocol.IsValidVideoID(videoID) {
		return "", fmt.Errorf("%w: invalid video id %q", protocol.ErrValidation, videoID)
	}

	video, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}

	answer, err := s.completer.Complete(ctx, BuildPrompt(video))
	if err != nil {
		return "", fmt.Errorf("failed to analyze video %s: %w", videoID, err)
	}

	result, err := protocol.ParseCompletionAnswer(answer)
	if err != nil {
		s.lggr.Warnw("Model answer could not be parsed", "videoID", videoID, "answer", answer, "error", err)
		return "", err
	}

	payload := result.String()
	s.lggr.Infow("Video analyzed", "videoID", videoID, "score", result.Score)
	return payload, nil
}

// RequestAnalysis implements protocol.AnalysisAPI.
func (s *Service) RequestAnalysis(ctx context.Context, videoID string) (string, error) {
	return s.Analyze(ctx, videoID)
}

// GetVideo returns the (cached) metadata of videoID.
func (s *Service) GetVideo(ctx context.Context, videoID string) (protocol.Video, error) {
	if !protocol.IsValidVideoID(videoID) {
		return protocol.Video{}, fmt.Errorf("%w: invalid video id %q", protocol.ErrValidation, videoID)
	}
	return s.videos.GetVideo(ctx, videoID)
}
