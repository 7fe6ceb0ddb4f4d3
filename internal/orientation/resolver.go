// Package orientation corrects the rotation of scanned statement pages before
// they are sent to the vision model. A primary detector proposes a discrete
// angle; when it cannot, the four right-angle rotations are scored by text
// recognition confidence and the best one wins.
package orientation

import (
	"context"
	"image"

	"github.com/rs/zerolog"
)

// Candidates are the rotation hypotheses considered, in tie-break order.
var Candidates = [4]int{0, 90, 180, 270}

// ConfidenceUnavailable is the sentinel score for a candidate that produced
// no recognizable tokens or failed outright. It is the lowest possible score,
// so such a candidate is never preferred over a working one.
const ConfidenceUnavailable = -1.0

// Detector proposes an upright-correction angle for a page image. It returns
// one of 0, 90, 180 or 270; any other value or an error means the detector
// could not decide.
type Detector interface {
	DetectAngle(ctx context.Context, img image.Image) (int, error)
}

// Recognizer scores how well text is recognized in an image: the mean
// confidence over recognized tokens, conceptually 0-100, or
// ConfidenceUnavailable when nothing was recognized.
type Recognizer interface {
	MeanConfidence(ctx context.Context, img image.Image) (float64, error)
}

// Resolver determines and applies the rotation needed to make a page upright.
// It never fails: when neither the detector nor the confidence fallback can
// decide, the image comes back untouched with angle 0.
type Resolver struct {
	detector   Detector
	recognizer Recognizer
	log        zerolog.Logger
}

func NewResolver(detector Detector, recognizer Recognizer, log zerolog.Logger) *Resolver {
	return &Resolver{detector: detector, recognizer: recognizer, log: log}
}

// Resolve returns the upright image and the rotation angle that was applied
// (0 when the page was already upright or no decision could be made).
func (r *Resolver) Resolve(ctx context.Context, img image.Image) (image.Image, int) {
	angle, ok := r.primaryAngle(ctx, img)
	if !ok {
		angle = r.bestCandidate(ctx, img)
	}

	if angle != 0 {
		r.log.Info().Int("angle", angle).Msg("Rotating page to upright orientation")
		return Rotate(img, angle), angle
	}
	return img, 0
}

// primaryAngle runs the detector, treating errors, panics and out-of-range
// values as "unavailable".
func (r *Resolver) primaryAngle(ctx context.Context, img image.Image) (angle int, ok bool) {
	if r.detector == nil {
		return 0, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Interface("panic", rec).Msg("Orientation detector panicked")
			angle, ok = 0, false
		}
	}()

	a, err := r.detector.DetectAngle(ctx, img)
	if err != nil {
		r.log.Debug().Err(err).Msg("Primary orientation detection unavailable")
		return 0, false
	}
	switch a {
	case 0, 90, 180, 270:
		return a, true
	}
	return 0, false
}

// bestCandidate rotates the image through every candidate angle and keeps the
// one with the highest mean recognition confidence. Ties keep the earliest
// candidate, so a completely blank page resolves to 0.
func (r *Resolver) bestCandidate(ctx context.Context, img image.Image) int {
	best := Candidates[0]
	bestScore := r.scoreCandidate(ctx, img, Candidates[0])
	for _, angle := range Candidates[1:] {
		if score := r.scoreCandidate(ctx, img, angle); score > bestScore {
			best, bestScore = angle, score
		}
	}
	r.log.Debug().Int("angle", best).Float64("score", bestScore).Msg("Selected orientation candidate")
	return best
}

// scoreCandidate scores one rotation hypothesis. Any failure, including a
// panic in the recognizer, scores ConfidenceUnavailable so the candidate is
// never selected over a working one.
func (r *Resolver) scoreCandidate(ctx context.Context, img image.Image, angle int) (score float64) {
	if r.recognizer == nil {
		return ConfidenceUnavailable
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn().Int("angle", angle).Interface("panic", rec).Msg("Recognizer panicked while scoring candidate")
			score = ConfidenceUnavailable
		}
	}()

	conf, err := r.recognizer.MeanConfidence(ctx, Rotate(img, angle))
	if err != nil {
		return ConfidenceUnavailable
	}
	return conf
}
