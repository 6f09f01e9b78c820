package session

import (
	"context"
	"time"

	"eduvid/internal/catalog"
	"eduvid/internal/content"
	"eduvid/internal/logging"
	"eduvid/internal/recognition"
)

// onResult applies one tick's recognition output. Results arrive in tick
// order from the sampler; anything delivered after the session left the
// detecting stage is ignored.
func (s *Session) onResult(res recognition.TickResult) {
	s.mu.Lock()
	if s.stage != StageDetecting {
		s.mu.Unlock()
		return
	}

	results := make([]recognition.Result, 0, len(res.Results))
	for _, r := range res.Results {
		r.Label = recognition.NormalizeLabel(r.Label)
		if r.Label != "" {
			results = append(results, r)
		}
	}
	s.results = results

	label := ""
	var confidence float64
	if top, ok := recognition.TopResult(results); ok {
		label = top.Label
		confidence = top.Confidence
	}
	obs := s.filter.Observe(label)
	s.signalLost = obs.SignalLost
	if !obs.Changed {
		s.mu.Unlock()
		return
	}

	previous := s.subject
	s.subject = obs.Confirmed
	s.confidence = confidence
	s.features = nil
	s.featuresLoading = true
	s.featuresHidden = false
	s.quiz = nil
	s.debouncer.Trigger(obs.Confirmed, s.fetchFeatures)
	s.mu.Unlock()

	s.logger.Info("subject confirmed",
		logging.String(logging.FieldEventType, "subject_confirmed"),
		logging.String(logging.FieldSubject, obs.Confirmed),
		logging.String("previous", previous),
		logging.Float64("confidence", confidence),
		logging.Uint64("tick", res.Tick),
	)
	s.publish(Event{Type: EventSubject, Stage: StageDetecting, Subject: obs.Confirmed})
	s.recordSighting(obs.Confirmed, confidence)
}

// onTickError logs inference failures, sampled so a dead model server does
// not flood the log.
func (s *Session) onTickError(tick uint64, err error) {
	if ok, suppressed := s.errLog.ShouldLog(err.Error()); ok {
		logging.WarnWithContext(s.logger, "frame recognition failed", "recognition_tick_failed",
			logging.Error(err),
			logging.Uint64("tick", tick),
			logging.Int("suppressed", suppressed),
			logging.String(logging.FieldErrorHint, "check the classifier services"),
			logging.String(logging.FieldImpact, "frame skipped"),
		)
		return
	}
	s.logger.Debug("frame recognition failed", logging.Error(err), logging.Uint64("tick", tick))
}

// fetchFeatures runs when the debounce window for label elapses.
func (s *Session) fetchFeatures(label string) {
	s.mu.Lock()
	if s.stage != StageDetecting || s.subject != label || s.opts.Content == nil {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.fetches.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.fetches.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, s.opts.ContentTimeout)
		defer cancel()

		set, err := s.opts.Content.GetFeatures(fetchCtx, label)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.WarnWithContext(s.logger, "feature lookup failed; showing default card", "content_fetch_failed",
				logging.Error(err),
				logging.String(logging.FieldSubject, label),
				logging.String(logging.FieldErrorHint, "check that the content API is reachable"),
				logging.String(logging.FieldImpact, "placeholder card shown"),
			)
			set = content.DefaultFeatureSet(label)
		}

		s.mu.Lock()
		if s.stage != StageDetecting || s.subject != label {
			s.mu.Unlock()
			s.logger.Debug("discarding stale feature card", logging.String(logging.FieldSubject, label))
			return
		}
		s.features = &set
		s.featuresLoading = false
		s.mu.Unlock()

		features := set
		s.publish(Event{Type: EventFeatures, Stage: StageDetecting, Subject: label, Features: &features})
	}()
}

func (s *Session) recordSighting(label string, confidence float64) {
	if s.opts.Sightings == nil {
		return
	}
	s.mu.Lock()
	if s.stage != StageDetecting {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.fetches.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.fetches.Done()
		recordCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := s.opts.Sightings.RecordSighting(recordCtx, catalog.Sighting{
			SessionID:   s.id,
			Label:       label,
			Confidence:  confidence,
			ConfirmedAt: time.Now(),
		}); err != nil {
			s.logger.Debug("sighting not recorded", logging.Error(err), logging.String(logging.FieldSubject, label))
		}
	}()
}
