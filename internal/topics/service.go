// Package topics sequences a full topic run: guard, already-processed
// check, source loading, extraction, persistence, quiz generation, quiz
// persistence. It is the only component that writes to storage.
package topics

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arjun/factdeck/internal/extract"
	"github.com/arjun/factdeck/internal/facts"
	"github.com/arjun/factdeck/internal/progress"
	"github.com/arjun/factdeck/internal/provision"
	"github.com/arjun/factdeck/internal/quiz"
	"github.com/arjun/factdeck/internal/store"
)

// Service is the topic processing orchestrator. Construct one per process
// and share it by reference; the in-flight guard and the provisioner's
// single-flight state live on it, not in package globals.
type Service struct {
	provisioner *provision.Provisioner
	extractor   *extract.Extractor
	quizzes     *quiz.Generator
	repo        store.FactRepo
	source      Source
	bus         *progress.Bus
	log         *zap.SugaredLogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Options wires a Service.
type Options struct {
	Provisioner *provision.Provisioner
	Extractor   *extract.Extractor
	Quizzes     *quiz.Generator
	Repo        store.FactRepo
	Source      Source
	Bus         *progress.Bus
	Logger      *zap.SugaredLogger
}

// NewService creates the orchestrator.
func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		provisioner: opts.Provisioner,
		extractor:   opts.Extractor,
		quizzes:     opts.Quizzes,
		repo:        opts.Repo,
		source:      opts.Source,
		bus:         opts.Bus,
		log:         log,
		inFlight:    make(map[string]struct{}),
	}
}

// Initialize resolves the completion session. Idempotent; see
// provision.Provisioner.Initialize.
func (s *Service) Initialize(ctx context.Context) error {
	return s.provisioner.Initialize(ctx)
}

// SubscribeProgress registers a listener for pipeline events.
func (s *Service) SubscribeProgress(fn func(progress.Event)) (unsubscribe func()) {
	return s.bus.Subscribe(fn)
}

// ProcessTopicFile runs the full pipeline for one topic. It is an
// idempotent no-op when the topic is already being processed or already
// has persisted facts. Storage errors are fatal for the run; already
// persisted facts stay persisted. The guard entry is released on every
// exit path.
func (s *Service) ProcessTopicFile(ctx context.Context, topic string) error {
	if !validTopic(topic) {
		return errors.New("empty topic")
	}

	if !s.enter(topic) {
		s.log.Debugw("topic already in flight, skipping", "topic", topic)
		return nil
	}
	defer s.leave(topic)

	n, err := s.repo.CountByTopic(ctx, topic, false)
	if err != nil {
		return fmt.Errorf("check topic %q: %w", topic, err)
	}
	if n > 0 {
		s.log.Debugw("topic already processed, skipping", "topic", topic, "facts", n)
		return nil
	}

	if err := s.ensureInitialized(ctx); err != nil {
		return err
	}

	text, err := s.source.Load(ctx, topic)
	if err != nil {
		return err
	}

	extracted, err := s.extractor.Extract(ctx, text, topic)
	if err != nil {
		return fmt.Errorf("extract topic %q: %w", topic, err)
	}

	saved, err := s.saveFacts(ctx, topic, extracted)
	if err != nil {
		return err
	}

	quizzes := s.quizzes.Generate(ctx, topic, saved)
	if err := s.saveQuizzes(ctx, topic, quizzes); err != nil {
		return err
	}

	s.log.Infow("topic processed", "topic", topic, "facts", len(saved), "quizzes", len(quizzes))
	return nil
}

// ExtractFacts runs the extraction pipeline alone, for ad-hoc text such as
// user-uploaded documents. Nothing is persisted.
func (s *Service) ExtractFacts(ctx context.Context, text, topic string) ([]facts.Fact, error) {
	if err := s.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	return s.extractor.Extract(ctx, text, topic)
}

// ensureInitialized lazily provisions the completion session. A
// provisioning failure is logged and the run proceeds in degraded mode;
// callers that want to surface it call Initialize themselves first.
func (s *Service) ensureInitialized(ctx context.Context) error {
	err := s.provisioner.Initialize(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, provision.ErrModelInitialization) {
		s.log.Warnw("no usable model, proceeding in degraded mode", "err", err)
		return nil
	}
	return err
}

func (s *Service) enter(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[topic]; busy {
		return false
	}
	s.inFlight[topic] = struct{}{}
	return true
}

func (s *Service) leave(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, topic)
}

// saveFacts persists extracted facts sequentially, in order, emitting
// storage-save-progress after each insert and storage-complete at the end.
// The returned slice carries the storage-assigned IDs.
func (s *Service) saveFacts(ctx context.Context, topic string, extracted []facts.Fact) ([]facts.Fact, error) {
	saved := make([]facts.Fact, 0, len(extracted))
	for i, f := range extracted {
		rec, err := store.NewFactRecord(f)
		if err != nil {
			return saved, err
		}
		id, err := s.repo.Insert(ctx, rec)
		if err != nil {
			return saved, fmt.Errorf("save fact %d for topic %q: %w", i, topic, err)
		}
		f.ID = id
		f.CreatedAt = rec.CreatedAt
		saved = append(saved, f)

		s.bus.Publish(progress.StorageSaveProgress{
			Topic: topic, Saved: len(saved), Total: len(extracted),
		})
	}

	s.bus.Publish(progress.StorageComplete{Topic: topic, Total: len(saved)})
	return saved, nil
}

// saveQuizzes persists quiz cards sequentially, in selection order. The
// quiz stage already emitted quiz-complete; persistence only adds
// storage-save-progress per insert.
func (s *Service) saveQuizzes(ctx context.Context, topic string, quizzes []facts.QuizQuestion) error {
	for i := range quizzes {
		q := quizzes[i]
		rec, err := store.NewFactRecord(facts.Fact{
			Content: q.Question,
			Topic:   topic,
			Source:  facts.SourcePrimary,
			IsQuiz:  true,
			Quiz:    &q,
		})
		if err != nil {
			return err
		}
		if _, err := s.repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("save quiz %d for topic %q: %w", i, topic, err)
		}

		s.bus.Publish(progress.StorageSaveProgress{
			Topic: topic, Saved: i + 1, Total: len(quizzes),
		})
	}
	return nil
}
