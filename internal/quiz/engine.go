// Package quiz implements the lesson state machine. A conversation is either
// idle or awaiting the answer to one question; the pending question lives in a
// session.Store keyed by the transport identity.
package quiz

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/session"
)

const (
	// DefaultOptionCount is the number of answer options including the correct
	// one. It is also the upper bound: a question never offers more.
	DefaultOptionCount = 4

	// MaxDeletionCandidates caps the deletion menu.
	MaxDeletionCandidates = 10
)

// WordStore draws distractors and stores personal words.
type WordStore interface {
	SampleDistractors(ctx context.Context, excludingWordID int64, count int) ([]string, error)
	AddPersonalWord(ctx context.Context, ownerID int64, english, native string) (int64, error)
}

// UserRegistry maps transport identities to users.
type UserRegistry interface {
	Provision(ctx context.Context, externalID, displayName string) (int64, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*db.User, error)
}

// EnrollmentLedger tracks which words are in a user's lesson set.
type EnrollmentLedger interface {
	RandomActiveWord(ctx context.Context, userID int64) (*db.ActiveWord, error)
	ActiveWords(ctx context.Context, userID int64) ([]db.ActiveWord, error)
	Enroll(ctx context.Context, userID, wordID int64) error
	Deactivate(ctx context.Context, userID, wordID int64) (bool, error)
	RecordResult(ctx context.Context, userID, wordID int64, correct bool) error
}

// Store is everything the engine needs from persistence. *db.Database satisfies it.
type Store interface {
	WordStore
	UserRegistry
	EnrollmentLedger
}

// Config controls lesson pacing and the size of the answer set.
type Config struct {
	CorrectDelay time.Duration
	WrongDelay   time.Duration
	OptionCount  int
}

// Engine handles inbound events and emits effects through a Gateway.
// It is safe for concurrent use; events of one conversation are serialized.
type Engine struct {
	store    Store
	sessions session.Store
	cfg      Config
	logger   *zap.Logger
	locks    *conversationLocks
	shuffle  func([]string)
}

// NewEngine creates an engine. OptionCount is clamped to [2, DefaultOptionCount];
// zero or less selects the default.
func NewEngine(store Store, sessions session.Store, cfg Config, logger *zap.Logger) *Engine {
	switch {
	case cfg.OptionCount <= 0, cfg.OptionCount > DefaultOptionCount:
		cfg.OptionCount = DefaultOptionCount
	case cfg.OptionCount == 1:
		cfg.OptionCount = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
		locks:    newConversationLocks(),
		shuffle:  shuffleOptions,
	}
}

// Dispatch handles one event. User-facing failures are delivered as effects;
// the returned error is only set when the gateway fails, the context ends or
// the event carries no identity.
func (e *Engine) Dispatch(ctx context.Context, ev Event, gw Gateway) error {
	externalID := strings.TrimSpace(ev.externalID())
	if externalID == "" {
		return ErrNoIdentity
	}

	release, err := e.locks.acquire(ctx, externalID)
	if err != nil {
		return err
	}
	defer release()

	c := &conversation{engine: e, gw: gw, externalID: externalID}

	userID, err := e.resolveUser(ctx, ev)
	if err != nil {
		c.logger().Error("failed to resolve user", zap.Error(err))
		return c.send(ctx, Failure{Reason: reasonStorage})
	}
	c.userID = userID

	switch ev := ev.(type) {
	case AskRequested:
		return c.ask(ctx)
	case AnswerChosen:
		return c.answer(ctx, ev.Answer)
	}

	// Any other intent moves the conversation away from the lesson.
	if err := e.sessions.Clear(ctx, externalID); err != nil {
		c.logger().Warn("failed to discard pending question", zap.Error(err))
	}

	switch ev := ev.(type) {
	case UserContacted:
		return c.send(ctx, Welcome{DisplayName: strings.TrimSpace(ev.DisplayName)})
	case AddWordRequested:
		return c.addWord(ctx, ev.English, ev.Native)
	case RemoveWordRequested:
		return c.deletionMenu(ctx)
	case WordDeletionChosen:
		return c.deleteWord(ctx, ev.WordID)
	case ListRequested:
		return c.listWords(ctx)
	}
	return nil
}

// resolveUser provisions on first contact of any kind. UserContacted always
// provisions, which refreshes the display name and fills missing enrollments.
func (e *Engine) resolveUser(ctx context.Context, ev Event) (int64, error) {
	externalID := strings.TrimSpace(ev.externalID())

	if contacted, ok := ev.(UserContacted); ok {
		return e.store.Provision(ctx, externalID, contacted.DisplayName)
	}

	user, err := e.store.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return 0, err
	}
	return e.store.Provision(ctx, externalID, "")
}

// conversation is the state of one Dispatch call.
type conversation struct {
	engine     *Engine
	gw         Gateway
	externalID string
	userID     int64
}

func (c *conversation) logger() *zap.Logger {
	return c.engine.logger.With(zap.String("external_id", c.externalID), zap.Int64("user_id", c.userID))
}

func (c *conversation) send(ctx context.Context, eff Effect) error {
	return c.gw.Send(ctx, c.externalID, eff)
}

func (c *conversation) fail(ctx context.Context, msg string, err error) error {
	c.logger().Error(msg, zap.Error(err))
	return c.send(ctx, Failure{Reason: reasonStorage})
}

// ask picks a random active word and asks it.
func (c *conversation) ask(ctx context.Context) error {
	word, err := c.engine.store.RandomActiveWord(ctx, c.userID)
	if errors.Is(err, db.ErrNotFound) {
		c.clearPending(ctx)
		return c.send(ctx, EmptyLessonNotice{})
	}
	if err != nil {
		c.clearPending(ctx)
		return c.fail(ctx, "failed to pick a word", err)
	}
	return c.askWord(ctx, *word)
}

// askWord stores word as the pending question and sends it with freshly
// sampled distractors.
func (c *conversation) askWord(ctx context.Context, word db.ActiveWord) error {
	options, err := c.engine.buildOptions(ctx, word)
	if err != nil {
		c.clearPending(ctx)
		return c.fail(ctx, "failed to sample distractors", err)
	}

	pending := session.Pending{
		WordID:  word.WordID,
		English: word.English,
		Native:  word.Native,
		Options: options,
	}
	if err := c.engine.sessions.Put(ctx, c.externalID, pending); err != nil {
		c.clearPending(ctx)
		return c.fail(ctx, "failed to store pending question", err)
	}

	if err := c.send(ctx, Question{Prompt: word.Native, Options: options}); err != nil {
		c.clearPending(ctx)
		return err
	}
	return nil
}

// answer checks the pending question, reports the result and asks again:
// a new word after a correct answer, the same word after a wrong one.
func (c *conversation) answer(ctx context.Context, chosen string) error {
	pending, err := c.engine.sessions.Get(ctx, c.externalID)
	if errors.Is(err, session.ErrNoPending) {
		c.logger().Info("stale answer", zap.String("answer", chosen), zap.Error(ErrProtocol))
		return c.send(ctx, RestartNotice{})
	}
	if err != nil {
		return c.fail(ctx, "failed to load pending question", err)
	}

	// Anything but the exact english text is wrong, including text that was
	// never among the offered options.
	correct := chosen == pending.English
	c.recordResult(ctx, pending.WordID, correct)

	result := Result{
		Correct:       correct,
		Prompt:        pending.Native,
		CorrectAnswer: pending.English,
		UserAnswer:    chosen,
	}
	if err := c.send(ctx, result); err != nil {
		c.clearPending(ctx)
		return err
	}

	delay := c.engine.cfg.WrongDelay
	if correct {
		delay = c.engine.cfg.CorrectDelay
	}
	if err := pause(ctx, delay); err != nil {
		c.clearPending(ctx)
		return err
	}

	if correct {
		return c.ask(ctx)
	}
	return c.askWord(ctx, db.ActiveWord{
		WordID:  pending.WordID,
		English: pending.English,
		Native:  pending.Native,
	})
}

// recordResult never fails the lesson; a lost counter is only logged.
func (c *conversation) recordResult(ctx context.Context, wordID int64, correct bool) {
	if err := c.engine.store.RecordResult(ctx, c.userID, wordID, correct); err != nil {
		c.logger().Warn("failed to record result",
			zap.Int64("word_id", wordID),
			zap.Bool("correct", correct),
			zap.Error(err),
		)
	}
}

func (c *conversation) clearPending(ctx context.Context) {
	if err := c.engine.sessions.Clear(context.WithoutCancel(ctx), c.externalID); err != nil {
		c.logger().Warn("failed to clear pending question", zap.Error(err))
	}
}

func (c *conversation) addWord(ctx context.Context, english, native string) error {
	english = strings.TrimSpace(english)
	native = strings.TrimSpace(native)
	if english == "" || native == "" {
		c.logger().Debug("rejected word pair", zap.Error(ErrValidation))
		return c.send(ctx, AddFailure{Reason: reasonInvalidPair, Invalid: true})
	}

	wordID, err := c.engine.store.AddPersonalWord(ctx, c.userID, english, native)
	if errors.Is(err, db.ErrEmptyText) {
		return c.send(ctx, AddFailure{Reason: reasonInvalidPair, Invalid: true})
	}
	if err != nil {
		c.logger().Error("failed to add word", zap.Error(err))
		return c.send(ctx, AddFailure{Reason: reasonAddFailed})
	}

	if err := c.engine.store.Enroll(ctx, c.userID, wordID); err != nil {
		c.logger().Error("failed to enroll added word", zap.Int64("word_id", wordID), zap.Error(err))
		return c.send(ctx, AddFailure{Reason: reasonAddFailed})
	}

	return c.send(ctx, AddConfirmation{Pair: db.Pair{
		English: db.NormalizeText(english),
		Native:  db.NormalizeText(native),
	}})
}

func (c *conversation) deletionMenu(ctx context.Context) error {
	words, err := c.engine.store.ActiveWords(ctx, c.userID)
	if err != nil {
		return c.fail(ctx, "failed to list words", err)
	}
	if len(words) > MaxDeletionCandidates {
		words = words[:MaxDeletionCandidates]
	}
	return c.send(ctx, DeletionMenu{Candidates: words})
}

func (c *conversation) deleteWord(ctx context.Context, wordID int64) error {
	removed, err := c.engine.store.Deactivate(ctx, c.userID, wordID)
	if err != nil {
		return c.fail(ctx, "failed to remove word", err)
	}
	return c.send(ctx, DeletionResult{WordID: wordID, Removed: removed})
}

func (c *conversation) listWords(ctx context.Context) error {
	words, err := c.engine.store.ActiveWords(ctx, c.userID)
	if err != nil {
		return c.fail(ctx, "failed to list words", err)
	}
	return c.send(ctx, WordList{Words: words})
}

// buildOptions returns the correct english text and up to OptionCount-1
// distractors, with no two options equal ignoring case.
// One spare distractor is sampled so a collision does not shrink the set.
func (e *Engine) buildOptions(ctx context.Context, word db.ActiveWord) ([]string, error) {
	distractors, err := e.store.SampleDistractors(ctx, word.WordID, e.cfg.OptionCount)
	if err != nil {
		return nil, err
	}

	options := make([]string, 0, e.cfg.OptionCount)
	options = append(options, word.English)
	for _, d := range distractors {
		if len(options) == e.cfg.OptionCount {
			break
		}
		if containsFold(options, d) {
			continue
		}
		options = append(options, d)
	}

	e.shuffle(options)
	return options, nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

func shuffleOptions(options []string) {
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// pause waits d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// conversationLocks serializes events per external id. Entries are kept for
// the life of the process, like the users they belong to.
type conversationLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{slots: make(map[string]chan struct{})}
}

func (l *conversationLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
