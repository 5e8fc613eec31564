// Package requirements walks a user through an infrastructure plan's
// clarification questions one at a time and persists the position per
// session so a later request can resume it.
package requirements

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/infrachat/internal/infra"
)

// Collector loads, transitions and persists requirements sessions.
type Collector struct {
	store *Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewCollector creates a collector backed by store.
func NewCollector(store *Store, log logrus.FieldLogger) *Collector {
	return &Collector{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Start begins a new collection for plan, replacing any earlier one.
func (c *Collector) Start(ctx context.Context, sessionID string, plan *infra.Plan) (Result, error) {
	sess := NewSession(sessionID, plan)
	res := sess.Start(c.now())
	if err := c.store.Save(ctx, sess); err != nil {
		return Result{}, err
	}
	c.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"pattern":    plan.Pattern,
		"questions":  len(plan.Questions),
	}).Debug("requirements collection started")
	return res, nil
}

// Answer records the answer to question n of the session's collection.
func (c *Collector) Answer(ctx context.Context, sessionID string, n int, text string) (Result, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if sess == nil {
		return noPlanResult(), nil
	}

	res := sess.ProcessResponse(n, text, c.now())
	if !res.Success {
		return res, nil
	}
	if err := c.store.Save(ctx, sess); err != nil {
		return Result{}, err
	}
	return res, nil
}

// AnswerCurrent records text as the answer to the question under the cursor.
func (c *Collector) AnswerCurrent(ctx context.Context, sessionID, text string) (Result, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if sess == nil {
		return noPlanResult(), nil
	}
	_, n := sess.CurrentQuestion()
	if n == 0 {
		return c.ProceedWithDefaults(ctx, sessionID)
	}
	return c.Answer(ctx, sessionID, n, text)
}

// ProceedWithDefaults completes the session's collection with defaults.
func (c *Collector) ProceedWithDefaults(ctx context.Context, sessionID string) (Result, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if sess == nil {
		return noPlanResult(), nil
	}

	res := sess.ProceedWithDefaults(c.now())
	if err := c.store.Save(ctx, sess); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Session returns the stored session, or nil when none exists.
func (c *Collector) Session(ctx context.Context, sessionID string) (*Session, error) {
	return c.store.Load(ctx, sessionID)
}

// Active returns the session when a collection is in progress.
func (c *Collector) Active(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil || sess == nil || sess.Completed || sess.Plan == nil {
		return nil, err
	}
	return sess, nil
}

// ApplyPlanUpdate persists a mutated plan and reconciles answers and cursor.
func (c *Collector) ApplyPlanUpdate(ctx context.Context, sess *Session) error {
	sess.ApplyPlanUpdate(c.now())
	return c.store.Save(ctx, sess)
}

// Status summarizes the session's collection.
func (c *Collector) Status(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := c.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		empty := NewSession(sessionID, nil)
		return &Status{SessionID: sessionID, Answers: map[string]string{}, Validation: empty.Validate()}, nil
	}

	q, n := sess.CurrentQuestion()
	return &Status{
		SessionID:            sessionID,
		Active:               !sess.Completed && sess.Plan != nil,
		Completed:            sess.Completed,
		CompletionPercentage: sess.CompletionPercentage(),
		CurrentQuestion:      q,
		QuestionNumber:       n,
		Answers:              sess.AnswerMap(),
		Plan:                 sess.Plan,
		Validation:           sess.Validate(),
	}, nil
}
