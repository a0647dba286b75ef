// Package pos runs POS sessions: one cart and one checkout per till, with at
// most one operation in flight per session.
package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duka-pos/internal/cart"
	"duka-pos/internal/checkout"
	"duka-pos/internal/domain"
	"duka-pos/internal/logging"
	"duka-pos/internal/metrics"
	"duka-pos/internal/repository/session"
)

// DefaultSubmitTimeout bounds a single sale submission.
const DefaultSubmitTimeout = 15 * time.Second

type sessionStore interface {
	Get(ctx context.Context, storeID, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, storeID, id string) error
}

type resolver interface {
	Resolve(ctx context.Context, storeID, code string) (cart.Item, error)
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	Rules         checkout.Rules
	SubmitTimeout time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// Service owns POS sessions and serializes work on each of them.
type Service struct {
	sessions      sessionStore
	catalog       resolver
	recorder      checkout.Recorder
	rules         checkout.Rules
	submitTimeout time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics
	guards        *guards
	newID         func() string
	now           func() time.Time
}

// New builds a Service over the given session store, catalog and sale recorder.
func New(sessions sessionStore, catalog resolver, recorder checkout.Recorder, opts Options) *Service {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.Rules.MinPhoneDigits <= 0 {
		opts.Rules = checkout.DefaultRules()
	}
	return &Service{
		sessions:      sessions,
		catalog:       catalog,
		recorder:      recorder,
		rules:         opts.Rules,
		submitTimeout: opts.SubmitTimeout,
		logger:        logging.OrNop(opts.Logger),
		metrics:       opts.Metrics,
		guards:        newGuards(),
		newID:         uuid.NewString,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Rules returns the payment readiness rules in force.
func (s *Service) Rules() checkout.Rules {
	return s.rules
}

// Open starts a session with an empty cart and an idle checkout.
func (s *Service) Open(ctx context.Context, storeID string) (*session.Session, error) {
	now := s.now()
	sess := &session.Session{
		ID:        s.newID(),
		StoreID:   storeID,
		Cart:      cart.New(),
		Checkout:  checkout.Machine{State: checkout.StateIdle},
		OpenedAt:  now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session opened", zap.String("store_id", storeID), zap.String("session_id", sess.ID))
	return sess, nil
}

// Get returns the stored session, or ErrNotFound.
func (s *Service) Get(ctx context.Context, storeID, id string) (*session.Session, error) {
	return s.sessions.Get(ctx, storeID, id)
}

// Close tears the session down. An open cart is discarded.
func (s *Service) Close(ctx context.Context, storeID, id string) error {
	release, err := s.guards.acquire(guardKey(storeID, id))
	if err != nil {
		return err
	}
	defer release()

	if err := s.sessions.Delete(ctx, storeID, id); err != nil {
		return err
	}
	s.logger.Info("session closed", zap.String("store_id", storeID), zap.String("session_id", id))
	return nil
}

// Scan resolves code and adds qty units (1 when qty is 0). A failed or
// timed-out resolution leaves the stored cart exactly as it was.
func (s *Service) Scan(ctx context.Context, storeID, id, code string, qty int) (*session.Session, cart.Clamp, error) {
	if qty == 0 {
		qty = 1
	}
	var clamp cart.Clamp
	sess, err := s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		if qty < 1 {
			return cart.ErrQuantityBelowOne
		}
		item, err := s.catalog.Resolve(ctx, storeID, code)
		if err != nil {
			return err
		}
		next, c, err := sess.Cart.Add(item, qty)
		if err != nil {
			return err
		}
		sess.Cart = next
		clamp = c
		return nil
	})
	s.metrics.ObserveScan(scanResult(err, clamp))
	if err != nil {
		return nil, cart.Clamp{}, err
	}
	if clamp.Clamped() {
		s.logger.Info("scan clamped to stock",
			zap.String("session_id", id),
			zap.String("code", code),
			zap.Int("requested", clamp.Requested),
			zap.Int("applied", clamp.Applied),
		)
	}
	return sess, clamp, nil
}

// SetQuantity sets a line's quantity, clamped to the stock seen when it was added.
func (s *Service) SetQuantity(ctx context.Context, storeID, id, lineID string, qty int) (*session.Session, cart.Clamp, error) {
	var clamp cart.Clamp
	sess, err := s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		next, c, err := sess.Cart.SetQuantity(lineID, qty)
		if err != nil {
			return err
		}
		sess.Cart = next
		clamp = c
		return nil
	})
	if err != nil {
		return nil, cart.Clamp{}, err
	}
	return sess, clamp, nil
}

// RemoveLine drops a line from the cart. Unknown lines are ignored.
func (s *Service) RemoveLine(ctx context.Context, storeID, id, lineID string) (*session.Session, error) {
	return s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		sess.Cart = sess.Cart.Remove(lineID)
		return nil
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, storeID, id string) (*session.Session, error) {
	return s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		sess.Cart = cart.Clear()
		return nil
	})
}

// BeginCheckout moves a non-empty cart into payment selection.
func (s *Service) BeginCheckout(ctx context.Context, storeID, id string) (*session.Session, error) {
	return s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		return sess.Checkout.Begin(sess.Cart)
	})
}

// SelectPayment stores the operator's payment draft on the checkout.
func (s *Service) SelectPayment(ctx context.Context, storeID, id string, d checkout.Draft) (*session.Session, error) {
	return s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		return sess.Checkout.Select(d)
	})
}

// CancelCheckout returns to the cart without touching its lines.
func (s *Service) CancelCheckout(ctx context.Context, storeID, id string) (*session.Session, error) {
	return s.mutate(ctx, storeID, id, func(sess *session.Session) error {
		return sess.Checkout.Cancel()
	})
}

// SubmitCheckout records the sale once. On success the cart is cleared; on a
// recorder failure the cart is kept and the failure is stored on the
// checkout so the operator can retry.
func (s *Service) SubmitCheckout(ctx context.Context, storeID, id string) (*session.Session, checkout.Receipt, error) {
	release, err := s.guards.acquire(guardKey(storeID, id))
	if err != nil {
		s.metrics.ObserveCheckout("", "busy", 0)
		return nil, checkout.Receipt{}, err
	}
	defer release()

	stored, err := s.sessions.Get(ctx, storeID, id)
	if err != nil {
		return nil, checkout.Receipt{}, err
	}
	work := stored.Clone()
	method := string(work.Checkout.Draft.Method)

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	receipt, err := work.Checkout.Submit(submitCtx, work.Cart, s.rules, s.recorder, checkout.SaleMeta{StoreID: storeID, SessionID: id})
	switch {
	case errors.Is(err, domain.ErrSubmissionFailed):
		s.metrics.ObserveCheckout(method, "failed", work.Cart.TotalCents)
		s.logger.Warn("sale submission failed",
			zap.String("store_id", storeID),
			zap.String("session_id", id),
			zap.String("method", method),
			zap.Error(err),
		)
		work.UpdatedAt = s.now()
		if saveErr := s.sessions.Save(ctx, &work); saveErr != nil {
			s.logger.Error("save session after failed submit", zap.String("session_id", id), zap.Error(saveErr))
		}
		return &work, checkout.Receipt{}, err
	case err != nil:
		s.metrics.ObserveCheckout(method, "rejected", work.Cart.TotalCents)
		return nil, checkout.Receipt{}, err
	}

	s.metrics.ObserveCheckout(method, "completed", receipt.TotalCents)
	work.Cart = cart.Clear()
	work.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, &work); err != nil {
		// The sale is committed; the operator must not be told to retry.
		s.logger.Error("save session after sale", zap.String("session_id", id), zap.String("sale_id", receipt.SaleID), zap.Error(err))
	}
	s.logger.Info("sale completed",
		zap.String("store_id", storeID),
		zap.String("session_id", id),
		zap.String("sale_id", receipt.SaleID),
		zap.String("method", method),
		zap.Int64("total_cents", receipt.TotalCents),
	)
	return &work, receipt, nil
}

// mutate runs fn on a copy of the stored session and saves the copy only if
// fn succeeds.
func (s *Service) mutate(ctx context.Context, storeID, id string, fn func(*session.Session) error) (*session.Session, error) {
	release, err := s.guards.acquire(guardKey(storeID, id))
	if err != nil {
		return nil, err
	}
	defer release()

	stored, err := s.sessions.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	work := stored.Clone()
	if err := fn(&work); err != nil {
		return nil, err
	}
	work.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, &work); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &work, nil
}

func guardKey(storeID, id string) string {
	return storeID + "/" + id
}

func scanResult(err error, clamp cart.Clamp) string {
	switch {
	case err == nil && clamp.Clamped():
		return "clamped"
	case err == nil:
		return "added"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrLookupFailed):
		return "lookup_failed"
	default:
		return "rejected"
	}
}
