package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/hdwallet"
	"github.com/talentledger/talentledger/internal/metrics"
	"github.com/talentledger/talentledger/internal/notification"
)

// EligibilityMessage is returned when any profile section is empty.
const EligibilityMessage = "advanced profile completion required"

const defaultTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/talentledger/talentledger/internal/wallet")

// EvidenceSource is one read-only profile section whose non-emptiness gates
// wallet provisioning.
type EvidenceSource interface {
	Name() string
	Count(ctx context.Context, userID string) (int, error)
}

// Deriver maps a path index to an account.
type Deriver interface {
	Derive(index uint32) (hdwallet.Account, error)
}

// Options carries the optional collaborators of Service.
type Options struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Notifier notification.Notifier
	// Timeout bounds every store and evidence call.
	Timeout time.Duration
}

// Service provisions and returns user wallets.
type Service struct {
	store    Store
	deriver  Deriver
	evidence []EvidenceSource
	logger   *slog.Logger
	metrics  *metrics.Metrics
	notifier notification.Notifier
	timeout  time.Duration
	inflight singleflight.Group
	now      func() time.Time
}

// NewService builds a wallet service instance.
func NewService(store Store, deriver Deriver, evidence []EvidenceSource, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Service{
		store:    store,
		deriver:  deriver,
		evidence: evidence,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		notifier: opts.Notifier,
		timeout:  opts.Timeout,
		now:      time.Now,
	}
}

// GetWalletInfo returns the wallet of ownerID, provisioning it on first use.
// Every evidence section must hold at least one record; otherwise an
// Eligibility error is returned and nothing is stored.
func (s *Service) GetWalletInfo(ctx context.Context, ownerID string) (Wallet, error) {
	ctx, span := tracer.Start(ctx, "wallet.GetWalletInfo", trace.WithAttributes(attribute.String("owner_id", ownerID)))
	defer span.End()

	if err := s.checkEligibility(ctx, ownerID); err != nil {
		return Wallet{}, s.fail(ctx, span, "check eligibility", ownerID, err)
	}

	w, err := s.findByOwner(ctx, ownerID)
	switch {
	case err == nil:
		return w, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return Wallet{}, s.fail(ctx, span, "find wallet", ownerID, err)
	}

	// CreateWallet classifies its own failures.
	return s.CreateWallet(ctx, ownerID)
}

// CreateWallet derives and stores the wallet of ownerID. It does not check
// eligibility; callers outside GetWalletInfo must do so themselves. If the
// owner already has a wallet it is returned unchanged.
func (s *Service) CreateWallet(ctx context.Context, ownerID string) (Wallet, error) {
	ctx, span := tracer.Start(ctx, "wallet.CreateWallet", trace.WithAttributes(attribute.String("owner_id", ownerID)))
	defer span.End()

	existing, err := s.findByOwner(ctx, ownerID)
	switch {
	case err == nil:
		s.logger.WarnContext(ctx, "wallet already exists",
			slog.String("owner_id", ownerID),
			slog.Int64("path_index", existing.PathIndex),
		)
		return existing, nil
	case !errors.Is(err, apperr.ErrNotFound):
		return Wallet{}, s.fail(ctx, span, "find wallet", ownerID, err)
	}

	// Concurrent first requests of one owner share a single provisioning
	// call, detached from any one caller's cancellation.
	detached := context.WithoutCancel(ctx)
	v, err, _ := s.inflight.Do(ownerID, func() (any, error) {
		return s.provision(detached, ownerID)
	})
	if err != nil {
		return Wallet{}, s.fail(ctx, span, "provision wallet", ownerID, err)
	}
	w := v.(Wallet)
	span.SetAttributes(attribute.Int64("path_index", w.PathIndex))
	return w, nil
}

func (s *Service) provision(ctx context.Context, ownerID string) (Wallet, error) {
	start := s.now()
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	w, err := s.store.CreateNext(callCtx, ownerID, func(pathIndex int64) (Wallet, error) {
		if pathIndex < 0 || pathIndex > math.MaxInt32 {
			return Wallet{}, fmt.Errorf("path index %d out of range", pathIndex)
		}
		account, err := s.deriver.Derive(uint32(pathIndex))
		if err != nil {
			return Wallet{}, fmt.Errorf("derive account %d: %w", pathIndex, err)
		}
		return Wallet{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			PathIndex: pathIndex,
			Address:   account.Address,
			CreatedAt: s.now().UTC(),
		}, nil
	})
	if errors.Is(err, apperr.ErrConflict) {
		s.metrics.IncProvisionConflicts()
		s.logger.InfoContext(ctx, "wallet provisioned concurrently, re-reading", slog.String("owner_id", ownerID))
		return s.findByOwner(ctx, ownerID)
	}
	if err != nil {
		return Wallet{}, err
	}

	s.metrics.IncWalletsProvisioned()
	s.metrics.ObserveProvision(s.now().Sub(start))
	s.logger.InfoContext(ctx, "wallet provisioned",
		slog.String("owner_id", ownerID),
		slog.Int64("path_index", w.PathIndex),
		slog.String("address", w.Address),
	)
	s.notify(ctx, w)
	return w, nil
}

func (s *Service) notify(ctx context.Context, w Wallet) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindWalletProvisioned,
		Destination: w.OwnerID,
		Body:        "Your wallet is ready.",
		Attributes: map[string]string{
			"wallet_address": w.Address,
			"path_index":     strconv.FormatInt(w.PathIndex, 10),
		},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "wallet notification failed", slog.String("owner_id", w.OwnerID), slog.Any("error", err))
	}
}

// checkEligibility counts every evidence section concurrently and fails with
// an Eligibility error naming nothing but the requirement.
func (s *Service) checkEligibility(ctx context.Context, ownerID string) error {
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu      sync.Mutex
		missing []string
	)
	for _, src := range s.evidence {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()
			n, err := src.Count(callCtx, ownerID)
			if err != nil {
				return fmt.Errorf("count %s: %w", src.Name(), err)
			}
			if n == 0 {
				mu.Lock()
				missing = append(missing, src.Name())
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(missing) > 0 {
		s.metrics.IncEligibilityDenied()
		s.logger.DebugContext(ctx, "wallet eligibility denied",
			slog.String("owner_id", ownerID),
			slog.Any("missing", missing),
		)
		return apperr.New(apperr.KindEligibility, EligibilityMessage)
	}
	return nil
}

func (s *Service) findByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.FindByOwner(callCtx, ownerID)
}

// fail passes client-facing errors through and turns anything else into a
// logged Internal error.
func (s *Service) fail(ctx context.Context, span trace.Span, op, ownerID string, err error) error {
	if apperr.IsClientFacing(err) {
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	s.logger.ErrorContext(ctx, "wallet "+op+" failed", slog.String("owner_id", ownerID), slog.Any("error", err))
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}
