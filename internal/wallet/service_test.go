package wallet

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentledger/talentledger/internal/apperr"
	"github.com/talentledger/talentledger/internal/hdwallet"
	"github.com/talentledger/talentledger/internal/logging"
	"github.com/talentledger/talentledger/internal/metrics"
	"github.com/talentledger/talentledger/internal/notification"
)

const testMnemonic = "test test test test test test test test test test test junk"

type fakeSource struct {
	name   string
	counts map[string]int
	err    error
	delay  time.Duration
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Count(ctx context.Context, userID string) (int, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[userID], nil
}

// evidenceFor returns the five profile sections with one record each for
// every listed user.
func evidenceFor(users ...string) []*fakeSource {
	names := []string{"skills", "employments", "educations", "certifications", "client_projects"}
	out := make([]*fakeSource, 0, len(names))
	for _, n := range names {
		src := &fakeSource{name: n, counts: map[string]int{}}
		for _, u := range users {
			src.counts[u] = 1
		}
		out = append(out, src)
	}
	return out
}

func asEvidence(srcs []*fakeSource) []EvidenceSource {
	out := make([]EvidenceSource, len(srcs))
	for i, s := range srcs {
		out[i] = s
	}
	return out
}

func newDeriver(t *testing.T) *hdwallet.Deriver {
	t.Helper()
	d, err := hdwallet.NewDeriver(testMnemonic, hdwallet.DefaultBasePath)
	require.NoError(t, err)
	return d
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, m notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, m)
	return nil
}

func TestGetWalletInfoRequiresEveryEvidenceSection(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()

	for i := range 5 {
		srcs := evidenceFor(owner)
		srcs[i].counts[owner] = 0
		store := NewMemoryRepository()
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		svc := NewService(store, newDeriver(t), asEvidence(srcs), Options{Logger: logging.Discard(), Metrics: m})

		_, err := svc.GetWalletInfo(ctx, owner)
		require.Error(t, err, "section %s empty", srcs[i].name)
		assert.True(t, apperr.Is(err, apperr.KindEligibility))
		assert.Equal(t, EligibilityMessage, apperr.PublicMessage(err))

		_, err = store.FindByOwner(ctx, owner)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, ok, err := store.MaxPathIndex(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EligibilityDenied))
	}
}

func TestGetWalletInfoProvisionsOnce(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	store := NewMemoryRepository()
	notifier := &recordingNotifier{}
	svc := NewService(store, newDeriver(t), asEvidence(evidenceFor(owner)), Options{
		Logger:   logging.Discard(),
		Notifier: notifier,
	})

	first, err := svc.GetWalletInfo(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.PathIndex)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", first.Address)
	assert.Equal(t, owner, first.OwnerID)

	second, err := svc.GetWalletInfo(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := store.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, first, stored)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notification.KindWalletProvisioned, notifier.sent[0].Kind)
	assert.Equal(t, first.Address, notifier.sent[0].Attributes["wallet_address"])
}

func TestPathIndexIncreasesAcrossOwners(t *testing.T) {
	ctx := context.Background()
	owners := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	svc := NewService(NewMemoryRepository(), newDeriver(t), asEvidence(evidenceFor(owners...)), Options{Logger: logging.Discard()})

	want := []string{
		"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		"0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
	}
	var prev int64 = -1
	for i, owner := range owners {
		w, err := svc.GetWalletInfo(ctx, owner)
		require.NoError(t, err)
		assert.Greater(t, w.PathIndex, prev)
		assert.Equal(t, want[i], w.Address)
		prev = w.PathIndex
	}
}

func TestCreateWalletContinuesFromHighestIndex(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRepository()
	d := newDeriver(t)

	for i := range 5 {
		_, err := store.CreateNext(ctx, uuid.NewString(), func(idx int64) (Wallet, error) {
			require.Equal(t, int64(i), idx)
			acct, err := d.Derive(uint32(idx))
			require.NoError(t, err)
			return Wallet{ID: uuid.NewString(), PathIndex: idx, Address: acct.Address}, nil
		})
		require.NoError(t, err)
	}

	owner := uuid.NewString()
	svc := NewService(store, d, asEvidence(evidenceFor(owner)), Options{Logger: logging.Discard()})

	w, err := svc.CreateWallet(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(5), w.PathIndex)
	want, err := d.Derive(5)
	require.NoError(t, err)
	assert.Equal(t, want.Address, w.Address)

	again, err := svc.CreateWallet(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, w, again)
}

func TestGetWalletInfoConcurrentFirstCalls(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	store := NewMemoryRepository()
	svc := NewService(store, newDeriver(t), asEvidence(evidenceFor(owner)), Options{Logger: logging.Discard()})

	const n = 32
	var (
		wg      sync.WaitGroup
		results = make([]Wallet, n)
		errs    = make([]error, n)
	)
	start := make(chan struct{})
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.GetWalletInfo(ctx, owner)
		}()
	}
	close(start)
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Address, results[i].Address)
		assert.Equal(t, results[0].PathIndex, results[i].PathIndex)
	}
	highest, ok, err := store.MaxPathIndex(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), highest)
}

// racingStore simulates another process inserting the owner's wallet between
// the service's lookup and its insert.
type racingStore struct {
	Store
	winner  Wallet
	creates atomic.Int32
}

func (s *racingStore) CreateNext(ctx context.Context, ownerID string, build BuildFunc) (Wallet, error) {
	s.creates.Add(1)
	_, err := s.Store.CreateNext(ctx, ownerID, func(int64) (Wallet, error) { return s.winner, nil })
	if err != nil {
		return Wallet{}, err
	}
	return Wallet{}, apperr.ErrConflict
}

func TestCreateWalletConflictReturnsWinner(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	winner := Wallet{ID: uuid.NewString(), OwnerID: owner, PathIndex: 7, Address: "0xwinner"}
	store := &racingStore{Store: NewMemoryRepository(), winner: winner}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewService(store, newDeriver(t), asEvidence(evidenceFor(owner)), Options{Logger: logging.Discard(), Metrics: m})

	w, err := svc.GetWalletInfo(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, winner, w)
	assert.Equal(t, int32(1), store.creates.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProvisionConflicts))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WalletsProvisioned))
}

type failingStore struct {
	findErr   error
	createErr error
}

func (s failingStore) FindByOwner(context.Context, string) (Wallet, error) {
	if s.findErr != nil {
		return Wallet{}, s.findErr
	}
	return Wallet{}, apperr.ErrNotFound
}

func (s failingStore) MaxPathIndex(context.Context) (int64, bool, error) { return 0, false, nil }

func (s failingStore) CreateNext(context.Context, string, BuildFunc) (Wallet, error) {
	return Wallet{}, s.createErr
}

func TestStoreFailuresBecomeInternal(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	cause := errors.New("connection reset")

	cases := map[string]Store{
		"lookup": failingStore{findErr: cause},
		"insert": failingStore{createErr: cause},
	}
	for name, store := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewService(store, newDeriver(t), asEvidence(evidenceFor(owner)), Options{Logger: logging.Discard()})
			_, err := svc.GetWalletInfo(ctx, owner)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
			assert.Equal(t, apperr.InternalMessage, apperr.PublicMessage(err))
			assert.ErrorIs(t, err, cause)
		})
	}
}

func TestClassifiedStoreErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	denied := apperr.New(apperr.KindForbidden, "wallet frozen")

	var buf bytes.Buffer
	svc := NewService(failingStore{createErr: denied}, newDeriver(t), asEvidence(evidenceFor(owner)), Options{
		Logger: logging.NewWithWriter(&buf, "debug"),
	})
	_, err := svc.GetWalletInfo(ctx, owner)
	assert.Same(t, denied, err)
	assert.NotContains(t, buf.String(), "failed")
}

func TestInternalStoreErrorLoggedOnce(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	cause := errors.New("disk full")

	var buf bytes.Buffer
	svc := NewService(failingStore{createErr: apperr.Internal(cause)}, newDeriver(t), asEvidence(evidenceFor(owner)), Options{
		Logger: logging.NewWithWriter(&buf, "debug"),
	})
	_, err := svc.GetWalletInfo(ctx, owner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, strings.Count(buf.String(), `"msg":"wallet provision wallet failed"`))
}

func TestEvidenceFailuresBecomeInternal(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()

	broken := evidenceFor(owner)
	broken[2].err = errors.New("profile store down")
	store := NewMemoryRepository()
	svc := NewService(store, newDeriver(t), asEvidence(broken), Options{Logger: logging.Discard()})

	_, err := svc.GetWalletInfo(ctx, owner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	_, err = store.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestEvidenceTimeoutBecomesInternal(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()

	slow := evidenceFor(owner)
	slow[0].delay = time.Second
	svc := NewService(NewMemoryRepository(), newDeriver(t), asEvidence(slow), Options{
		Logger:  logging.Discard(),
		Timeout: 20 * time.Millisecond,
	})

	_, err := svc.GetWalletInfo(ctx, owner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type brokenDeriver struct{}

func (brokenDeriver) Derive(uint32) (hdwallet.Account, error) {
	return hdwallet.Account{}, errors.New("derivation unavailable")
}

func TestDerivationFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	owner := uuid.NewString()
	store := NewMemoryRepository()
	svc := NewService(store, brokenDeriver{}, asEvidence(evidenceFor(owner)), Options{Logger: logging.Discard()})

	_, err := svc.GetWalletInfo(ctx, owner)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	_, ok, err := store.MaxPathIndex(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
