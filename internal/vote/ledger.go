package vote

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lorenzotomasdiez/debate-arena/internal/logging"
)

// Ledger reads and increments the tally held by a Store.
// Read failures reinitialize the tally; write failures are logged and the
// in-memory result is still returned.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	logger *zap.Logger
}

// NewLedger creates a Ledger over store.
func NewLedger(store Store, logger *zap.Logger) *Ledger {
	return &Ledger{store: store, logger: logging.OrNop(logger)}
}

// Tally returns the current counts, persisting a zero tally when none is stored.
func (l *Ledger) Tally(ctx context.Context) Tally {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Record adds one vote for faction and returns the updated counts.
func (l *Ledger) Record(ctx context.Context, faction string) (Tally, error) {
	f, err := ParseFaction(faction)
	if err != nil {
		return Tally{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.load(ctx).increment(f)
	l.save(ctx, t)
	l.logger.Info("vote recorded", zap.String("faction", string(f)), zap.Int("kinoko", t.Kinoko), zap.Int("takenoko", t.Takenoko))
	return t, nil
}

func (l *Ledger) load(ctx context.Context) Tally {
	t, err := l.store.Load(ctx)
	if err == nil {
		return t
	}
	// Stores return the bare sentinel when nothing was ever written.
	if err == ErrNoTally {
		l.logger.Info("initializing vote tally")
	} else {
		l.logger.Warn("vote tally unreadable, reinitializing", zap.Error(err))
	}
	t = Tally{}
	l.save(ctx, t)
	return t
}

func (l *Ledger) save(ctx context.Context, t Tally) {
	if err := l.store.Save(ctx, t); err != nil {
		l.logger.Error("vote tally not persisted", zap.Error(err))
	}
}
