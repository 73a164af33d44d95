package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
)

// ErrAccountNotFound indicates the requested account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore defines the driven port for monitored account persistence.
// GetByID returns nil, nil when the account does not exist. Update, Delete and
// the two Apply methods return ErrAccountNotFound for a missing id; an Update
// with no fields is a no-op and never fails.
type AccountStore interface {
	ListAll(ctx context.Context) ([]model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
	Create(ctx context.Context, in model.NewAccount) (int64, error)
	Update(ctx context.Context, id int64, upd model.AccountUpdate) error
	Delete(ctx context.Context, id int64) error

	// ApplyScrapeSuccess merges snap into the stored account using
	// model.Account.WithSnapshot and marks it Normal.
	ApplyScrapeSuccess(ctx context.Context, id int64, snap model.Snapshot) error

	// ApplyScrapeFailure marks the account Invalid and records observedAt,
	// leaving every other observational field untouched.
	ApplyScrapeFailure(ctx context.Context, id int64, observedAt time.Time) error
}
