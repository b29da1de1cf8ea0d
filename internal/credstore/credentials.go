package credstore

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/petmanager/petman/internal/dbx"
)

// Storage keys of the credential record. Expiry is stored as string-encoded
// epoch milliseconds.
const (
	KeyAccessToken  = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyTokenExpiry  = "token_expiry"
)

// Record is the credential triple as read from the store. Zero values mean
// "absent". AccessToken and ExpiresAt are always set or cleared together.
type Record struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// HasAccessToken reports whether a (possibly stale) access token is stored.
func (r Record) HasAccessToken() bool { return r.AccessToken != "" }

// Credentials exposes the credential record as a unit on top of the raw
// key/value Store, so callers never touch individual keys.
type Credentials struct {
	db *sql.DB
}

func NewCredentials(db *sql.DB) *Credentials {
	return &Credentials{db: db}
}

// Load reads the stored credential record. Absent keys yield zero fields.
func (c *Credentials) Load(ctx context.Context) (Record, error) {
	var rec Record
	store := NewStore(c.db)

	token, ok, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		return rec, err
	}
	if ok {
		rec.AccessToken = token
	}

	refresh, ok, err := store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return rec, err
	}
	if ok {
		rec.RefreshToken = refresh
	}

	expiry, ok, err := store.Get(ctx, KeyTokenExpiry)
	if err != nil {
		return rec, err
	}
	if ok {
		millis, err := strconv.ParseInt(expiry, 10, 64)
		if err == nil {
			rec.ExpiresAt = time.UnixMilli(millis)
		}
	}

	return rec, nil
}

// Save replaces all three fields of the credential record in a single
// transaction.
func (c *Credentials) Save(ctx context.Context, rec Record) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := NewStore(tx)
		if err := store.Set(ctx, KeyAccessToken, rec.AccessToken); err != nil {
			return err
		}
		if err := store.Set(ctx, KeyRefreshToken, rec.RefreshToken); err != nil {
			return err
		}
		return store.Set(ctx, KeyTokenExpiry, strconv.FormatInt(rec.ExpiresAt.UnixMilli(), 10))
	})
}

// Clear removes the whole credential record in a single transaction.
func (c *Credentials) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := NewStore(tx)
		for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyTokenExpiry} {
			if err := store.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
}
