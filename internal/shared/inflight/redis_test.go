package inflight_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go-staffops/internal/shared/inflight"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisGuard_Acquire(t *testing.T) {
	ctx := context.Background()
	key := "team-1|morning|2026-03-02"

	t.Run("success and release", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.MatchExpectationsInOrder(true)
		mock.Regexp().ExpectSetNX(regexp.QuoteMeta(inflight.LockKey(key)), `.+`, 10*time.Second).SetVal(true)
		mock.CustomMatch(func(expected, actual []interface{}) error {
			// the token is random; only check the command and key
			if len(actual) < 4 || actual[0] != "eval" || actual[3] != inflight.LockKey(key) {
				return errors.New("unexpected release command")
			}
			return nil
		}).ExpectEval("", []string{inflight.LockKey(key)}, "").SetVal(int64(1))

		g := inflight.NewRedisGuard(rdb, 10*time.Second)
		release, err := g.Acquire(ctx, key)
		assert.NoError(t, err)
		release()
		release()

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("busy", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.Regexp().ExpectSetNX(regexp.QuoteMeta(inflight.LockKey(key)), `.+`, 10*time.Second).SetVal(false)

		g := inflight.NewRedisGuard(rdb, 10*time.Second)
		_, err := g.Acquire(ctx, key)
		assert.ErrorIs(t, err, inflight.ErrBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.Regexp().ExpectSetNX(regexp.QuoteMeta(inflight.LockKey(key)), `.+`, 10*time.Second).SetErr(errors.New("down"))

		g := inflight.NewRedisGuard(rdb, 10*time.Second)
		_, err := g.Acquire(ctx, key)
		assert.EqualError(t, err, "down")
	})
}
