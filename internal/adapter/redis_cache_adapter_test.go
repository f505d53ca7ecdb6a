package adapter

import (
	"context"
	"errors"
	"survey-responder/internal/cache"
	"survey-responder/internal/domain"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var answersKey = cache.GenerateCacheKey("answers", cache.Fingerprint("llama3.1", "persona", "q1"))

func TestRedisCacheAdapter_Get(t *testing.T) {
	redisErr := errors.New("READONLY You can't write against a read only replica")

	tests := []struct {
		name    string
		expect  func(mock redismock.ClientMock)
		want    string
		wantErr error
	}{
		{
			name:   "hit",
			expect: func(mock redismock.ClientMock) { mock.ExpectGet(answersKey).SetVal(`["Never","Often"]`) },
			want:   `["Never","Often"]`,
		},
		{
			name:    "miss",
			expect:  func(mock redismock.ClientMock) { mock.ExpectGet(answersKey).RedisNil() },
			wantErr: domain.ErrCacheMiss,
		},
		{
			name:    "redis error",
			expect:  func(mock redismock.ClientMock) { mock.ExpectGet(answersKey).SetErr(redisErr) },
			wantErr: redisErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			c := NewRedisCacheAdapter(db)
			tt.expect(mock)

			val, err := c.Get(context.Background(), answersKey)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, val)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, val)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisCacheAdapter_SetAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheAdapter(db)
	ctx := context.Background()

	mock.ExpectSet(answersKey, `["Always"]`, 24*time.Hour).SetVal("OK")
	assert.NoError(t, c.Set(ctx, answersKey, `["Always"]`, 24*time.Hour))

	mock.ExpectDel(answersKey).SetVal(0)
	assert.NoError(t, c.Delete(ctx, answersKey), "deleting a missing key is not an error")

	mock.ExpectSet(answersKey, "x", time.Duration(0)).SetErr(redis.ErrClosed)
	assert.ErrorIs(t, c.Set(ctx, answersKey, "x", 0), redis.ErrClosed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
