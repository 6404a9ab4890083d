package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/filevault/pkg/mongo/mongotest"
	"github.com/dmitrymomot/filevault/pkg/queue"
)

type deadRecord struct {
	JobID      string `bson:"job_id"`
	Error      string `bson:"error"`
	RetryCount int    `bson:"retry_count"`
}

func deadRecords(t *testing.T, db *mongo.Database, id uuid.UUID) []deadRecord {
	t.Helper()
	ctx := context.Background()
	cur, err := db.Collection(queue.DeadJobCollection).Find(ctx, bson.M{"job_id": id.String()})
	require.NoError(t, err)
	var out []deadRecord
	require.NoError(t, cur.All(ctx, &out))
	return out
}

func newMongoStorage(t *testing.T, opts ...queue.MongoOption) (*queue.MongoStorage, *mongo.Database) {
	t.Helper()
	db := mongotest.Database(t)
	s := queue.NewMongoStorage(db, opts...)
	require.NoError(t, s.EnsureIndexes(context.Background()))
	return s, db
}

func TestMongoStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	worker := uuid.New()
	queues := []string{queue.DefaultQueueName}
	due := func() time.Time { return time.Now().Add(-time.Second) }

	t.Run("duplicate id", func(t *testing.T) {
		t.Parallel()
		s, _ := newMongoStorage(t)
		job := newJob(queue.DefaultQueueName, due(), 3)
		require.NoError(t, s.CreateJob(ctx, job))
		assert.ErrorIs(t, s.CreateJob(ctx, job), queue.ErrJobExists)
		assert.ErrorIs(t, s.CreateJob(ctx, nil), queue.ErrPayloadNil)
	})

	t.Run("claims earliest due job in listed queues", func(t *testing.T) {
		t.Parallel()
		s, _ := newMongoStorage(t)
		now := time.Now()
		later := newJob(queue.DefaultQueueName, now.Add(-time.Second), 3)
		earlier := newJob(queue.DefaultQueueName, now.Add(-time.Minute), 3)
		future := newJob(queue.DefaultQueueName, now.Add(time.Hour), 3)
		other := newJob("other", now.Add(-time.Hour), 3)
		for _, j := range []*queue.Job{later, earlier, future, other} {
			require.NoError(t, s.CreateJob(ctx, j))
		}

		got, err := s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, earlier.ID, got.ID)
		assert.Equal(t, queue.JobStatusProcessing, got.Status)
		require.NotNil(t, got.LockedBy)
		assert.Equal(t, worker, *got.LockedBy)
		require.NotNil(t, got.LockedUntil)
		assert.WithinDuration(t, time.Now().Add(time.Minute), *got.LockedUntil, 5*time.Second)

		got, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, later.ID, got.ID)

		_, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJobToClaim)
	})

	t.Run("concurrent claims take each job once", func(t *testing.T) {
		t.Parallel()
		s, _ := newMongoStorage(t)
		const total = 20
		for range total {
			require.NoError(t, s.CreateJob(ctx, newJob(queue.DefaultQueueName, due(), 3)))
		}

		var (
			mu      sync.Mutex
			claimed = make(map[uuid.UUID]int)
			wg      sync.WaitGroup
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					job, err := s.ClaimJob(ctx, uuid.New(), queues, time.Minute)
					if err != nil {
						assert.ErrorIs(t, err, queue.ErrNoJobToClaim)
						return
					}
					mu.Lock()
					claimed[job.ID]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, claimed, total)
		for id, n := range claimed {
			assert.Equal(t, 1, n, id.String())
		}
	})

	t.Run("fail retries with backoff then exhausts into the dead letter queue", func(t *testing.T) {
		t.Parallel()
		var step time.Duration
		s, db := newMongoStorage(t, queue.WithMongoBackoff(func(int) time.Duration { return step }))
		job := newJob(queue.DefaultQueueName, due(), 2)
		require.NoError(t, s.CreateJob(ctx, job))

		_, err := s.FailJob(ctx, job.ID, "boom")
		assert.ErrorIs(t, err, queue.ErrJobNotProcessing)

		_, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		step = time.Hour
		updated, err := s.FailJob(ctx, job.ID, "boom")
		require.NoError(t, err)
		assert.Equal(t, 1, updated.RetryCount)
		assert.Equal(t, queue.JobStatusPending, updated.Status)
		assert.Equal(t, "boom", updated.Error)
		assert.Nil(t, updated.LockedUntil)
		assert.WithinDuration(t, time.Now().Add(time.Hour), updated.ScheduledAt, 5*time.Second)
		assert.False(t, updated.Exhausted())

		_, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJobToClaim)

		step = 0
		job2 := newJob(queue.DefaultQueueName, due(), 1)
		require.NoError(t, s.CreateJob(ctx, job2))
		_, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		updated, err = s.FailJob(ctx, job2.ID, "fatal")
		require.NoError(t, err)
		assert.Equal(t, queue.JobStatusFailed, updated.Status)
		assert.True(t, updated.Exhausted())

		require.NoError(t, s.MoveToDLQ(ctx, job2.ID))
		assert.ErrorIs(t, s.MoveToDLQ(ctx, job2.ID), queue.ErrJobNotFound)
		dead := deadRecords(t, db, job2.ID)
		require.Len(t, dead, 1)
		assert.Equal(t, "fatal", dead[0].Error)
		assert.Equal(t, 1, dead[0].RetryCount)
	})

	t.Run("expired lock is charged a retry", func(t *testing.T) {
		t.Parallel()
		s, db := newMongoStorage(t)
		expired := time.Now().Add(-time.Minute)
		stale := newJob(queue.DefaultQueueName, due(), 3)
		stale.Status = queue.JobStatusProcessing
		stale.LockedUntil = &expired
		require.NoError(t, s.CreateJob(ctx, stale))

		got, err := s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, stale.ID, got.ID)
		assert.Equal(t, 1, got.RetryCount)
		assert.Equal(t, queue.ErrLockExpired.Error(), got.Error)
		assert.Equal(t, worker, *got.LockedBy)

		_, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		assert.ErrorIs(t, err, queue.ErrNoJobToClaim)

		last := newJob(queue.DefaultQueueName, due(), 3)
		last.Status = queue.JobStatusProcessing
		last.RetryCount = 2
		last.LockedUntil = &expired
		require.NoError(t, s.CreateJob(ctx, last))
		next := newJob(queue.DefaultQueueName, due(), 3)
		require.NoError(t, s.CreateJob(ctx, next))

		got, err = s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, next.ID, got.ID)

		dead := deadRecords(t, db, last.ID)
		require.Len(t, dead, 1)
		assert.Equal(t, 3, dead[0].RetryCount)
		assert.Equal(t, queue.ErrLockExpired.Error(), dead[0].Error)
	})

	t.Run("complete", func(t *testing.T) {
		t.Parallel()
		s, db := newMongoStorage(t)
		job := newJob(queue.DefaultQueueName, due(), 3)
		require.NoError(t, s.CreateJob(ctx, job))

		assert.ErrorIs(t, s.CompleteJob(ctx, job.ID), queue.ErrJobNotProcessing)
		_, err := s.ClaimJob(ctx, worker, queues, time.Minute)
		require.NoError(t, err)
		require.NoError(t, s.CompleteJob(ctx, job.ID))
		assert.ErrorIs(t, s.CompleteJob(ctx, job.ID), queue.ErrJobNotProcessing)

		var raw bson.M
		require.NoError(t, db.Collection(queue.JobsCollection).FindOne(ctx, bson.M{"_id": job.ID.String()}).Decode(&raw))
		assert.Equal(t, string(queue.JobStatusCompleted), raw["status"])
		assert.NotContains(t, raw, "locked_until")
		assert.NotContains(t, raw, "locked_by")
	})
}
