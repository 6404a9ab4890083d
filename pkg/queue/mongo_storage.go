package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
)

// Collection names used by MongoStorage.
const (
	JobsCollection    = "jobs"
	DeadJobCollection = "jobs_dlq"
)

// MongoStorage persists jobs in MongoDB. Claims are a single
// FindOneAndUpdate so concurrent workers never take the same job.
type MongoStorage struct {
	jobs    *mongox.Collection[jobDocument]
	dead    *mongox.Collection[deadJobDocument]
	backoff BackoffFunc
}

// MongoOption configures a MongoStorage.
type MongoOption func(*MongoStorage)

// WithMongoBackoff sets the retry backoff.
func WithMongoBackoff(b BackoffFunc) MongoOption {
	return func(s *MongoStorage) {
		if b != nil {
			s.backoff = b
		}
	}
}

// NewMongoStorage returns a repository over db's jobs collections.
func NewMongoStorage(db *mongo.Database, opts ...MongoOption) *MongoStorage {
	s := &MongoStorage{
		jobs:    mongox.NewCollection[jobDocument](db, JobsCollection),
		dead:    mongox.NewCollection[deadJobDocument](db, DeadJobCollection),
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the claim index.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	return s.jobs.EnsureIndexes(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "queue", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
	})
}

func (s *MongoStorage) CreateJob(ctx context.Context, job *Job) error {
	if job == nil {
		return ErrPayloadNil
	}
	if _, err := s.jobs.InsertOne(ctx, toJobDocument(job)); err != nil {
		if errors.Is(err, mongox.ErrDuplicateKey) {
			return ErrJobExists
		}
		return err
	}
	return nil
}

// ClaimJob takes over an expired lock first, charging it one retry, and
// otherwise locks the earliest due pending job. Expired jobs with no
// retries left go to the dead letter queue.
func (s *MongoStorage) ClaimJob(ctx context.Context, workerID uuid.UUID, queues []string, lock time.Duration) (*Job, error) {
	for {
		job, err := s.reclaim(ctx, workerID, queues, lock)
		if err != nil {
			if errors.Is(err, ErrNoJobToClaim) {
				break
			}
			return nil, err
		}
		if !job.Exhausted() {
			return job, nil
		}
		if _, err := s.jobs.UpdateOne(ctx,
			bson.M{"_id": job.ID.String()},
			bson.M{
				"$set":   bson.M{"status": JobStatusFailed},
				"$unset": bson.M{"locked_until": "", "locked_by": ""},
			}); err != nil {
			return nil, err
		}
		if err := s.MoveToDLQ(ctx, job.ID); err != nil {
			return nil, errors.Join(ErrFailedToMoveToDLQ, err)
		}
	}

	now := time.Now().UTC()
	return s.claim(ctx,
		bson.M{
			"queue":        bson.M{"$in": queues},
			"status":       JobStatusPending,
			"scheduled_at": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{
			"status":       JobStatusProcessing,
			"locked_until": now.Add(lock),
			"locked_by":    workerID.String(),
		}})
}

func (s *MongoStorage) reclaim(ctx context.Context, workerID uuid.UUID, queues []string, lock time.Duration) (*Job, error) {
	now := time.Now().UTC()
	return s.claim(ctx,
		bson.M{
			"queue":        bson.M{"$in": queues},
			"status":       JobStatusProcessing,
			"locked_until": bson.M{"$lt": now},
		},
		bson.M{
			"$inc": bson.M{"retry_count": 1},
			"$set": bson.M{
				"locked_until": now.Add(lock),
				"locked_by":    workerID.String(),
				"error":        ErrLockExpired.Error(),
			},
		})
}

func (s *MongoStorage) claim(ctx context.Context, filter, update bson.M) (*Job, error) {
	doc, err := s.jobs.FindOneAndUpdate(ctx, filter, update, bson.D{{Key: "scheduled_at", Value: 1}})
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return nil, ErrNoJobToClaim
		}
		return nil, err
	}
	return doc.job()
}

func (s *MongoStorage) CompleteJob(ctx context.Context, id uuid.UUID) error {
	n, err := s.jobs.UpdateOne(ctx,
		bson.M{"_id": id.String(), "status": JobStatusProcessing},
		bson.M{
			"$set":   bson.M{"status": JobStatusCompleted, "processed_at": time.Now().UTC()},
			"$unset": bson.M{"locked_until": "", "locked_by": ""},
		})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotProcessing
	}
	return nil
}

func (s *MongoStorage) FailJob(ctx context.Context, id uuid.UUID, reason string) (*Job, error) {
	doc, err := s.jobs.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String(), "status": JobStatusProcessing},
		bson.M{
			"$inc":   bson.M{"retry_count": 1},
			"$set":   bson.M{"error": reason},
			"$unset": bson.M{"locked_until": "", "locked_by": ""},
		}, nil)
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return nil, ErrJobNotProcessing
		}
		return nil, err
	}

	job, err := doc.job()
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if job.Exhausted() {
		job.Status = JobStatusFailed
		set["status"] = JobStatusFailed
	} else {
		job.Status = JobStatusPending
		job.ScheduledAt = time.Now().UTC().Add(s.backoff(job.RetryCount))
		set["status"] = JobStatusPending
		set["scheduled_at"] = job.ScheduledAt
	}
	if _, err := s.jobs.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *MongoStorage) MoveToDLQ(ctx context.Context, id uuid.UUID) error {
	doc, err := s.jobs.FindOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return ErrJobNotFound
		}
		return err
	}
	if _, err := s.dead.InsertOne(ctx, deadJobDocument{
		ID:         uuid.NewString(),
		JobID:      doc.ID,
		Queue:      doc.Queue,
		Name:       doc.Name,
		Payload:    doc.Payload,
		Error:      doc.Error,
		RetryCount: doc.RetryCount,
		FailedAt:   time.Now().UTC(),
	}); err != nil {
		return err
	}
	return s.jobs.DeleteOne(ctx, bson.M{"_id": id.String()})
}

type jobDocument struct {
	ID          string     `bson:"_id"`
	Queue       string     `bson:"queue"`
	Name        string     `bson:"name"`
	Payload     []byte     `bson:"payload"`
	Status      JobStatus  `bson:"status"`
	RetryCount  int        `bson:"retry_count"`
	MaxRetries  int        `bson:"max_retries"`
	ScheduledAt time.Time  `bson:"scheduled_at"`
	LockedUntil *time.Time `bson:"locked_until,omitempty"`
	LockedBy    string     `bson:"locked_by,omitempty"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty"`
	Error       string     `bson:"error,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
}

type deadJobDocument struct {
	ID         string    `bson:"_id"`
	JobID      string    `bson:"job_id"`
	Queue      string    `bson:"queue"`
	Name       string    `bson:"name"`
	Payload    []byte    `bson:"payload"`
	Error      string    `bson:"error"`
	RetryCount int       `bson:"retry_count"`
	FailedAt   time.Time `bson:"failed_at"`
}

func toJobDocument(j *Job) jobDocument {
	doc := jobDocument{
		ID:          j.ID.String(),
		Queue:       j.Queue,
		Name:        j.Name,
		Payload:     j.Payload,
		Status:      j.Status,
		RetryCount:  j.RetryCount,
		MaxRetries:  j.MaxRetries,
		ScheduledAt: j.ScheduledAt.UTC(),
		LockedUntil: j.LockedUntil,
		ProcessedAt: j.ProcessedAt,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt.UTC(),
	}
	if j.LockedBy != nil {
		doc.LockedBy = j.LockedBy.String()
	}
	return doc
}

func (d jobDocument) job() (*Job, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid job id %q: %w", d.ID, err)
	}
	j := &Job{
		ID:          id,
		Queue:       d.Queue,
		Name:        d.Name,
		Payload:     d.Payload,
		Status:      d.Status,
		RetryCount:  d.RetryCount,
		MaxRetries:  d.MaxRetries,
		ScheduledAt: d.ScheduledAt,
		LockedUntil: d.LockedUntil,
		ProcessedAt: d.ProcessedAt,
		Error:       d.Error,
		CreatedAt:   d.CreatedAt,
	}
	if d.LockedBy != "" {
		if by, err := uuid.Parse(d.LockedBy); err == nil {
			j.LockedBy = &by
		}
	}
	return j, nil
}
