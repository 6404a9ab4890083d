// Package queue is a small durable job queue.
//
// An Enqueuer stores JSON payloads as pending jobs. A Worker claims due jobs
// from a WorkerRepository, runs them on a bounded pool of goroutines and
// records the outcome. A failed attempt is rescheduled with backoff
// (LinearBackoff, 30s steps by default) until RetryCount reaches MaxRetries;
// the job then moves to dead letter storage. Jobs without a registered
// handler are dead-lettered immediately.
//
// MemoryStorage and MongoStorage implement both repository interfaces.
//
//	type ResizeImage struct{ FileID string }
//
//	func (ResizeImage) JobName() string { return "image.resize" }
//
//	repo := queue.NewMongoStorage(db)
//	enq, _ := queue.NewEnqueuer(repo)
//	_, err := enq.Enqueue(ctx, ResizeImage{FileID: id})
//
//	w, _ := queue.NewWorker(repo, queue.WithConcurrency(5))
//	w.RegisterHandlers(queue.NewJobHandler(func(ctx context.Context, p ResizeImage) error {
//		return resize(ctx, p.FileID)
//	}))
//	g.Go(w.Run(ctx))
//
// Handlers run with a context.Background derived deadline equal to the lock
// timeout, so shutdown lets in-flight jobs finish instead of canceling them.
package queue
