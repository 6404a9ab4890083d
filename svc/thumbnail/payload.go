package thumbnail

import "github.com/dmitrymomot/filevault/pkg/objectid"

// JobName identifies thumbnail jobs in the queue.
const JobName = "thumbnail.generate"

// Payload is the body of a thumbnail job.
type Payload struct {
	FileID objectid.ID `json:"fileId"`
	UserID objectid.ID `json:"userId"`
}

// JobName implements queue.Named.
func (Payload) JobName() string { return JobName }
