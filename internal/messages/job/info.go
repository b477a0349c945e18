package job

import (
	"time"

	"github.com/ykhdr/hashbench/internal/hashcrack/search"
	"github.com/ykhdr/hashbench/pkg/api"
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFound      Status = "FOUND"
	StatusNotFound   Status = "NOT_FOUND"
	StatusCancelled  Status = "CANCELLED"
	StatusError      Status = "ERROR"
)

func (s Status) IsFinal() bool {
	return s != StatusInProgress
}

type Id string

type Info struct {
	ID          Id                    `bson:"_id"`
	Status      Status                `bson:"status"`
	Hash        string                `bson:"hash"`
	MaxLength   int                   `bson:"max_length"`
	Digest      string                `bson:"digest"`
	Result      *api.BruteForceResult `bson:"result,omitempty"`
	ErrorReason string                `bson:"error_reason,omitempty"`
	CreatedAt   time.Time             `bson:"created_at"`
	FinishedAt  time.Time             `bson:"finished_at,omitempty"`
}

func (i *Info) Copy() *Info {
	c := *i
	if i.Result != nil {
		res := *i.Result
		c.Result = &res
	}
	return &c
}

// Finish moves the job to its terminal status.
func (i *Info) Finish(res *search.Result, err error, at time.Time) {
	i.FinishedAt = at
	if err != nil {
		i.Status = StatusError
		i.ErrorReason = err.Error()
		return
	}
	i.Result = ToApiResult(res)
	switch res.Outcome {
	case search.OutcomeFound:
		i.Status = StatusFound
	case search.OutcomeCancelled:
		i.Status = StatusCancelled
	default:
		i.Status = StatusNotFound
	}
}

func ToApiResult(res *search.Result) *api.BruteForceResult {
	return &api.BruteForceResult{
		Found:           res.Found,
		Plaintext:       res.Plaintext,
		Attempts:        res.Attempts,
		TimeMs:          res.ElapsedMillis(),
		ChecksPerSecond: res.Rate,
	}
}

func ToApiProgress(p search.Progress) *api.Progress {
	return &api.Progress{
		Attempts:        p.Attempts,
		Current:         p.Current,
		ChecksPerSecond: p.Rate,
	}
}

// ToStatusResponse builds the status view of a job, with progress while it
// is still running.
func ToStatusResponse(info *Info, progress *search.Progress) *api.StatusResponse {
	resp := &api.StatusResponse{
		Status:      string(info.Status),
		Hash:        info.Hash,
		MaxLength:   info.MaxLength,
		Digest:      info.Digest,
		Result:      info.Result,
		ErrorReason: info.ErrorReason,
	}
	if progress != nil && !info.Status.IsFinal() {
		resp.Progress = ToApiProgress(*progress)
	}
	return resp
}
