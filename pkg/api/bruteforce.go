package api

import (
	"encoding/xml"
	"time"
)

type CrackRequest struct {
	Hash      string `json:"hash"`
	MaxLength int    `json:"maxLength"`
}

type CrackResponse struct {
	SearchId string `json:"searchId"`
}

type Md5Request struct {
	Input string `json:"input"`
}

type Md5Response struct {
	Hash string `json:"hash"`
}

type BruteForceResult struct {
	Found           bool    `json:"found" xml:"Found" bson:"found"`
	Plaintext       string  `json:"plaintext" xml:"Plaintext" bson:"plaintext"`
	Attempts        uint64  `json:"attempts" xml:"Attempts" bson:"attempts"`
	TimeMs          int64   `json:"timeMs" xml:"TimeMs" bson:"time_ms"`
	ChecksPerSecond float64 `json:"checksPerSecond" xml:"ChecksPerSecond" bson:"checks_per_second"`
}

type Progress struct {
	Attempts        uint64  `json:"attempts"`
	Current         string  `json:"current"`
	ChecksPerSecond float64 `json:"checksPerSecond"`
}

type StatusResponse struct {
	Status      string            `json:"status"`
	Hash        string            `json:"hash"`
	MaxLength   int               `json:"maxLength"`
	Digest      string            `json:"digest"`
	Progress    *Progress         `json:"progress,omitempty"`
	Result      *BruteForceResult `json:"result,omitempty"`
	ErrorReason string            `json:"errorReason,omitempty"`
}

// JobResponse is one entry of the job history.
type JobResponse struct {
	SearchId string `json:"searchId"`
	StatusResponse
	CreatedAt time.Time `json:"createdAt"`
}

// BruteForceRequest is consumed from the job queue.
type BruteForceRequest struct {
	XMLName   xml.Name `xml:"BruteForceRequest"`
	RequestId string   `xml:"RequestId"`
	Hash      string   `xml:"Hash"`
	MaxLength int      `xml:"MaxLength"`
}

// BruteForceResponse is published to the job queue once a request is done.
type BruteForceResponse struct {
	XMLName     xml.Name          `xml:"BruteForceResponse"`
	RequestId   string            `xml:"RequestId"`
	SearchId    string            `xml:"SearchId"`
	Status      string            `xml:"Status"`
	Result      *BruteForceResult `xml:"Result,omitempty"`
	ErrorReason string            `xml:"ErrorReason,omitempty"`
}
