package model

import "time"

// SensitivityStatus is the platform's content-safety classification of an
// uploaded video. Transitions are server-driven and observed only:
// processing → safe or processing → flagged, both terminal.
type SensitivityStatus string

const (
	StatusProcessing SensitivityStatus = "processing"
	StatusSafe       SensitivityStatus = "safe"
	StatusFlagged    SensitivityStatus = "flagged"
)

// String returns the string representation of the status.
func (s SensitivityStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is final.
func (s SensitivityStatus) IsTerminal() bool {
	return s == StatusSafe || s == StatusFlagged
}

// Video mirrors a platform video record. The console never owns these:
// records are created by the platform on upload and mutated only by
// received progress events.
type Video struct {
	ID                 string            `json:"_id"`
	Title              string            `json:"title"`
	SensitivityStatus  SensitivityStatus `json:"sensitivityStatus"`
	ProcessingProgress int               `json:"processingProgress"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// ProgressEvent is the single inbound event type on the push channel.
type ProgressEvent struct {
	VideoID  string            `json:"videoId"`
	Progress int               `json:"progress"`
	Status   SensitivityStatus `json:"status"`
}

// ApplyProgress merges a progress event into the video list in place,
// replacing only the matching record's progress and status. Events for
// unknown IDs are a no-op. Later events always overwrite earlier ones.
// Reports whether a record matched.
func ApplyProgress(videos []Video, ev ProgressEvent) bool {
	for i := range videos {
		if videos[i].ID == ev.VideoID {
			videos[i].ProcessingProgress = ev.Progress
			videos[i].SensitivityStatus = ev.Status
			return true
		}
	}
	return false
}
