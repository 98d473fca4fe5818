package models

import "time"

type VideoMetadata struct {
	Found                bool
	LiveBroadcastContent string
	HasLiveDetails       bool
	ScheduledStartTime   *time.Time
	ActualStartTime      *time.Time
	ActualEndTime        *time.Time
	UploadStatus         string
}
