package models

import (
	"time"
)

// Event описывает одну запись входящей ленты. Published и Updated нулевые, если в ленте
// не было корректного времени.
type Event struct {
	VideoID            string
	ChannelID          string
	Title              string
	Author             string
	URL                string
	Published          time.Time
	Updated            time.Time
	ScheduledStartTime *time.Time
	ActualStartTime    *time.Time
	BroadcastHint      string
}

// IsRecent сообщает, опубликовано ли событие не раньше чем за window до now.
// События без времени публикации считаются свежими.
func (e *Event) IsRecent(now time.Time, window time.Duration) bool {
	if e.Published.IsZero() {
		return true
	}

	return now.Sub(e.Published) <= window
}

// Deletion создается для записей об удалении. Такие записи подтверждаются, но не отправляются.
type Deletion struct {
	VideoID   string
	ChannelID string
	URL       string
	DeletedAt time.Time
}

// FeedItem содержит ровно одно из Event или Deletion.
type FeedItem struct {
	Event    *Event
	Deletion *Deletion
}

func (f *FeedItem) IsDeletion() bool {
	return f.Deletion != nil
}
