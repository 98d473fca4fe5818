package models

import (
	"strings"
	"time"
)

const HandleStaleAfter = 30 * 24 * time.Hour

type ChannelHandle struct {
	ChannelID    string
	Handle       string
	ChannelName  string
	ResolvedAt   time.Time
	LastVerified time.Time
}

func (h *ChannelHandle) IsStale(now time.Time) bool {
	return now.Sub(h.LastVerified) > HandleStaleAfter
}

type ChannelInfo struct {
	ChannelID string
	CustomURL string
	Title     string
}

// ChannelURL использует хэндл, а без него строит ссылку по id канала.
func ChannelURL(channelID, handle string) string {
	if handle != "" {
		return "https://www.youtube.com/@" + strings.TrimPrefix(handle, "@")
	}

	return "https://www.youtube.com/channel/" + channelID
}
