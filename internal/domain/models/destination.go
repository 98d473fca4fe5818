package models

import (
	"strings"
)

type ContentType string

const (
	ContentUpload     ContentType = "upload"
	ContentLivestream ContentType = "livestream"
	ContentCommunity  ContentType = "community"
)

const DiscordWebhookPrefix = "https://discord.com/api/webhooks/"

func ParseContentType(value string) (ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "upload":
		return ContentUpload, true
	case "livestream", "live":
		return ContentLivestream, true
	case "community":
		return ContentCommunity, true
	default:
		return "", false
	}
}

type Destination struct {
	WebhookURL  string
	RoleIDs     []string
	ContentType ContentType
	Enabled     bool
}

func (d *Destination) RoleMentions() string {
	mentions := make([]string, 0, len(d.RoleIDs))

	for _, id := range d.RoleIDs {
		if id = strings.TrimSpace(id); id != "" {
			mentions = append(mentions, "<@&"+id+">")
		}
	}

	return strings.Join(mentions, " ")
}
