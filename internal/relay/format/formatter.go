package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	unknownTitle   = "Unknown Title"
	unknownChannel = "Unknown Channel"

	simpleContentLimit = 150
	embedContentLimit  = 300
)

// Formatter собирает полезную нагрузку для вебхука. Вид сообщения (embed или текст)
// задается для всего развертывания, а не типом уведомления.
type Formatter struct {
	richEmbeds bool
}

func NewFormatter(richEmbeds bool) *Formatter {
	return &Formatter{richEmbeds: richEmbeds}
}

// Format возвращает nil для типов, которые не доставляются.
func (f *Formatter) Format(notification *models.Notification, destination *models.Destination) *models.Payload {
	tmpl, ok := templateFor(notification.Type)
	if !ok {
		return nil
	}

	mentions := destination.RoleMentions()

	switch {
	case notification.Type == models.TypeCommunityPost && notification.Post != nil:
		if f.richEmbeds {
			return communityEmbed(notification.Post, tmpl, mentions)
		}

		return communityText(notification.Post, mentions)
	case notification.Event != nil:
		if f.richEmbeds {
			return videoEmbed(notification.Type, notification.Event, tmpl, mentions)
		}

		return videoText(notification.Type, notification.Event, tmpl, mentions)
	default:
		return nil
	}
}

func videoEmbed(notificationType models.NotificationType, event *models.Event, tmpl template, mentions string) *models.Payload {
	author := orDefault(event.Author, unknownChannel)

	var description string
	if notificationType == models.TypeScheduledLivestream {
		description = fmt.Sprintf(tmpl.embedDescription, author, RelativeTime(event.ScheduledStartTime))
	} else {
		description = fmt.Sprintf(tmpl.embedDescription, author)
	}

	embed := models.Embed{
		Title:       orDefault(event.Title, unknownTitle),
		Description: description,
		URL:         videoURL(event),
		Color:       tmpl.color,
		Thumbnail:   &models.EmbedMedia{URL: "https://img.youtube.com/vi/" + event.VideoID + "/maxresdefault.jpg"},
		Author: &models.EmbedAuthor{
			Name: author,
			URL:  "https://www.youtube.com/channel/" + event.ChannelID,
		},
		Footer:    &models.EmbedFooter{Text: tmpl.footer},
		Timestamp: timestamp(event.Published),
	}

	return &models.Payload{
		Content: mentions,
		Embeds:  []models.Embed{embed},
	}
}

func videoText(notificationType models.NotificationType, event *models.Event, tmpl template, mentions string) *models.Payload {
	title := orDefault(event.Title, unknownTitle)
	url := videoURL(event)

	var content string
	if notificationType == models.TypeScheduledLivestream {
		content = fmt.Sprintf(tmpl.simple, mentions, RelativeTime(event.ScheduledStartTime), title, url)
	} else {
		content = fmt.Sprintf(tmpl.simple, mentions, title, url)
	}

	return &models.Payload{Content: strings.TrimSpace(content)}
}

func communityEmbed(post *models.CommunityPost, tmpl template, mentions string) *models.Payload {
	author := orDefault(post.ChannelName, unknownChannel)

	description := CommunityDescription(post)
	if description == "" {
		description = fmt.Sprintf(tmpl.embedDescription, author)
	}

	embed := models.Embed{
		Title:       "📝 Community Post from " + author,
		Description: description,
		URL:         post.URL,
		Color:       tmpl.color,
		Author: &models.EmbedAuthor{
			Name: author,
			URL:  "https://www.youtube.com/channel/" + post.ChannelID,
		},
		Footer:    &models.EmbedFooter{Text: tmpl.footer},
		Timestamp: timestamp(post.PublishedTime),
	}

	if len(post.ImageURLs) > 0 {
		embed.Thumbnail = &models.EmbedMedia{URL: post.ImageURLs[0]}
	}

	return &models.Payload{
		Content: mentions,
		Embeds:  []models.Embed{embed},
	}
}

func communityText(post *models.CommunityPost, mentions string) *models.Payload {
	lines := make([]string, 0, 4)

	if mentions != "" {
		lines = append(lines, mentions)
	}

	lines = append(lines, fmt.Sprintf("📝 **%s** posted in the community tab", orDefault(post.ChannelName, unknownChannel)))

	if post.Content != "" {
		lines = append(lines, `"`+Truncate(post.Content, simpleContentLimit)+`"`)
	}

	lines = append(lines, fmt.Sprintf("[View Post](%s)", post.URL))

	return &models.Payload{Content: strings.Join(lines, "\n")}
}

// CommunityDescription собирает текст поста и строки о вложениях, пропуская пустые.
func CommunityDescription(post *models.CommunityPost) string {
	parts := make([]string, 0, 5)

	if post.Content != "" {
		parts = append(parts, TruncateTotal(post.Content, embedContentLimit))
	}

	if count := len(post.ImageURLs); count > 0 {
		parts = append(parts, fmt.Sprintf("📷 %d image%s", count, plural(count)))
	}

	if count := len(post.VideoAttachments); count > 0 {
		parts = append(parts, fmt.Sprintf("🎥 %d video attachment%s", count, plural(count)))
	}

	if post.Poll != nil {
		parts = append(parts, "📊 Poll included")
	}

	if post.LikeCount != nil && *post.LikeCount > 0 {
		parts = append(parts, fmt.Sprintf("👍 %d likes", *post.LikeCount))
	}

	return strings.Join(parts, "\n\n")
}

// RelativeTime возвращает метку относительного времени Discord или "soon".
func RelativeTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "soon"
	}

	return fmt.Sprintf("<t:%d:R>", value.Unix())
}

// Truncate обрезает текст до limit символов и добавляет многоточие.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit]) + "..."
}

// TruncateTotal обрезает текст так, чтобы вместе с многоточием он занимал limit символов.
func TruncateTotal(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit-3]) + "..."
}

func videoURL(event *models.Event) string {
	if event.URL != "" {
		return event.URL
	}

	return "https://www.youtube.com/watch?v=" + event.VideoID
}

func timestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func plural(count int) string {
	if count > 1 {
		return "s"
	}

	return ""
}
