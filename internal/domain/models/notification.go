package models

// NotificationType задает закрытый набор типов, которые может получить входящее событие.
type NotificationType int

const (
	TypeUpload NotificationType = iota + 1
	TypeScheduledLivestream
	TypeLiveNow
	TypeCompletedLivestream
	TypeCommunityPost
)

func (t NotificationType) String() string {
	switch t {
	case TypeUpload:
		return "upload"
	case TypeScheduledLivestream:
		return "livestream"
	case TypeLiveNow:
		return "livestream_live"
	case TypeCompletedLivestream:
		return "livestream_completed"
	case TypeCommunityPost:
		return "community"
	default:
		return "unknown"
	}
}

// IsTerminal сообщает, что для типа уведомление никогда не отправляется.
func (t NotificationType) IsTerminal() bool {
	return t == TypeCompletedLivestream
}

// ContentType возвращает группу вебхуков, обслуживающую тип.
func (t NotificationType) ContentType() (ContentType, bool) {
	switch t {
	case TypeUpload:
		return ContentUpload, true
	case TypeScheduledLivestream, TypeLiveNow:
		return ContentLivestream, true
	case TypeCommunityPost:
		return ContentCommunity, true
	default:
		return "", false
	}
}

type Notification struct {
	Type  NotificationType
	Event *Event
	Post  *CommunityPost
}

func NewVideoNotification(event *Event, notificationType NotificationType) *Notification {
	return &Notification{
		Type:  notificationType,
		Event: event,
	}
}

func NewCommunityNotification(post *CommunityPost) *Notification {
	return &Notification{
		Type: TypeCommunityPost,
		Post: post,
	}
}

// ID возвращает идентификатор видео или поста для логов.
func (n *Notification) ID() string {
	switch {
	case n.Post != nil:
		return n.Post.PostID
	case n.Event != nil:
		return n.Event.VideoID
	default:
		return ""
	}
}
