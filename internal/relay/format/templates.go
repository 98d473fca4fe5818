package format

import (
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

const (
	colorYouTubeRed = 0xFF0000
	colorOrangeRed  = 0xFF4500
	colorCommunity  = 0x1DA1F2
)

// template описывает оформление одного типа уведомления. Плейсхолдеры
// подставляются через fmt: автор, затем время начала для запланированного стрима.
type template struct {
	embedDescription string
	footer           string
	color            int
	simple           string
}

func templateFor(notificationType models.NotificationType) (template, bool) {
	switch notificationType {
	case models.TypeUpload:
		return template{
			embedDescription: "Check out this new video from %s",
			footer:           "YouTube • Uploaded",
			color:            colorYouTubeRed,
			simple:           "%s [%s](%s)",
		}, true
	case models.TypeScheduledLivestream:
		return template{
			embedDescription: "%s will be streaming %s",
			footer:           "YouTube • Scheduled Stream",
			color:            colorOrangeRed,
			simple:           "%s starting %s: [%s](%s)",
		}, true
	case models.TypeLiveNow:
		return template{
			embedDescription: "%s is streaming now",
			footer:           "YouTube • LIVE",
			color:            colorYouTubeRed,
			simple:           "%s 🔴 LIVE: [%s](%s)",
		}, true
	case models.TypeCommunityPost:
		return template{
			embedDescription: "New community post from %s",
			footer:           "YouTube • Community Post",
			color:            colorCommunity,
		}, true
	default:
		return template{}, false
	}
}
