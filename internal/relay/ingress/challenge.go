package ingress

import (
	"net/url"
	"strings"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

// VerifyChallenge проверяет запрос подтверждения подписки от хаба и возвращает challenge,
// который нужно отдать в теле ответа.
func VerifyChallenge(query url.Values) (string, error) {
	mode := query.Get("hub.mode")
	topic := query.Get("hub.topic")
	challenge := query.Get("hub.challenge")

	var missing []string

	if mode == "" {
		missing = append(missing, "hub.mode")
	}

	if topic == "" {
		missing = append(missing, "hub.topic")
	}

	if challenge == "" {
		missing = append(missing, "hub.challenge")
	}

	if len(missing) > 0 {
		return "", &customerrors.ErrChallengeVerification{
			Reason: "отсутствуют параметры: " + strings.Join(missing, ", "),
		}
	}

	if mode != "subscribe" && mode != "unsubscribe" {
		return "", &customerrors.ErrChallengeVerification{Reason: "некорректный hub.mode: " + mode}
	}

	return challenge, nil
}
