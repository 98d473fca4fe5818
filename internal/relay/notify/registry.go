package notify

import (
	"sync"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
	"github.com/central-university-dev/go-tubecord/internal/domain/models"
)

// DestinationRegistry хранит вебхуки, загруженные из конфигурации.
type DestinationRegistry struct {
	mu           sync.RWMutex
	destinations []models.Destination
}

func NewDestinationRegistry(destinations []models.Destination) *DestinationRegistry {
	copied := make([]models.Destination, len(destinations))
	copy(copied, destinations)

	return &DestinationRegistry{destinations: copied}
}

// ForContent возвращает копии включенных вебхуков группы.
func (r *DestinationRegistry) ForContent(contentType models.ContentType) []models.Destination {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Destination

	for _, destination := range r.destinations {
		if destination.Enabled && destination.ContentType == contentType {
			result = append(result, destination)
		}
	}

	return result
}

func (r *DestinationRegistry) All() []models.Destination {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.Destination, len(r.destinations))
	copy(result, r.destinations)

	return result
}

func (r *DestinationRegistry) Enable(webhookURL string) error {
	return r.setEnabled(webhookURL, true)
}

func (r *DestinationRegistry) Disable(webhookURL string) error {
	return r.setEnabled(webhookURL, false)
}

// Remove удаляет вебхук из всех групп.
func (r *DestinationRegistry) Remove(webhookURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.destinations[:0]
	found := false

	for _, destination := range r.destinations {
		if destination.WebhookURL == webhookURL {
			found = true
			continue
		}

		kept = append(kept, destination)
	}

	r.destinations = kept

	if !found {
		return &customerrors.ErrDestinationNotFound{URL: webhookURL}
	}

	return nil
}

func (r *DestinationRegistry) setEnabled(webhookURL string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false

	for i := range r.destinations {
		if r.destinations[i].WebhookURL == webhookURL {
			r.destinations[i].Enabled = enabled
			found = true
		}
	}

	if !found {
		return &customerrors.ErrDestinationNotFound{URL: webhookURL}
	}

	return nil
}
