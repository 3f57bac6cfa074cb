package event

import (
	log "github.com/sirupsen/logrus"

	"storefront/pkg/common/domain"
)

// LogDispatcher writes every event to the log. It is used when no broker is configured.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(event domain.Event) error {
	log.WithFields(log.Fields{"event": event.Type(), "payload": event}).Info("domain event")
	return nil
}
