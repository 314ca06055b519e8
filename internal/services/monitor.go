package services

import (
	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/remotelist/jobs-aggregator/internal/events"
)

// RefreshMonitor watches completed refresh runs. Zero jobs is not an error
// anywhere in the pipeline, so this is the place that decides it is cause
// for alarm.
type RefreshMonitor struct {
	bus EventBus.Bus
}

func NewRefreshMonitor(bus EventBus.Bus) (*RefreshMonitor, error) {
	m := &RefreshMonitor{bus: bus}
	if err := bus.Subscribe(events.RefreshCompletedTopic, m.onRefreshCompleted); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RefreshMonitor) onRefreshCompleted(event events.RefreshCompleted) {

	failed := 0
	for _, report := range event.Metadata.Sources {
		if !report.Success {
			failed++
			log.Warnf("source %s contributed no jobs: %s", report.SourceName, report.Error)
		}
	}

	if event.Metadata.JobCount == 0 {
		log.Warnf("refresh produced zero jobs, %d/%d sources failed",
			failed, len(event.Metadata.Sources))
	}
}
