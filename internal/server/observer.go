package server

import (
	"github.com/vyrodovalexey/verroute/internal/extractor"
	"github.com/vyrodovalexey/verroute/internal/observability"
	"github.com/vyrodovalexey/verroute/internal/router"
)

// resolutionObserver records resolution outcomes as metrics and debug
// logs.
type resolutionObserver struct {
	metrics *observability.Metrics
	logger  observability.Logger
}

// newResolutionObserver returns an observer. A nil metrics disables
// recording.
func newResolutionObserver(metrics *observability.Metrics, logger observability.Logger) router.Observer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &resolutionObserver{metrics: metrics, logger: logger}
}

// OnMatched implements router.Observer.
func (o *resolutionObserver) OnMatched(route string, sel router.Selection) {
	if o.metrics != nil {
		o.metrics.RecordResolution(route, observability.OutcomeMatched)
		o.metrics.RecordDispatch(route, sel.Handler().String(), sel.Version)
	}
	o.logger.Debug("version resolved",
		observability.String("route", route),
		observability.String("handler", sel.Handler().String()),
		observability.String("matched_version", sel.Version),
		observability.String("request_version", sel.Request.Version),
		observability.Int("candidates", sel.Candidates),
	)
}

// OnNoMatch implements router.Observer.
func (o *resolutionObserver) OnNoMatch(route string, rv extractor.RequestVersionContext) {
	if o.metrics != nil {
		o.metrics.RecordResolution(route, observability.OutcomeNoMatch)
	}
	o.logger.Debug("no compatible version",
		observability.String("route", route),
		observability.String("request_version", rv.Version),
		observability.String("group", rv.Group),
	)
}

// OnMalformed implements router.Observer.
func (o *resolutionObserver) OnMalformed(_ string, _ string) {
	if o.metrics != nil {
		o.metrics.RecordMalformedVersion()
	}
}
