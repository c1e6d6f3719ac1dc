package registry

import (
	"github.com/vyrodovalexey/verroute/internal/observability"
)

// canOverride reports whether a collision between existing and incoming
// is arbitrated by priority: both plain and from different sources.
func canOverride(existing *MappingEntry, incoming *MappingEntry) bool {
	return !existing.Versioned() &&
		!incoming.Versioned() &&
		existing.Handler.Source != incoming.Handler.Source
}

// resolveOverride arbitrates a plain collision. A strictly lower priority
// replaces the existing entry in place; anything else keeps the existing
// entry and records a warning. Must be called with r.mu held.
func (r *Registry) resolveOverride(fp string, existing, incoming *MappingEntry) {
	if incoming.Priority < existing.Priority {
		incoming.seq = existing.seq
		r.replace(fp, existing, incoming)

		r.logger.Warn("mapping overridden by higher precedence handler",
			observability.String("route", incoming.Key.String()),
			observability.String("displaced", existing.Handler.String()),
			observability.Int("displaced_priority", existing.Priority),
			observability.String("handler", incoming.Handler.String()),
			observability.Int("priority", incoming.Priority),
		)
		r.metrics.registrations.WithLabelValues(resultOverridden).Inc()
		return
	}

	w := &RegistrationConflictWarning{
		Key:              incoming.Key,
		Kept:             existing.Handler,
		KeptPriority:     existing.Priority,
		Rejected:         incoming.Handler,
		RejectedPriority: incoming.Priority,
	}
	r.warnings = append(r.warnings, w)

	r.logger.Warn("conflicting registration rejected",
		observability.String("route", incoming.Key.String()),
		observability.String("kept", existing.Handler.String()),
		observability.Int("kept_priority", existing.Priority),
		observability.String("rejected", incoming.Handler.String()),
		observability.Int("rejected_priority", incoming.Priority),
	)
	r.metrics.registrations.WithLabelValues(resultRejected).Inc()
}
