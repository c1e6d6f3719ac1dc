package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/verroute/internal/registry"
)

// HealthStatus is the body of the health and readiness endpoints.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
	Table     string    `json:"table,omitempty"`
	Entries   int       `json:"entries,omitempty"`
}

// RouteInfo describes one route key of the live table.
type RouteInfo struct {
	Route   string      `json:"route"`
	Methods []string    `json:"methods"`
	Paths   []string    `json:"paths"`
	Entries []EntryInfo `json:"entries"`
}

// EntryInfo describes one mapping entry.
type EntryInfo struct {
	Handler  string                 `json:"handler"`
	Priority int                    `json:"priority,omitempty"`
	Versions []registry.VersionSpec `json:"versions,omitempty"`
}

// RoutesResponse is the body of the route listing endpoint.
type RoutesResponse struct {
	Table      string      `json:"table"`
	Comparator string      `json:"comparator"`
	BuiltAt    time.Time   `json:"builtAt"`
	Routes     []RouteInfo `json:"routes"`
	Warnings   []string    `json:"warnings,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleReady reports ready once a frozen table is live.
func (s *Server) handleReady(c *gin.Context) {
	t := s.table.Load()
	if t == nil || !t.Registry.Frozen() {
		c.JSON(http.StatusServiceUnavailable, HealthStatus{
			Status:    "not ready",
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Table:     t.Name,
		Entries:   t.Registry.Len(),
	})
}

func (s *Server) handleRoutes(c *gin.Context) {
	t := s.table.Load()
	if t == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "route table not loaded"})
		return
	}

	resp := RoutesResponse{
		Table:      t.Name,
		Comparator: t.Comparator,
		BuiltAt:    t.BuiltAt,
		Routes:     make([]RouteInfo, 0, t.Router.Len()),
	}
	for _, r := range t.Router.Routes() {
		info := RouteInfo{
			Route:   r.Name,
			Methods: r.Key.Methods,
			Paths:   r.Key.Paths,
			Entries: make([]EntryInfo, 0, len(r.Entries)),
		}
		for _, e := range r.Entries {
			info.Entries = append(info.Entries, EntryInfo{
				Handler:  e.Handler.String(),
				Priority: e.Priority,
				Versions: e.Specs,
			})
		}
		resp.Routes = append(resp.Routes, info)
	}
	for _, w := range t.Registry.Warnings() {
		resp.Warnings = append(resp.Warnings, w.String())
	}

	c.JSON(http.StatusOK, resp)
}
