package annotate

import (
	"fmt"
	"time"
)

// HealthStatus represents the overall health state of a component.
type HealthStatus string

const (
	// HealthOK indicates the component is functioning normally.
	HealthOK HealthStatus = "ok"
	// HealthDegraded indicates partial functionality or non-critical issues.
	HealthDegraded HealthStatus = "degraded"
	// HealthUnhealthy indicates the component is not functioning.
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck contains the health of an Overlay and its components.
type HealthCheck struct {
	Status    HealthStatus
	Timestamp time.Time
	// Uptime is zero when the overlay is not running.
	Uptime     time.Duration
	Components map[string]ComponentHealth
	Message    string
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  HealthStatus
	Message string
}

// IsHealthy returns true if the overall status is HealthOK.
func (h HealthCheck) IsHealthy() bool {
	return h.Status == HealthOK
}

// IsDegraded returns true if the overall status is HealthDegraded.
func (h HealthCheck) IsDegraded() bool {
	return h.Status == HealthDegraded
}

// IsUnhealthy returns true if the overall status is HealthUnhealthy.
func (h HealthCheck) IsUnhealthy() bool {
	return h.Status == HealthUnhealthy
}

// Health reports on the instance, its drawing surface, the compositor of
// windowed overlays and recent errors.
func (o *overlayImpl) Health() HealthCheck {
	now := time.Now()
	components := make(map[string]ComponentHealth)
	running := o.running.Load()

	o.mu.RLock()
	var uptime time.Duration
	if running && !o.startTime.IsZero() {
		uptime = now.Sub(o.startTime)
	}
	window, canvas := o.window, o.canvas
	o.mu.RUnlock()

	if running {
		components["instance"] = ComponentHealth{HealthOK, "Overlay is running"}
	} else {
		components["instance"] = ComponentHealth{HealthUnhealthy, "Overlay is not running"}
	}

	snap := o.metrics.Snapshot()
	switch {
	case !running:
	case canvas != nil:
		components["canvas"] = ComponentHealth{HealthOK,
			fmt.Sprintf("Headless canvas, %d gestures, %d draw calls", snap.Gestures, snap.DrawCalls)}
	case window != nil:
		components["window"] = ComponentHealth{HealthOK, "Overlay window open"}
		components["compositor"] = window.compositorHealth()
	}

	lastErr := o.getError()
	if lastErr != nil {
		components["errors"] = ComponentHealth{HealthDegraded, lastErr.Error()}
	} else {
		components["errors"] = ComponentHealth{HealthOK, "No recent errors"}
	}

	overallStatus := HealthOK
	var message string
	switch {
	case !running:
		overallStatus = HealthUnhealthy
		message = "Overlay is not running"
	case lastErr != nil:
		overallStatus = HealthDegraded
		message = "Running with recent errors"
	case components["compositor"].Status == HealthDegraded:
		overallStatus = HealthDegraded
		message = components["compositor"].Message
	default:
		message = "All components healthy"
	}

	return HealthCheck{
		Status:     overallStatus,
		Timestamp:  now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}
