package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordApply writes a colour apply outcome to InfluxDB.
//
// This is the telemetry hook for the colour applier: one point per apply
// attempt, tagged with the light and the failure classification so
// dashboards can chart apply success rates per light.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - lightID: The light the colour was applied to
//   - success: Whether the command publish succeeded
//   - errorKind: Failure classification, empty on success
func (c *Client) RecordApply(lightID string, success bool, errorKind string) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"light_id": lightID,
	}
	if errorKind != "" {
		tags["error_kind"] = errorKind
	}

	point := write.NewPoint(
		"colour_apply",
		tags,
		map[string]interface{}{
			"success": success,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// RecordAnimation writes an animation lifecycle event to InfluxDB.
//
// One point per start/stop, tagged by mode so the activity of
// synchronised versus staggered group runs can be compared over time.
//
// Parameters:
//   - runID: Unique identifier of the animation run
//   - mode: "individual", "synchronised", or "staggered"
//   - targets: Number of lights in the run
//   - event: "started" or "stopped"
func (c *Client) RecordAnimation(runID string, mode string, targets int, event string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"animation",
		map[string]string{
			"mode":  mode,
			"event": event,
		},
		map[string]interface{}{
			"run_id":  runID,
			"targets": targets,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
