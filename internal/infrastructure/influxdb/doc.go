// Package influxdb provides time-series telemetry storage for Chroma Core.
//
// # Architecture
//
// This package wraps the official InfluxDB v2 Go client with:
//   - Non-blocking batched writes (fire and forget)
//   - Graceful degradation when InfluxDB is unavailable
//   - Typed helpers for the two measurements the engine emits
//
// # Measurements
//
// Colour apply outcomes (one point per command publish):
//
//	colour_apply,light_id=light-hallway-1 success=true
//	colour_apply,light_id=light-porch,error_kind=unreachable success=false
//
// Animation lifecycle events (one point per start/stop):
//
//	animation,mode=synchronised,event=started run_id="...",targets=4
//
// # Design Decisions
//
// Writes never block the caller: the underlying client batches points and
// flushes on an interval, and write failures surface through an optional
// error callback rather than a return value. Telemetry is best-effort; a
// down InfluxDB must never stall a colour apply or an animation tick.
//
// The client is optional. When disabled in configuration, Connect returns
// ErrDisabled and callers run without telemetry.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // telemetry disabled or unreachable, continue without it
//	}
//	defer client.Close()
//
//	client.RecordApply("light-hallway-1", true, "")
//	client.RecordAnimation(runID, "staggered", 6, "started")
package influxdb
