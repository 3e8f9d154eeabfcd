// Package animation provides the colour animation engine for Chroma Core.
//
// Animations walk lights through a cyclic colour gradient, one apply per
// tick. A single light runs its own Loop; several lights run together in a
// GroupLoop, either synchronised (one batch apply per tick, members offset
// around the gradient cycle) or staggered (same colour walk, each member's
// apply jittered inside the tick window). The Manager owns every loop and
// enforces the process-wide rules: at most one loop per light, at most one
// group loop per process.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────┐
//	│                 Manager (manager.go)                    │
//	│  Registry of running loops, guarded by one mutex        │
//	│  ┌──────────────┐     ┌───────────────────────────┐   │
//	│  │ Loop per     │     │ GroupLoop (one, max)       │   │
//	│  │ light        │     │ synchronised / staggered   │   │
//	│  │ (loop.go)    │     │ (group.go)                 │   │
//	│  └──────┬───────┘     └────────────┬──────────────┘   │
//	│         │                          │                   │
//	│         ▼                          ▼                   │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Tick pipeline                                │     │
//	│  │  1. Read gradient[cursor] (+offset per light) │     │
//	│  │  2. Apply via ColourApplier                   │     │
//	│  │  3. Success: advance cursor, sleep speed      │     │
//	│  │     Failure: keep cursor, sleep 1s backoff    │     │
//	│  └──────────────────────────────────────────────┘     │
//	└────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Loop: Single-light gradient walker with its own goroutine
//   - GroupLoop: Multi-light walker with live membership and fixed offsets
//   - Manager: Mutex-guarded registry enforcing the one-loop-per-target
//     and one-group-per-process rules
//   - Mode: Group timing mode (synchronised or staggered)
//
// # Thread Safety
//
// Manager, Loop, and GroupLoop are safe for concurrent use. Stop is
// synchronous: it cancels the loop's context and joins the goroutine (and,
// for staggered groups, waits for in-flight applies), so after Stop returns
// no further colour command can be published by that loop.
//
// # Failure Model
//
// A failed apply never terminates a loop. The loop logs the failure, keeps
// the cursor where it is, and retries the same colour after a fixed
// backoff. Lights that drop offline mid-animation rejoin the walk as soon
// as they come back.
//
// # Usage
//
//	applier := light.NewApplier(registry, mqttClient, log)
//	manager := animation.NewManager(applier, hub, log)
//
//	gradient := colour.BuildGradient(palette, 10)
//	if err := manager.StartSynchronisedAnimation(lightIDs, gradient, 2*time.Second, opts); err != nil {
//	    return err
//	}
//
//	manager.StopAll() // on shutdown
package animation
