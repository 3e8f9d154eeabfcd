// Package mqtt provides MQTT client connectivity for Chroma Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Chroma uses MQTT as its actuator bus: colour commands go out on
// per-light command topics, and lights (or the gateways fronting them)
// publish availability and state back on per-light state topics.
//
//	Chroma Core ↔ MQTT Broker ↔ Lights / Gateways
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all light state updates
//	err = client.Subscribe(mqtt.Topics{}.AllLightStates(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a colour command
//	topic := mqtt.Topics{}.LightCommand("light-living-main")
//	client.Publish(topic, []byte(`{"color":"#ff8800"}`), 1, false)
package mqtt
