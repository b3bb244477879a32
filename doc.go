// Package mq provides a single-threaded MQTT 3.1.1 client.
//
// There is no background goroutine and no channel-based request/response
// machinery: a Client is driven entirely by calling Loop (or step, via
// Loop) from the caller's own goroutine. Publish, Subscribe, Unsubscribe,
// and Ping write directly to the transport; Loop reads whatever the broker
// has sent, dispatches it, and handles keep-alive and retransmission.
//
// # Quick start
//
//	client, err := mq.New("tcp://localhost:1883", mq.WithClientID("sensor-1"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Connect(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Subscribe("sensors/+/temperature", mq.AtLeastOnce,
//	    func(c *mq.Client, msg mq.Message) {
//	        fmt.Printf("%s: %s\n", msg.Topic, msg.Payload)
//	    })
//
//	if err := client.Publish("sensors/1/temperature", []byte("22.5"), mq.AtLeastOnce, false); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Loop(true); err != nil {
//	    log.Fatal(err)
//	}
//
// # Transports
//
// The server URL's scheme selects the transport: tcp:// and (with
// WithTLS) tls:///ssl:///mqtts:// dial a net.Conn directly; ws:// and
// wss:// dial a websocket framed as MQTT's binary subprotocol.
//
// # Quality of service
//
// Only QoS 0 (mq.AtMostOnce) and QoS 1 (mq.AtLeastOnce) are implemented.
// QoS 1 publishes are tracked in the Client's SessionStore and
// retransmitted with DUP set until PUBACK arrives. Publish rejects QoS 2.
//
// # Wildcards
//
// Subscribe filters may use '+' (single level) and '#' (multi level,
// trailing only). Filters beginning with '+' or '#' never match topics
// beginning with '$', per the MQTT spec's reserved-topic rule.
//
// # Collaborators
//
// ConnectionSettings.Logger and ConnectionSettings.Clock are pluggable:
// swap in a *slog.Logger backed by whatever sink you like, or a fake Clock
// for deterministic keep-alive tests. The Client's session state sits
// behind the SessionStore interface, but New always installs the in-memory
// implementation and no option supplies a different one.
package mq
