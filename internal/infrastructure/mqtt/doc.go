// Package mqtt provides MQTT client connectivity for the RFLink bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with a configurable payload size limit
//   - Command subscriptions restored after every reconnect
//   - Last Will and Testament ("lost" on the device $state topic)
//
// # Topic Layout
//
// Topics follow the Homie convention of the original gateway firmware:
//
//	homie/<gateway-id>/$state                 ready | disconnected | lost
//	homie/<gateway-id>/$name
//	homie/<gateway-id>/$health                periodic JSON health report
//	homie/<gateway-id>/<node>/<property>      rawmsg, JSONmsg, error, ...
//	homie/<gateway-id>/<node>/<property>/set  to-send, publish-mode, mode
//
// # Security Considerations
//
//   - Use TLS (cfg.Broker.TLS=true) when the broker is not on the local host
//   - Credentials should come from RFLINK_MQTT_USERNAME/RFLINK_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Gateway)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Publish(topics.Property("rawmsg"), []byte(line), client.QoS(), false)
package mqtt
