package mq

// nextPacketID returns an unused MQTT packet identifier, wrapping from
// 65535 back to 1 (0 is reserved and never valid) and skipping any value
// still claimed by a pending publish or unsubscribe. It scans at most the
// full 16-bit space once before giving up, so a client with every
// identifier in flight fails fast instead of looping forever.
func (c *Client) nextPacketID() (uint16, error) {
	for attempts := 0; attempts < 65535; attempts++ {
		c.lastPacketID++
		if c.lastPacketID == 0 {
			c.lastPacketID = 1
		}
		if !c.store.HasPacketID(c.lastPacketID) {
			return c.lastPacketID, nil
		}
	}
	return 0, ErrIdentifiersExhausted
}
