package telemetry

import (
	"fmt"
	"net"
)

// UDPSink fires each telemetry line as a single UDP datagram, mirroring
// the original's telem_sendf(TELEM_BCDS, ...) fire-and-forget calls: a
// dropped packet is acceptable, a blocked decoder is not.
type UDPSink struct {
	conn net.Conn
	tag  string
}

// NewUDPSink dials target ("host:port") once and reuses the connection
// for every subsequent send.
func NewUDPSink(target, tag string) (*UDPSink, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dial %s: %w", target, err)
	}
	return &UDPSink{conn: conn, tag: tag}, nil
}

// WriteLine sends line prefixed with the sink's tag as one datagram.
// Send errors are swallowed: telemetry must never perturb detection.
func (s *UDPSink) WriteLine(line string) {
	_, _ = s.conn.Write([]byte(s.tag + "," + line + "\n"))
}

// Close releases the underlying socket.
func (s *UDPSink) Close() error {
	return s.conn.Close()
}
