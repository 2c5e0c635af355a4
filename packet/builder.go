package packet

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// UDPBuilder serializes Ethernet/IPv4/UDP frames.
type UDPBuilder struct {
	srcMAC, dstMAC   net.HardwareAddr
	srcIP, dstIP     net.IP
	srcPort, dstPort uint16
	payload          []byte
}

// MakeUDPBuilder creates a builder with locally administered addresses.
func MakeUDPBuilder() UDPBuilder {
	return UDPBuilder{
		srcMAC:  net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
		dstMAC:  net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
		srcIP:   net.IPv4(10, 0, 0, 1),
		dstIP:   net.IPv4(10, 0, 0, 2),
		srcPort: 1234,
		dstPort: 4321,
	}
}

// WithMACs sets the source and destination hardware addresses.
func (b UDPBuilder) WithMACs(src, dst net.HardwareAddr) UDPBuilder {
	b.srcMAC = src
	b.dstMAC = dst
	return b
}

// WithIPs sets the source and destination IPv4 addresses.
func (b UDPBuilder) WithIPs(src, dst net.IP) UDPBuilder {
	b.srcIP = src
	b.dstIP = dst
	return b
}

// WithPorts sets the UDP ports.
func (b UDPBuilder) WithPorts(src, dst uint16) UDPBuilder {
	b.srcPort = src
	b.dstPort = dst
	return b
}

// WithPayload sets the UDP payload.
func (b UDPBuilder) WithPayload(payload []byte) UDPBuilder {
	b.payload = payload
	return b
}

// Frame serializes a single frame.
func (b UDPBuilder) Frame() ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       b.srcMAC,
		DstMAC:       b.dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    b.srcIP.To4(),
		DstIP:    b.dstIP.To4(),
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(b.srcPort),
		DstPort: layers.UDPPort(b.dstPort),
	}

	err := udp.SetNetworkLayerForChecksum(ip)
	if err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

	err = gopacket.SerializeLayers(buf, opts,
		eth, ip, udp, gopacket.Payload(b.payload))
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Packet serializes a frame and wraps it into a packet.
func (b UDPBuilder) Packet() (*Packet, error) {
	frame, err := b.Frame()
	if err != nil {
		return nil, err
	}

	return New(frame), nil
}
