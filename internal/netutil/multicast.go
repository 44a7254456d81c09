// Package netutil provides the IPv4 multicast socket setup shared by the
// netstore server and client: servers join the configured group on every
// interface and listen on INADDR_ANY; clients send requests to the group
// and rely on direct UDP replies for responses.
package netutil

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
)

// ListenMulticast binds a UDP socket on INADDR_ANY:port and joins group on
// every multicast-capable interface, for server-side receive.
func ListenMulticast(group string, port int) (*net.UDPConn, *ipv4.PacketConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, nil, fmt.Errorf("listen udp: %w", err)
	}
	pc := ipv4.NewPacketConn(conn)
	ifaces, err := net.Interfaces()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("list interfaces: %w", err)
	}
	groupAddr := &net.UDPAddr{IP: net.ParseIP(group)}
	joined := 0
	for i := range ifaces {
		iface := ifaces[i]
		if iface.Flags&net.FlagMulticast == 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if err := pc.JoinGroup(&iface, groupAddr); err == nil {
			joined++
		}
	}
	if joined == 0 {
		conn.Close()
		return nil, nil, fmt.Errorf("joined no multicast-capable interface for group %s", group)
	}
	return conn, pc, nil
}

// DialMulticast opens a UDP socket suitable for sending requests to
// (group, port) from the client side, with loopback enabled so a client
// and server on the same host can talk to each other.
func DialMulticast(group string, port int) (*net.UDPConn, *ipv4.PacketConn, *net.UDPAddr, error) {
	groupAddr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listen udp: %w", err)
	}
	pc := ipv4.NewPacketConn(conn)
	_ = pc.SetMulticastTTL(1)
	_ = pc.SetMulticastLoopback(true)
	return conn, pc, groupAddr, nil
}
