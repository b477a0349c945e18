package net

import (
	"errors"
	"net"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

type IPv4Addr string

var ErrNoValidNetworkInterfaceFound = errors.New("no valid network interface found")

// FindAvailableIPv4Addr returns the first IPv4 address of an up,
// non-loopback interface.
func FindAvailableIPv4Addr() (IPv4Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return "", err
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipNet.IP.To4(); ip4 != nil {
					return IPv4Addr(ip4.String()), nil
				}
			}
		}
	}
	return "", ErrNoValidNetworkInterfaceFound
}

// AdvertiseAddr splits a listen address into the host and port other
// services should use. Wildcard hosts are replaced with an interface
// address.
func AdvertiseAddr(listenAddr string) (IPv4Addr, int, error) {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", 0, pkgerrors.Wrapf(err, "invalid listen address %q", listenAddr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, pkgerrors.Wrapf(err, "invalid port in %q", listenAddr)
	}
	if host != "" && host != "0.0.0.0" && host != "::" {
		return IPv4Addr(host), port, nil
	}
	addr, err := FindAvailableIPv4Addr()
	if err != nil {
		return "", 0, err
	}
	return addr, port, nil
}
