package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ipBoolTestCase struct {
	ip  string
	out bool
	msg string
}

type parseSubnetsTestCase struct {
	nets    []string
	out     []*net.IPNet
	wantErr bool
	msg     string
}

func TestIPIsPublicRoutable(t *testing.T) {

	testCases := []ipBoolTestCase{
		{"10.1.2.3", false, "RFC1918 Class A"},
		{"172.16.1.2", false, "RFC1918 Class B"},
		{"192.168.1.2", false, "RFC1918 Class C"},
		{"100.64.3.4", false, "carrier grade NAT"},
		{"fc00:1234::", false, "IPv6 local address"},
		{"127.0.0.5", false, "IPv4 loopback"},
		{"::1", false, "IPv6 loopback"},
		{"169.254.1.2", false, "IPv4 link local"},
		{"fe80:1234::", false, "IPv6 link local"},
		{"224.0.0.1", false, "IPv4 multicast"},
		{"ff12:1234::", false, "IPv6 multicast"},
		{"0.0.0.0", false, "unspecified"},
		{"8.8.8.8", true, "google dns ipv4"},
		{"203.0.113.5", true, "documentation range"},
		{"2001:4860:4860::8888", true, "google dns ipv6"},
	}

	for _, testCase := range testCases {
		output := IPIsPubliclyRoutable(net.ParseIP(testCase.ip))
		assert.Equal(t, testCase.out, output, testCase.msg)
	}
}

func TestIsDottedQuad(t *testing.T) {
	testCases := []ipBoolTestCase{
		{"203.0.113.5", true, "documentation address"},
		{"1.1.1.1", true, "single digit octets"},
		{"999.999.999.999", true, "octets are not range checked"},
		{"not-an-ip", false, "hostname like string"},
		{"1.2.3", false, "three groups"},
		{"1.2.3.4.5", false, "five groups"},
		{"1.2.3.1234", false, "four digit group"},
		{"1.2.3.4 ", false, "trailing space"},
		{"::1", false, "IPv6"},
		{"", false, "empty"},
		{"a.b.c.d", false, "letters"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.out, IsDottedQuad(testCase.ip), testCase.msg)
	}
}

func TestParseSubnets(t *testing.T) {
	_, ten, _ := net.ParseCIDR("10.0.0.0/8")
	_, single, _ := net.ParseCIDR("1.2.3.4/32")
	_, single6, _ := net.ParseCIDR("2001:db8::1/128")

	testCases := []parseSubnetsTestCase{
		{[]string{"10.0.0.0/8"}, []*net.IPNet{ten}, false, "CIDR"},
		{[]string{"1.2.3.4", "2001:db8::1"}, []*net.IPNet{single, single6}, false, "bare addresses"},
		{[]string{"10.0.0.0/8", "bogus"}, []*net.IPNet{ten}, true, "bad entry"},
	}

	for _, testCase := range testCases {
		out, err := ParseSubnets(testCase.nets)
		if testCase.wantErr {
			assert.Error(t, err, testCase.msg)
		} else {
			assert.NoError(t, err, testCase.msg)
		}
		assert.Equal(t, testCase.out, out, testCase.msg)
	}
}
