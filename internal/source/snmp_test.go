package source

import (
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
)

// fakeAgent is a v2c agent on loopback that answers every GET with the
// varbind returned by reply. A nil reply makes it drop the request.
type fakeAgent struct {
	conn  *net.UDPConn
	reply func(oid string) *gosnmp.SnmpPDU
	gets  atomic.Int32
}

func startAgent(t *testing.T, reply func(oid string) *gosnmp.SnmpPDU) (*fakeAgent, *dashboard.SourceConfig) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	a := &fakeAgent{conn: conn, reply: reply}
	t.Cleanup(func() { _ = conn.Close() })
	go a.serve()

	addr := conn.LocalAddr().(*net.UDPAddr)
	return a, &dashboard.SourceConfig{
		Type:    dashboard.SourceSNMP,
		Host:    "127.0.0.1",
		Port:    addr.Port,
		Version: "2c",
	}
}

func (a *fakeAgent) serve() {
	decoder := &gosnmp.GoSNMP{}
	buf := make([]byte, 65535)
	for {
		n, from, err := a.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		req, err := decoder.SnmpDecodePacket(buf[:n])
		if err != nil || len(req.Variables) == 0 {
			continue
		}
		a.gets.Add(1)
		pdu := a.reply(req.Variables[0].Name)
		if pdu == nil {
			continue
		}
		pdu.Name = req.Variables[0].Name
		resp := &gosnmp.SnmpPacket{
			Version:   gosnmp.Version2c,
			Community: req.Community,
			PDUType:   gosnmp.GetResponse,
			RequestID: req.RequestID,
			Variables: []gosnmp.SnmpPDU{*pdu},
		}
		out, err := resp.MarshalMsg()
		if err != nil {
			continue
		}
		_, _ = a.conn.WriteToUDP(out, from)
	}
}

func TestSNMPGauge(t *testing.T) {
	_, cfg := startAgent(t, func(string) *gosnmp.SnmpPDU {
		return &gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint32(42)}
	})
	s, err := NewSNMP(cfg, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sample, err := s.Query(ctx, "1.3.6.1.4.1.2021.10.1.5.1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, sample.Value)
	assert.Equal(t, ".1.3.6.1.4.1.2021.10.1.5.1", sample.Labels["oid"])
}

func TestSNMPNoSuchInstance(t *testing.T) {
	_, cfg := startAgent(t, func(string) *gosnmp.SnmpPDU {
		return &gosnmp.SnmpPDU{Type: gosnmp.NoSuchInstance}
	})
	s, err := NewSNMP(cfg, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = s.Query(ctx, "1.3.6.1.2.1.1.99.0")
	assert.ErrorIs(t, err, engine.ErrEmptyResult)
}

func TestSNMPCounterRate(t *testing.T) {
	var calls atomic.Int32
	_, cfg := startAgent(t, func(string) *gosnmp.SnmpPDU {
		n := calls.Add(1)
		return &gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: uint32(1000 * n)}
	})
	s, err := NewSNMP(cfg, time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = s.Query(ctx, "rate(1.3.6.1.2.1.2.2.1.10.1)")
	assert.ErrorIs(t, err, engine.ErrEmptyResult, "first reading has no baseline")

	time.Sleep(50 * time.Millisecond)
	sample, err := s.Query(ctx, "rate(1.3.6.1.2.1.2.2.1.10.1)")
	require.NoError(t, err)
	assert.Greater(t, sample.Value, 0.0)
}

func TestSNMPTimeout(t *testing.T) {
	agent, cfg := startAgent(t, func(string) *gosnmp.SnmpPDU { return nil })
	s, err := NewSNMP(cfg, 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = s.Query(ctx, "1.3.6.1.2.1.1.3.0")
	require.Error(t, err)
	assert.Equal(t, engine.PollTimeout, engine.Classify(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.GreaterOrEqual(t, agent.gets.Load(), int32(1))
}

func TestSNMPInvalidOID(t *testing.T) {
	s, err := NewSNMP(&dashboard.SourceConfig{Type: dashboard.SourceSNMP, Host: "127.0.0.1"}, time.Second, nil)
	require.NoError(t, err)
	_, err = s.Query(context.Background(), "sysUpTime.0")
	assert.ErrorIs(t, err, ErrInvalidOID)
	assert.NoError(t, s.Close(), "close before connect")
}

func TestParseOIDQuery(t *testing.T) {
	tests := []struct {
		in   string
		oid  string
		rate bool
		ok   bool
	}{
		{"1.3.6.1.2.1.1.3.0", ".1.3.6.1.2.1.1.3.0", false, true},
		{".1.3.6.1.2.1.1.3.0", ".1.3.6.1.2.1.1.3.0", false, true},
		{" rate( 1.3.6.1.2.1.2.2.1.10.2 ) ", ".1.3.6.1.2.1.2.2.1.10.2", true, true},
		{"rate(1.3.6", "", false, false},
		{"1..3", "", false, false},
		{"1.3.x", "", false, false},
		{"", "", false, false},
		{"rate()", "", false, false},
		{"up{job=\"node\"}", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := parseOIDQuery(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidOID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.oid, q.oid)
			assert.Equal(t, tt.rate, q.rate)
		})
	}
}

func TestPDUFloat(t *testing.T) {
	tests := []struct {
		pdu  gosnmp.SnmpPDU
		want float64
	}{
		{gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: -7}, -7},
		{gosnmp.SnmpPDU{Type: gosnmp.Gauge32, Value: uint(95)}, 95},
		{gosnmp.SnmpPDU{Type: gosnmp.Counter32, Value: uint(4294967295)}, 4294967295},
		{gosnmp.SnmpPDU{Type: gosnmp.Counter64, Value: uint64(1) << 40}, 1 << 40},
		{gosnmp.SnmpPDU{Type: gosnmp.TimeTicks, Value: uint32(360000)}, 360000},
		{gosnmp.SnmpPDU{Type: gosnmp.OpaqueFloat, Value: float32(1.5)}, 1.5},
		{gosnmp.SnmpPDU{Type: gosnmp.OpaqueDouble, Value: 2.25}, 2.25},
		{gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte(" 0.75 ")}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.pdu.Type.String(), func(t *testing.T) {
			got, err := pduFloat(tt.pdu)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPDUFloatEmpty(t *testing.T) {
	for _, typ := range []gosnmp.Asn1BER{gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null} {
		_, err := pduFloat(gosnmp.SnmpPDU{Type: typ})
		assert.ErrorIs(t, err, engine.ErrEmptyResult, typ.String())
	}
}

func TestPDUFloatRejects(t *testing.T) {
	_, err := pduFloat(gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("eth0")})
	assert.Error(t, err)
	_, err = pduFloat(gosnmp.SnmpPDU{Type: gosnmp.ObjectIdentifier, Value: ".1.3"})
	assert.Error(t, err)
}

func TestCounterRate(t *testing.T) {
	now := time.Now()
	rate, err := counterRate(
		counterSample{value: 1000, at: now.Add(-10 * time.Second)},
		counterSample{value: 2000, at: now},
	)
	require.NoError(t, err)
	assert.InDelta(t, 100, rate, 0.001)
}

func TestCounterRateWrap(t *testing.T) {
	now := time.Now()
	_, err := counterRate(
		counterSample{value: 100, at: now.Add(-10 * time.Second)},
		counterSample{value: 50, at: now},
	)
	assert.ErrorIs(t, err, ErrCounterWrap)
}

func TestCounterRateZeroElapsed(t *testing.T) {
	now := time.Now()
	_, err := counterRate(counterSample{value: 1, at: now}, counterSample{value: 2, at: now})
	assert.Error(t, err)
}

func TestSNMPClientVersions(t *testing.T) {
	c, err := newSNMPClient(&dashboard.SourceConfig{Host: "r1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version2c, c.Version)
	assert.Equal(t, "public", c.Community)
	assert.Equal(t, uint16(161), c.Port)
	assert.Equal(t, defaultSNMPTimeout, c.Timeout)

	c, err = newSNMPClient(&dashboard.SourceConfig{Host: "r1", Version: "1", Community: "ro", Port: 1161}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version1, c.Version)
	assert.Equal(t, "ro", c.Community)
	assert.Equal(t, uint16(1161), c.Port)

	c, err = newSNMPClient(&dashboard.SourceConfig{
		Host: "r1", Version: "3", Username: "mon",
		AuthProtocol: "sha256", AuthPassphrase: "authpass",
		PrivProtocol: "aes256", PrivPassphrase: "privpass",
	}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, gosnmp.Version3, c.Version)
	assert.Equal(t, gosnmp.AuthPriv, c.MsgFlags)
	usm, ok := c.SecurityParameters.(*gosnmp.UsmSecurityParameters)
	require.True(t, ok)
	assert.Equal(t, "mon", usm.UserName)
	assert.Equal(t, gosnmp.SHA256, usm.AuthenticationProtocol)
	assert.Equal(t, gosnmp.AES256, usm.PrivacyProtocol)

	_, err = newSNMPClient(&dashboard.SourceConfig{Host: "r1", Version: "4"}, time.Second)
	assert.Error(t, err)
}

func TestSNMPv3Flags(t *testing.T) {
	assert.Equal(t, gosnmp.NoAuthNoPriv, snmpv3MsgFlags(&dashboard.SourceConfig{}))
	assert.Equal(t, gosnmp.AuthNoPriv, snmpv3MsgFlags(&dashboard.SourceConfig{AuthProtocol: "SHA", AuthPassphrase: "x"}))
	assert.Equal(t, gosnmp.MD5, snmpv3AuthProto("md5"))
	assert.Equal(t, gosnmp.NoAuth, snmpv3AuthProto(""))
	assert.Equal(t, gosnmp.DES, snmpv3PrivProto("DES"))
	assert.Equal(t, gosnmp.NoPriv, snmpv3PrivProto("bogus"))
}

func TestNewSourceFactory(t *testing.T) {
	src, err := New(nil, Defaults{PrometheusURL: "http://prom:9090"})
	require.NoError(t, err)
	p, ok := src.(*Prometheus)
	require.True(t, ok)
	assert.Equal(t, "http://prom:9090", p.URL())

	src, err = New(&dashboard.SourceConfig{Type: dashboard.SourcePrometheus, URL: "http://other:9090"}, Defaults{PrometheusURL: "http://prom:9090"})
	require.NoError(t, err)
	assert.Equal(t, "http://other:9090", src.(*Prometheus).URL())

	src, err = New(&dashboard.SourceConfig{Type: dashboard.SourceSNMP, Host: "r1"}, Defaults{})
	require.NoError(t, err)
	_, ok = src.(*SNMP)
	assert.True(t, ok)

	_, err = New(&dashboard.SourceConfig{Type: "influx"}, Defaults{})
	assert.Error(t, err)
}

func TestCheckQuery(t *testing.T) {
	assert.NoError(t, CheckQuery(nil, "rate(http_requests_total[5m])"))
	snmp := &dashboard.SourceConfig{Type: dashboard.SourceSNMP, Host: "r1"}
	assert.NoError(t, CheckQuery(snmp, "1.3.6.1.2.1.1.3.0"))
	assert.ErrorIs(t, CheckQuery(snmp, "up"), ErrInvalidOID)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "prometheus http://localhost:9090", Describe(nil, "http://localhost:9090"))
	assert.Equal(t, "snmp r1:"+strconv.Itoa(DefaultSNMPPort), Describe(&dashboard.SourceConfig{Type: dashboard.SourceSNMP, Host: "r1"}, ""))
}
