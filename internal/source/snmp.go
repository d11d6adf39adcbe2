package source

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gosnmp/gosnmp"

	"github.com/tonhe/promenade/internal/dashboard"
	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/logging"
)

const (
	DefaultSNMPPort      = 161
	DefaultSNMPCommunity = "public"
	defaultSNMPTimeout   = 5 * time.Second
)

// ErrInvalidOID is returned for SNMP queries that are not a numeric OID.
var ErrInvalidOID = errors.New("invalid OID")

// SNMP answers queries with an SNMP GET of a single OID. A query is either
// a numeric OID such as "1.3.6.1.2.1.1.3.0" or "rate(OID)", which reports
// the per-second increase of a counter between consecutive polls.
type SNMP struct {
	mu        sync.Mutex
	client    *gosnmp.GoSNMP
	connected bool
	counters  map[string]counterSample
	log       *log.Logger
}

var _ engine.Source = (*SNMP)(nil)

// NewSNMP creates an SNMP source from a dashboard source block. The UDP
// socket is opened lazily on the first query.
func NewSNMP(cfg *dashboard.SourceConfig, timeout time.Duration, logger *log.Logger) (*SNMP, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := newSNMPClient(cfg, timeout)
	if err != nil {
		return nil, err
	}
	return &SNMP{
		client:   client,
		counters: make(map[string]counterSample),
		log:      logger.With("source", "snmp", "host", cfg.Host),
	}, nil
}

func newSNMPClient(cfg *dashboard.SourceConfig, timeout time.Duration) (*gosnmp.GoSNMP, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultSNMPPort
	}
	if timeout <= 0 {
		timeout = defaultSNMPTimeout
	}
	client := &gosnmp.GoSNMP{
		Target:  cfg.Host,
		Port:    uint16(port),
		Timeout: timeout,
		Retries: 1,
		MaxOids: gosnmp.MaxOids,
	}

	community := cfg.Community
	if community == "" {
		community = DefaultSNMPCommunity
	}
	switch cfg.Version {
	case "1":
		client.Version = gosnmp.Version1
		client.Community = community
	case "", "2c":
		client.Version = gosnmp.Version2c
		client.Community = community
	case "3":
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = snmpv3MsgFlags(cfg)
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 cfg.Username,
			AuthenticationProtocol:   snmpv3AuthProto(cfg.AuthProtocol),
			AuthenticationPassphrase: cfg.AuthPassphrase,
			PrivacyProtocol:          snmpv3PrivProto(cfg.PrivProtocol),
			PrivacyPassphrase:        cfg.PrivPassphrase,
		}
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", cfg.Version)
	}
	return client, nil
}

func snmpv3MsgFlags(cfg *dashboard.SourceConfig) gosnmp.SnmpV3MsgFlags {
	if cfg.PrivProtocol != "" && cfg.PrivPassphrase != "" {
		return gosnmp.AuthPriv
	}
	if cfg.AuthProtocol != "" && cfg.AuthPassphrase != "" {
		return gosnmp.AuthNoPriv
	}
	return gosnmp.NoAuthNoPriv
}

func snmpv3AuthProto(proto string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(proto) {
	case "MD5":
		return gosnmp.MD5
	case "SHA":
		return gosnmp.SHA
	case "SHA256":
		return gosnmp.SHA256
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func snmpv3PrivProto(proto string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(proto) {
	case "DES":
		return gosnmp.DES
	case "AES", "AES128":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.NoPriv
	}
}

// oidQuery is a parsed SNMP query.
type oidQuery struct {
	oid  string
	rate bool
}

func parseOIDQuery(q string) (oidQuery, error) {
	q = strings.TrimSpace(q)
	var out oidQuery
	if inner, ok := strings.CutPrefix(q, "rate("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return oidQuery{}, fmt.Errorf("%w: unclosed rate( in %q", ErrInvalidOID, q)
		}
		out.rate = true
		q = strings.TrimSpace(inner)
	}
	oid := strings.TrimPrefix(q, ".")
	if oid == "" {
		return oidQuery{}, fmt.Errorf("%w: empty", ErrInvalidOID)
	}
	for _, arc := range strings.Split(oid, ".") {
		if arc == "" {
			return oidQuery{}, fmt.Errorf("%w: %q", ErrInvalidOID, q)
		}
		if _, err := strconv.ParseUint(arc, 10, 32); err != nil {
			return oidQuery{}, fmt.Errorf("%w: %q", ErrInvalidOID, q)
		}
	}
	out.oid = "." + oid
	return out, nil
}

// Query performs one GET. Requests are serialized over the shared socket.
func (s *SNMP) Query(ctx context.Context, q string) (engine.Sample, error) {
	parsed, err := parseOIDQuery(q)
	if err != nil {
		return engine.Sample{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return engine.Sample{}, err
	}
	if !s.connected {
		if err := s.client.Connect(); err != nil {
			return engine.Sample{}, fmt.Errorf("snmp connect %s: %w", s.client.Target, err)
		}
		s.connected = true
	}
	// gosnmp caps each attempt at the context deadline.
	s.client.Context = ctx

	pkt, err := s.client.Get([]string{parsed.oid})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
			return engine.Sample{}, fmt.Errorf("snmp get %s: %w (%v)", parsed.oid, cerr, err)
		}
		return engine.Sample{}, fmt.Errorf("snmp get %s: %w", parsed.oid, err)
	}
	if pkt.Error != gosnmp.NoError {
		return engine.Sample{}, fmt.Errorf("snmp get %s: agent error %v", parsed.oid, pkt.Error)
	}
	if len(pkt.Variables) == 0 {
		return engine.Sample{}, engine.ErrEmptyResult
	}
	pdu := pkt.Variables[0]
	now := time.Now()

	if parsed.rate {
		return s.rateSample(parsed.oid, pdu, now)
	}
	v, err := pduFloat(pdu)
	if err != nil {
		return engine.Sample{}, fmt.Errorf("snmp get %s: %w", parsed.oid, err)
	}
	return engine.Sample{
		Labels:    map[string]string{"oid": parsed.oid},
		Value:     v,
		Timestamp: now,
	}, nil
}

func (s *SNMP) rateSample(oid string, pdu gosnmp.SnmpPDU, now time.Time) (engine.Sample, error) {
	switch pdu.Type {
	case gosnmp.Counter32, gosnmp.Counter64:
	default:
		if isEmptyPDU(pdu.Type) {
			return engine.Sample{}, engine.ErrEmptyResult
		}
		return engine.Sample{}, fmt.Errorf("snmp rate %s: %v is not a counter", oid, pdu.Type)
	}
	curr := counterSample{value: gosnmp.ToBigInt(pdu.Value).Uint64(), at: now}
	prev, seen := s.counters[oid]
	s.counters[oid] = curr
	if !seen {
		return engine.Sample{}, fmt.Errorf("%w: first counter reading", engine.ErrEmptyResult)
	}
	rate, err := counterRate(prev, curr)
	if err != nil {
		s.log.Debug("counter rate unavailable", "oid", oid, "err", err)
		return engine.Sample{}, fmt.Errorf("%w: %w", engine.ErrEmptyResult, err)
	}
	return engine.Sample{
		Labels:    map[string]string{"oid": oid},
		Value:     rate,
		Timestamp: now,
	}, nil
}

func isEmptyPDU(t gosnmp.Asn1BER) bool {
	switch t {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return true
	}
	return false
}

// pduFloat converts a numeric varbind to a float. Octet strings holding a
// decimal number are accepted too, since many agents report gauges that way.
func pduFloat(pdu gosnmp.SnmpPDU) (float64, error) {
	if isEmptyPDU(pdu.Type) {
		return 0, engine.ErrEmptyResult
	}
	switch pdu.Type {
	case gosnmp.OpaqueFloat:
		if f, ok := pdu.Value.(float32); ok {
			return float64(f), nil
		}
	case gosnmp.OpaqueDouble:
		if f, ok := pdu.Value.(float64); ok {
			return f, nil
		}
	case gosnmp.OctetString:
		b, _ := pdu.Value.([]byte)
		f, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric string %q", string(b))
		}
		return f, nil
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks,
		gosnmp.Counter64, gosnmp.Uinteger32:
		f, _ := new(big.Float).SetInt(gosnmp.ToBigInt(pdu.Value)).Float64()
		return f, nil
	}
	return 0, fmt.Errorf("unsupported type %v", pdu.Type)
}

// Close releases the socket.
func (s *SNMP) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected || s.client.Conn == nil {
		return nil
	}
	s.connected = false
	return s.client.Conn.Close()
}
