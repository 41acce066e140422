// Package captive implements the captive-portal DNS responder.
//
// While the device is provisioning every query, whatever name or record type
// it asks for, is answered with the access-point address. Phones and laptops
// checking for connectivity are thereby sent to the configuration page.
package captive

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// DefaultTTL is short so clients forget the redirect once provisioning ends.
const DefaultTTL = 60

// Responder answers every query with one A record.
type Responder struct {
	ip  net.IP
	ttl uint32

	mu     sync.Mutex
	server *dns.Server
}

// NewResponder creates a responder that resolves everything to ip.
func NewResponder(ip net.IP) *Responder {
	return &Responder{ip: ip.To4(), ttl: DefaultTTL}
}

// ServeDNS implements dns.Handler.
func (r *Responder) ServeDNS(w dns.ResponseWriter, req *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(req)
	m.Authoritative = true

	for _, q := range req.Question {
		if q.Qclass != dns.ClassINET {
			continue
		}
		// Every type gets the A record, AAAA included, so dual-stack
		// clients cannot resolve around the portal.
		m.Answer = append(m.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   q.Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    r.ttl,
			},
			A: r.ip,
		})
		logging.LogDNSQuery(w.RemoteAddr().String(), strings.TrimSuffix(q.Name, "."), r.ip.String())
	}

	if err := w.WriteMsg(m); err != nil {
		logging.Debug("Failed to write DNS response", zap.Error(err))
	}
}

// Serve answers queries on pc until Shutdown. started, if non-nil, is
// called once the server is accepting packets.
func (r *Responder) Serve(pc net.PacketConn, started func()) error {
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           r,
		NotifyStartedFunc: started,
	}

	r.mu.Lock()
	r.server = srv
	r.mu.Unlock()

	logging.Info("Captive DNS responder listening",
		zap.String("addr", pc.LocalAddr().String()),
		zap.String("answer", r.ip.String()),
	)
	return srv.ActivateAndServe()
}

// ListenAndServe opens a UDP socket on addr and serves on it.
func (r *Responder) ListenAndServe(addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return r.Serve(pc, nil)
}

// Start listens on addr and serves in the background. It returns once the
// socket is ready.
func (r *Responder) Start(addr string) error {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		if err := r.Serve(pc, func() { close(ready) }); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ready:
		return nil
	case err := <-errCh:
		return fmt.Errorf("captive DNS failed to start: %w", err)
	}
}

// Shutdown stops the responder. Stopping one that never started is a no-op.
func (r *Responder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	srv := r.server
	r.server = nil
	r.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.ShutdownContext(ctx)
}
