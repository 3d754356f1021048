package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CupidGems/internal/economy"
	"CupidGems/internal/profile"
)

// Server exposes the economy to the view layer over WebSocket and plain HTTP.
// It is the only writer the view layer talks to; nothing reaches storage
// directly.
type Server struct {
	econ   *economy.Economy
	book   *profile.Book
	offers Offers

	upgrader websocket.Upgrader
	origins  map[string]struct{}

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewServer builds a bridge. Browser pages may only connect from the bridge's
// own host, a loopback host, or one of allowedOrigins.
func NewServer(econ *economy.Economy, book *profile.Book, offers Offers, allowedOrigins ...string) *Server {
	s := &Server{
		econ:    econ,
		book:    book,
		offers:  offers,
		origins: map[string]struct{}{},
		clients: map[chan []byte]struct{}{},
	}
	for _, o := range allowedOrigins {
		s.origins[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin admits non-browser clients (no Origin header), same-host and
// loopback pages, and configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := s.origins[strings.ToLower(origin)]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Handler routes /ws, /state and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/state", s.serveState)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	return mux
}

// Publish pushes a tick snapshot to every client. Slow clients miss ticks
// rather than blocking the scheduler.
func (s *Server) Publish(snap economy.Snapshot) {
	b, err := json.Marshal(Response{Type: TypeTick, OK: true, State: &snap})
	if err != nil {
		log.Printf("[ERROR] marshal tick: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for out := range s.clients {
		select {
		case out <- b:
		default:
		}
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) serveState(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(rw, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(s.econ.Snapshot()); err != nil {
		log.Printf("[WARN] write state: %v", err)
	}
}

func (s *Server) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade from %q refused: %v", r.Header.Get("Origin"), err)
		return
	}
	defer conn.Close()

	out := make(chan []byte, 16)
	s.mu.Lock()
	s.clients[out] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, out)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	snap := s.econ.Snapshot()
	s.enqueue(ctx, out, Response{Op: OpState, OK: true, State: &snap})

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			s.enqueue(ctx, out, Response{Error: fmt.Sprintf("bad request: %v", err)})
			continue
		}
		s.enqueue(ctx, out, s.Dispatch(req))
	}
	cancel()
	<-done
}

func (s *Server) enqueue(ctx context.Context, out chan []byte, resp Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		log.Printf("[ERROR] marshal response: %v", err)
		return
	}
	select {
	case out <- b:
	case <-ctx.Done():
	}
}

// Dispatch runs one request against the economy and returns the reply with
// the resulting state attached.
func (s *Server) Dispatch(req Request) Response {
	resp := Response{Op: req.Op, ID: req.ID}

	switch req.Op {
	case OpState:
		resp.OK = true
	case OpCredit, OpDebit:
		if req.Amount <= 0 {
			resp.Error = "amount must be positive"
			break
		}
		if req.Op == OpCredit {
			resp.OK = s.econ.Credit(req.Amount)
		} else {
			resp.OK = s.econ.Debit(req.Amount)
		}
	case OpUnlock:
		if req.ProfileID == "" {
			resp.Error = "profile_id is required"
			break
		}
		resp.OK = s.econ.Unlock(req.ProfileID, orDefault(req.Cost, s.offers.UnlockCost))
	case OpIsUnlocked:
		u := s.econ.IsUnlocked(req.ProfileID)
		resp.OK = true
		resp.Unlocked = &u
	case OpClaim:
		resp.Reward, resp.OK = s.econ.ClaimDaily()
	case OpBoost:
		resp.OK = s.econ.ActivateBoost(orDefault(req.Minutes, s.offers.BoostMinutes), orDefault(req.Cost, s.offers.BoostCost))
	case OpSuperLike:
		note := "super-like"
		if req.ProfileID != "" {
			note += " " + req.ProfileID
		}
		resp.OK = s.econ.DebitWithNote(orDefault(req.Cost, s.offers.SuperLikeCost), note)
		if resp.OK {
			s.book.RecordSuperLike()
		}
	case OpSwipe:
		s.book.RecordSwipe(req.Liked)
		resp.OK = true
	case OpMatch:
		s.book.RecordMatch()
		resp.OK = true
	case OpSetName:
		if err := s.book.SetDisplayName(req.Name); err != nil {
			if errors.Is(err, profile.ErrInvalidName) {
				resp.Error = "invalid display name"
			} else {
				resp.Error = err.Error()
			}
			break
		}
		resp.OK = true
		settings := s.book.Settings()
		resp.Settings = &settings
	case OpSetSound:
		if req.Sound == nil {
			resp.Error = "sound is required"
			break
		}
		if err := s.book.SetSound(*req.Sound); err != nil {
			resp.Error = err.Error()
			break
		}
		resp.OK = true
		settings := s.book.Settings()
		resp.Settings = &settings
	case OpSetTheme:
		if err := s.book.SetTheme(req.Theme); err != nil {
			if errors.Is(err, profile.ErrInvalidTheme) {
				resp.Error = "invalid theme"
			} else {
				resp.Error = err.Error()
			}
			break
		}
		resp.OK = true
		settings := s.book.Settings()
		resp.Settings = &settings
	case OpReset:
		s.econ.Reset()
		resp.OK = true
	default:
		resp.Error = fmt.Sprintf("unknown op %q", req.Op)
	}

	snap := s.econ.Snapshot()
	resp.State = &snap
	return resp
}

func orDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
