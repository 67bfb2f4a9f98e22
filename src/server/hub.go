package server

import (
	"net/http"
	"time"

	"crypto-signals/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main Hub loop. Registration, unregistration and broadcast all
// serialize through it, so subscriber bookkeeping needs no extra locking
// beyond the shared latest-state map.
func (s *Server) runHub() {
	for {
		select {
		case <-s.done:
			s.stateMutex.Lock()
			for sub := range s.subscribers {
				delete(s.subscribers, sub)
				sub.setState(SubClosed)
				close(sub.send)
			}
			s.stateMutex.Unlock()
			return

		case sub := <-s.register:
			s.stateMutex.Lock()
			s.subscribers[sub] = struct{}{}
			sub.setState(SubOpen)

			// Send current state on connect so a new subscriber never
			// waits a full cycle for its first message.
			for _, snap := range s.latest {
				update := models.NewMarketUpdate(snap)
				select {
				case sub.send <- &update:
				default:
				}
			}
			s.stateMutex.Unlock()

			s.Logger.Info("Subscriber %s connected (%d total)", sub.ConnectionID, len(s.subscribers))

		case sub := <-s.unregister:
			s.stateMutex.Lock()
			if _, ok := s.subscribers[sub]; ok {
				delete(s.subscribers, sub)
				sub.setState(SubClosed)
				close(sub.send)
			}
			s.stateMutex.Unlock()

		case update := <-s.broadcast:
			// Record latest state, then fan out. A failing or slow
			// subscriber is dropped so it can never stall the others.
			s.stateMutex.Lock()
			s.latest[update.Data.Symbol] = snapshotFromUpdate(update)

			for sub := range s.subscribers {
				select {
				case sub.send <- update:
					// Queued; the write pump acks the sequence after the
					// write completes.
				default:
					delete(s.subscribers, sub)
					sub.setState(SubClosed)
					close(sub.send)
					s.Logger.Warning("Subscriber %s too slow, dropped", sub.ConnectionID)
				}
			}
			s.stateMutex.Unlock()
		}
	}
}

// -----------------------------------------------------------------------------

// snapshotFromUpdate rebuilds the snapshot held as latest state from the
// wire message.
func snapshotFromUpdate(u *models.MMarketUpdate) models.MSnapshot {
	return models.MSnapshot{
		Symbol:         u.Data.Symbol,
		Price:          u.Data.Price,
		Stale:          u.Data.Stale,
		Indicators:     u.Data.Indicators,
		Sentiment:      u.Data.Sentiment,
		Signal:         u.Data.Signal,
		Risk:           u.Data.Risk,
		SequenceNumber: u.Data.Sequence,
		GeneratedAt:    time.Unix(u.Timestamp, 0).UTC(),
	}
}

// -----------------------------------------------------------------------------
// IBroadcaster Implementation
// -----------------------------------------------------------------------------

// Publish hands a snapshot to the Hub queue. Non-blocking: when the queue is
// full the update is dropped and logged, never propagated back to the
// pipeline.
func (s *Server) Publish(snap models.MSnapshot) {
	update := models.NewMarketUpdate(snap)

	select {
	case s.broadcast <- &update:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update for %s seq %d", snap.Symbol, snap.SequenceNumber)
	}
}

// -----------------------------------------------------------------------------

// MarkStale raises the stale flag on the latest recorded snapshot so the
// query endpoints surface the condition. Nothing reaches the stream.
func (s *Server) MarkStale(symbol string) {
	s.stateMutex.Lock()
	if snap, ok := s.latest[symbol]; ok {
		snap.Stale = true
		s.latest[symbol] = snap
	}
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	sub := NewSubscriber(s, conn)
	s.register <- sub

	// Start goroutines for reading/writing
	go sub.writePump()
	go sub.readPump()
}
