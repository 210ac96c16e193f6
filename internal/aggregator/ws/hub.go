package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/radieske/odds-aggregator-poc/internal/aggregator/dto"
)

// SubAll inscreve o cliente em todos os esportes do snapshot
const SubAll = "all"

// Hub gerencia conexões WebSocket e assinaturas por sport_key
// subs: mapeia sport_key (ou "all") para o conjunto de conexões inscritas
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*websocket.Conn]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
// Permite subscribe/unsubscribe por sport_key e responde a pings
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.Sport == "" {
				msg.Sport = SubAll
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.Sport]; !ok {
				h.subs[msg.Sport] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.Sport][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Sport]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.Sport)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	// Remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast distribui o snapshot refrescado
// Inscritos em "all" recebem tudo; inscritos em um sport_key recebem só os
// registros daquele esporte
func (h *Hub) Broadcast(msg RefreshMsg) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if conns := h.subs[SubAll]; len(conns) > 0 {
		b, _ := json.Marshal(msg)
		for c := range conns {
			_ = c.WriteMessage(websocket.TextMessage, b)
		}
	}

	for sport, conns := range h.subs {
		if sport == SubAll || len(conns) == 0 {
			continue
		}
		filtered := filterBySport(msg.Odds, sport)
		if len(filtered) == 0 {
			continue
		}
		b, _ := json.Marshal(RefreshMsg{
			SnapshotID:  msg.SnapshotID,
			RefreshedAt: msg.RefreshedAt,
			Odds:        filtered,
		})
		for c := range conns {
			_ = c.WriteMessage(websocket.TextMessage, b)
		}
	}
}

func filterBySport(odds []dto.SimplifiedOdds, sport string) []dto.SimplifiedOdds {
	var out []dto.SimplifiedOdds
	for _, o := range odds {
		if o.SportKey == sport {
			out = append(out, o)
		}
	}
	return out
}
