package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vaultforge/reward-vault/core/vault"
)

// Dashboard serves vault status over HTTP and streams vault events to
// websocket clients.
type Dashboard struct {
	vault     *vault.RewardVault
	logger    *logrus.Logger
	startTime time.Time

	upgrader     websocket.Upgrader
	clients      map[*websocket.Conn]bool
	clientsMutex sync.RWMutex
}

// Stats is the JSON payload of the /stats endpoint.
type Stats struct {
	Initialized     bool    `json:"initialized"`
	ActivePositions int     `json:"active_positions"`
	TotalLocked     uint64  `json:"total_locked"`
	MaturePositions int     `json:"mature_positions"`
	TotalEvents     int     `json:"total_events"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

func NewDashboard(v *vault.RewardVault, logger *logrus.Logger) *Dashboard {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	}
	d := &Dashboard{
		vault:     v,
		logger:    logger,
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
	v.OnEvent(d.broadcastEvent)
	return d
}

// Handler returns the dashboard's HTTP routes.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", d.handleHealth)
	mux.HandleFunc("/stats", d.handleStats)
	mux.HandleFunc("/positions", d.handlePositions)
	mux.HandleFunc("/ws", d.handleWebSocket)
	return mux
}

// Start blocks serving the dashboard on addr.
func (d *Dashboard) Start(addr string) error {
	d.logger.WithField("addr", addr).Info("dashboard listening")
	return http.ListenAndServe(addr, d.Handler())
}

func (d *Dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "healthy",
		"uptime": time.Since(d.startTime).Round(time.Second).String(),
	})
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.collectStats())
}

func (d *Dashboard) handlePositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.vault.GetAllPositions())
}

func (d *Dashboard) collectStats() *Stats {
	positions := d.vault.GetAllPositions()
	var totalLocked uint64
	mature := 0
	for _, position := range positions {
		totalLocked += position.Amount
		if d.vault.IsMature(position.Owner) {
			mature++
		}
	}
	return &Stats{
		Initialized:     d.vault.Config() != nil,
		ActivePositions: len(positions),
		TotalLocked:     totalLocked,
		MaturePositions: mature,
		TotalEvents:     len(d.vault.GetEvents()),
		UptimeSeconds:   time.Since(d.startTime).Seconds(),
	}
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	d.clientsMutex.Lock()
	d.clients[conn] = true
	d.clientsMutex.Unlock()

	d.logger.WithField("remote", conn.RemoteAddr().String()).Info("websocket client connected")

	// Reader loop only detects disconnects; clients never send.
	go func() {
		defer d.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (d *Dashboard) removeClient(conn *websocket.Conn) {
	d.clientsMutex.Lock()
	delete(d.clients, conn)
	d.clientsMutex.Unlock()
	conn.Close()
}

func (d *Dashboard) broadcastEvent(event vault.VaultEvent) {
	d.clientsMutex.RLock()
	clients := make([]*websocket.Conn, 0, len(d.clients))
	for conn := range d.clients {
		clients = append(clients, conn)
	}
	d.clientsMutex.RUnlock()

	for _, conn := range clients {
		if err := conn.WriteJSON(event); err != nil {
			d.logger.WithError(err).Warn("websocket write failed, dropping client")
			d.removeClient(conn)
		}
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
