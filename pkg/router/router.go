package router

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/sowonglabs/swap-sdk/internal/auth"
	"github.com/sowonglabs/swap-sdk/internal/services/wschannel"
	"github.com/sowonglabs/swap-sdk/pkg/relay"
	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

type Router struct {
	frameURL   string
	token      string
	production bool
	chunkLimit int
	provider   relay.ProviderDialer
	messager   swap.Messager
}

func NewServer(frameURL, token string, production bool, chunkLimit int, provider relay.ProviderDialer, messager swap.Messager) *Router {
	return &Router{
		frameURL,
		token,
		production,
		chunkLimit,
		provider,
		messager,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin policy is the relay's own gate, applied per message
	// after the upgrade
	CheckOrigin: func(r *http.Request) bool { return true },
}

// implement the Server interface
func (rt *Router) Start(port int) error {
	cr := chi.NewRouter()

	a := auth.New(rt.token)

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(10 << 20)) // Limit request bodies to 10MB
	cr.Use(a.AuthMiddleware)

	// configure routes
	cr.Get("/attach", rt.Attach)

	// start the server
	return http.ListenAndServe(fmt.Sprintf(":%v", port), cr)
}

// Attach upgrades the connection and binds it to a fresh relay session
// for the lifetime of the socket.
func (rt *Router) Attach(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Default().Println("failed to upgrade connection: ", err)
		return
	}

	ch := wschannel.New(conn, r.Header.Get("Origin"), rt.production)

	rl, err := relay.New(r.Context(), ch, relay.Options{
		FrameURL:   rt.frameURL,
		Production: rt.production,
		ChunkLimit: rt.chunkLimit,
		Provider:   rt.provider,
		Messager:   rt.messager,
	})
	if err != nil {
		log.Default().Println("failed to start relay session: ", err)
		conn.Close()
		return
	}
	defer rl.Disconnect()

	if err := ch.Pump(rl.Receive); err != nil {
		log.Default().Println("session ended: ", err)
	}
}
