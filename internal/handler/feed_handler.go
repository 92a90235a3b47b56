package handler

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/service"
)

// FeedHandler pushes live snapshots over websockets. Every message carries
// the full current result set.
type FeedHandler struct {
	orders        service.OrderService
	prescriptions service.PrescriptionService
	sellers       service.SellerService
	upgrader      websocket.Upgrader
}

// NewFeedHandler builds the websocket endpoints. checkOrigin may be nil to
// accept any origin.
func NewFeedHandler(orders service.OrderService, prescriptions service.PrescriptionService, sellers service.SellerService, checkOrigin func(*http.Request) bool) *FeedHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &FeedHandler{
		orders:        orders,
		prescriptions: prescriptions,
		sellers:       sellers,
		upgrader:      websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

type feedMessage struct {
	Type    string `json:"type"`
	Items   any    `json:"items,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *FeedHandler) Orders(c echo.Context) error {
	return stream(h.upgrader, c, h.orders.Watch(orderFilterFromQuery(c)), toOrderResponses)
}

func (h *FeedHandler) Prescriptions(c echo.Context) error {
	status, ok := prescriptionStatusParam(c)
	if !ok {
		return badRequest(c, "invalid status")
	}
	return stream(h.upgrader, c, h.prescriptions.Watch(service.PrescriptionFilter{Status: status}), toPrescriptionResponses)
}

func (h *FeedHandler) Sellers(c echo.Context) error {
	activeOnly, _ := strconv.ParseBool(c.QueryParam("active"))
	return stream(h.upgrader, c, h.sellers.Watch(activeOnly), toSellerResponses)
}

// stream upgrades the request and relays snapshots until the client goes
// away or the source fails.
func stream[T, R any](upgrader websocket.Upgrader, c echo.Context, open realtime.Opener[T], conv func([]T) []R) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		return nil
	}
	defer conn.Close()

	rid := reqctx.RID(c.Request().Context())
	var mu sync.Mutex
	send := func(m feedMessage) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(m); err != nil {
			log.Printf("[feed] rid=%s write: %v", rid, err)
		}
	}

	sub := realtime.Watch(c.Request().Context(), open,
		func(items []T) {
			out := conv(items)
			if out == nil {
				out = []R{}
			}
			send(feedMessage{Type: "snapshot", Items: out})
		},
		func(err error) {
			log.Printf("[feed] rid=%s %s: %v", rid, c.Path(), err)
			send(feedMessage{Type: "error", Message: err.Error()})
		},
	)
	defer sub.Cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-closed:
	case <-sub.Done():
	}
	return nil
}
