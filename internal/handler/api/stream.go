package api

import (
	"context"
	"net/http"
	"time"

	"FinPulse/internal/usecase"
	xhttp "FinPulse/pkg/http"
	xlogger "FinPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamBatch  = 100
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
)

// OpportunityStream pushes newly committed opportunities to WebSocket
// subscribers. Each connection polls the store from the newest id it has
// seen, so detectors in other processes are picked up.
type OpportunityStream struct {
	logger   *xlogger.Logger
	dash     *usecase.Dashboard
	poll     time.Duration
	pongWait time.Duration
	upgrader websocket.Upgrader
}

func NewOpportunityStream(logger *xlogger.Logger, dash *usecase.Dashboard, poll time.Duration) *OpportunityStream {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &OpportunityStream{
		logger:   logger,
		dash:     dash,
		poll:     poll,
		pongWait: pongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *OpportunityStream) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/opportunities", s.Serve)
}

func (s *OpportunityStream) Serve(c echo.Context) error {
	ctx := c.Request().Context()
	cursor, err := s.latestID(ctx)
	if err != nil {
		s.logger.Warn("stream cursor unavailable", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// read loop: only control frames are expected; a read error means the
	// peer went away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(s.poll)
	defer poll.Stop()
	keepalive := time.NewTicker(s.pongWait * 9 / 10)
	defer keepalive.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			if err := s.ping(conn); err != nil {
				return nil
			}
			continue
		case <-poll.C:
		}

		rows, err := s.dash.OpportunitiesAfter(ctx, cursor, streamBatch)
		if err != nil {
			s.logger.Warn("stream poll failed", xlogger.Error(err))
			continue
		}
		for _, o := range rows {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(o); err != nil {
				s.logger.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
			cursor = o.ID
		}
	}
}

func (s *OpportunityStream) ping(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (s *OpportunityStream) latestID(ctx context.Context) (uint64, error) {
	rows, err := s.dash.Opportunities(ctx, 1)
	if err != nil || len(rows) == 0 {
		return 0, err
	}
	return rows[0].ID, nil
}
