// Package httpapi exposes a read-only HTTP view of server occupancy,
// separate from the chat wire protocol, for external monitoring.
package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"relaychat/internal/registry"
)

// Server wraps an echo instance bound to a fixed registry.
type Server struct {
	echo *echo.Echo
	reg  *registry.Registry
}

// New builds the status API. It registers routes but does not bind a port.
func New(reg *registry.Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, reg: reg}
	e.GET("/healthz", s.handleHealth)
	e.GET("/channels", s.handleChannels)
	return s
}

// Start blocks serving on addr until the listener is closed.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type channelStatus struct {
	Name      string `json:"name"`
	Port      int    `json:"port"`
	Capacity  int    `json:"capacity"`
	Connected int    `json:"connected"`
	Queued    int    `json:"queued"`
}

func (s *Server) handleChannels(c echo.Context) error {
	channels := s.reg.Channels()
	out := make([]channelStatus, 0, len(channels))
	for _, ch := range channels {
		stat := ch.Stat()
		out = append(out, channelStatus{
			Name:      stat.Name,
			Port:      stat.Port,
			Capacity:  stat.Capacity,
			Connected: stat.Connected,
			Queued:    stat.Queued,
		})
	}
	return c.JSON(http.StatusOK, out)
}
