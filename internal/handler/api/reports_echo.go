package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"CommodityPulse/internal/domain/models"
	"CommodityPulse/internal/usecase"
	"CommodityPulse/pkg/cache"
	xhttp "CommodityPulse/pkg/http"
	xlogger "CommodityPulse/pkg/logger"
	"CommodityPulse/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = watchPongWait * 9 / 10
)

// ReportService is what the report endpoints need from the use case layer.
type ReportService interface {
	Sources() []models.SourceInfo
	Report(ctx context.Context, source string) (*models.Report, error)
	Cached(source string) (*models.Report, error)
	Block(ctx context.Context, source, block string) (models.ParsedBlockModel, error)
	Price(ctx context.Context, source string) (models.PriceSection, error)
}

// ReportsEchoHandler serves normalized commodity reports.
type ReportsEchoHandler struct {
	logger   *xlogger.Logger
	svc      ReportService
	upgrader websocket.Upgrader
}

func NewReportsEchoHandler(logger *xlogger.Logger, svc ReportService) *ReportsEchoHandler {
	return &ReportsEchoHandler{
		logger: logger,
		svc:    svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// CORS middleware already governs origins for the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *ReportsEchoHandler) RegisterRoutes(g *echo.Group) {
	r := g.Group("/reports")
	r.GET("", h.List)
	r.GET("/:source", h.Report)
	r.GET("/:source/price", h.Price)
	r.GET("/:source/blocks/:block", h.Block)
	r.GET("/:source/watch", h.Watch)
}

// List returns the configured sources.
func (h *ReportsEchoHandler) List(c echo.Context) error {
	srcs := h.svc.Sources()
	return xhttp.ListResponse(c, srcs, int64(len(srcs)))
}

// Report returns a whole report. ?blocks=a,b narrows the tabular blocks;
// ?cached=true answers from the cache only and never triggers a fetch.
func (h *ReportsEchoHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	var (
		r   *models.Report
		err error
	)
	if req.Cached {
		r, err = h.svc.Cached(req.Source)
	} else {
		r, err = h.svc.Report(c.Request().Context(), req.Source)
	}
	if err != nil {
		return mapError(c.Request().Context(), err)
	}

	if keys := util.SplitList(req.Blocks); len(keys) > 0 {
		r = selectBlocks(r, keys)
	}
	return xhttp.SuccessResponse(c, r)
}

// Block returns one tabular block.
func (h *ReportsEchoHandler) Block(c echo.Context) error {
	req := &models.BlockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	b, err := h.svc.Block(c.Request().Context(), req.Source, req.Block)
	if err != nil {
		return mapError(c.Request().Context(), err)
	}
	return xhttp.SuccessResponse(c, b)
}

// Price returns the price section.
func (h *ReportsEchoHandler) Price(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p, err := h.svc.Price(c.Request().Context(), req.Source)
	if err != nil {
		return mapError(c.Request().Context(), err)
	}
	return xhttp.SuccessResponse(c, p)
}

// Watch upgrades to a websocket and pushes the report of a source every
// interval seconds. Every push goes through the cache, so watchers never
// add upstream load beyond one fetch per freshness window.
func (h *ReportsEchoHandler) Watch(c echo.Context) error {
	req := &models.WatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.knownSource(req.Source) {
		return xhttp.NotFoundError("source not found", nil).WithParam("source", req.Source)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.drain(conn, cancel)

	send := func(msg models.WatchMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
		return conn.WriteJSON(msg)
	}
	push := func() error {
		r, err := h.svc.Report(ctx, req.Source)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return send(models.WatchMessage{Type: "error", Source: req.Source, Message: "load failed"})
		}
		return send(models.WatchMessage{Type: "report", Source: req.Source, Report: r})
	}

	if err := send(models.WatchMessage{Type: "init", Source: req.Source, Interval: req.Interval}); err != nil {
		return nil
	}
	if err := push(); err != nil {
		return nil
	}

	ticker := time.NewTicker(time.Duration(req.Interval) * time.Second)
	defer ticker.Stop()
	ping := time.NewTicker(watchPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := push(); err != nil {
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(watchWriteWait)); err != nil {
				return nil
			}
		}
	}
}

// drain consumes client frames so control messages are processed, and
// cancels the watch once the client goes away.
func (h *ReportsEchoHandler) drain(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(watchPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *ReportsEchoHandler) knownSource(name string) bool {
	for _, s := range h.svc.Sources() {
		if s.Name == name {
			return true
		}
	}
	return false
}

func selectBlocks(r *models.Report, keys []string) *models.Report {
	out := *r
	out.Blocks = make([]models.NamedBlock, 0, len(keys))
	for _, k := range keys {
		if m, ok := r.Block(k); ok {
			out.Blocks = append(out.Blocks, models.NamedBlock{Key: k, Model: m})
		}
	}
	return &out
}

// mapError turns use case errors into API errors. Upstream failures all
// collapse into one generic load failure.
func mapError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return xhttp.UnavailableError(ctx.Err())
	}
	switch {
	case errors.Is(err, usecase.ErrUnknownSource):
		return xhttp.NotFoundError("source not found", err)
	case errors.Is(err, usecase.ErrUnknownBlock):
		return xhttp.NotFoundError("block not found", err)
	case errors.Is(err, cache.ErrCacheMiss):
		return xhttp.NotFoundError("report not cached", err)
	default:
		return xhttp.LoadFailedError(err)
	}
}
