package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdrpinto/routeplanner"
	"github.com/pdrpinto/routeplanner/internal"
	"github.com/pdrpinto/routeplanner/roadmodel"
)

const (
	requestIDHeader = "X-Request-ID"
	defaultMaxSteps = 10000
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routeplanner_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routeplanner_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	routesPlannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routeplanner_routes_total",
		Help: "Routes planned through the API by outcome",
	}, []string{"outcome"})
)

// routeRequest holds percent coordinates. Pointers tell a missing field from 0.
type routeRequest struct {
	StartX *float64 `json:"start_x" binding:"required,gte=0,lte=100"`
	StartY *float64 `json:"start_y" binding:"required,gte=0,lte=100"`
	EndX   *float64 `json:"end_x" binding:"required,gte=0,lte=100"`
	EndY   *float64 `json:"end_y" binding:"required,gte=0,lte=100"`
}

type stepsRequest struct {
	routeRequest
	MaxSteps int `json:"max_steps" binding:"gte=0,lte=100000"`
}

type pathPoint struct {
	ID    int     `json:"id"`
	OSMID int64   `json:"osm_id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type routeResponse struct {
	Found          bool        `json:"found"`
	Outcome        string      `json:"outcome"`
	DistanceMeters float64     `json:"distance_m"`
	ExpandedNodes  int         `json:"expanded_nodes"`
	Path           []pathPoint `json:"path,omitempty"`
}

type stepEntry struct {
	Step    int  `json:"step"`
	Current int  `json:"current"`
	Open    int  `json:"open"`
	Closed  int  `json:"closed"`
	Done    bool `json:"done"`
	Found   bool `json:"found"`
}

type stepsResponse struct {
	Start     int           `json:"start"`
	Goal      int           `json:"goal"`
	Steps     []stepEntry   `json:"steps"`
	Truncated bool          `json:"truncated"`
	Route     routeResponse `json:"route"`
}

func newRouteResponse(model *roadmodel.Model, result routeplanner.Result[int]) routeResponse {
	resp := routeResponse{
		Found:          result.Found(),
		Outcome:        result.Outcome.String(),
		DistanceMeters: result.Distance,
		ExpandedNodes:  result.ExpandedNodes,
	}
	for _, id := range result.Path {
		n, _ := model.Node(id)
		resp.Path = append(resp.Path, pathPoint{ID: id, OSMID: n.OSMID, X: n.X, Y: n.Y, Lat: n.Lat, Lon: n.Lon})
	}
	return resp
}

// server exposes a loaded road model over HTTP.
type server struct {
	model   *roadmodel.Model
	options []routeplanner.Option
	logger  *slog.Logger
	// metrics serves /metrics. Nil means the default Prometheus registry.
	metrics http.Handler
}

func newRouter(s *server, debug bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), s.observe())
	if debug {
		router.Use(gin.Logger())
	}

	router.GET("/healthz", s.handleHealth)
	metrics := s.metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metrics))

	v1 := router.Group("/v1")
	v1.POST("/route", s.handleRoute)
	v1.POST("/route/steps", s.handleSteps)
	return router
}

// requestID propagates or assigns the X-Request-ID header.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(began)
		status := c.Writer.Status()
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.logger.Debug("request served",
			"request_id", c.GetString(requestIDHeader),
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
		)
	}
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "nodes": s.model.Len()})
}

func (s *server) handleRoute(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := routeplanner.Plan(c.Request.Context(), s.model,
		*req.StartX, *req.StartY, *req.EndX, *req.EndY, s.options...)
	if err != nil {
		s.fail(c, err)
		return
	}
	routesPlannedTotal.WithLabelValues(result.Outcome.String()).Inc()

	status := http.StatusOK
	if !result.Found() {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, newRouteResponse(s.model, result))
}

func (s *server) handleSteps(c *gin.Context) {
	var req stepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	maxSteps := req.MaxSteps
	if maxSteps == 0 {
		maxSteps = defaultMaxSteps
	}

	start, goal, err := s.resolve(req.routeRequest)
	if err != nil {
		s.fail(c, err)
		return
	}
	stepper, err := routeplanner.NewStepper(c.Request.Context(), s.model, start, goal, s.options...)
	if err != nil {
		s.fail(c, err)
		return
	}

	resp := stepsResponse{Start: start, Goal: goal}
	for {
		done, err := stepper.Advance()
		if err != nil {
			s.fail(c, err)
			return
		}
		current, ok := stepper.Current()
		if ok && stepper.StepIndex() > len(resp.Steps) {
			resp.Steps = append(resp.Steps, stepEntry{
				Step:    stepper.StepIndex(),
				Current: current,
				Open:    stepper.OpenLen(),
				Closed:  stepper.ClosedLen(),
				Done:    done,
				Found:   stepper.Found(),
			})
		}
		if done {
			break
		}
		if stepper.StepIndex() >= maxSteps {
			resp.Truncated = true
			break
		}
	}

	if result, ok := stepper.Result(); ok {
		resp.Route = newRouteResponse(s.model, result)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) resolve(req routeRequest) (start, goal int, err error) {
	sx, _ := internal.PercentToFraction(*req.StartX)
	sy, _ := internal.PercentToFraction(*req.StartY)
	ex, _ := internal.PercentToFraction(*req.EndX)
	ey, _ := internal.PercentToFraction(*req.EndY)
	if start, err = s.model.FindClosestNode(sx, sy); err != nil {
		return 0, 0, err
	}
	if goal, err = s.model.FindClosestNode(ex, ey); err != nil {
		return 0, 0, err
	}
	return start, goal, nil
}

func (s *server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, routeplanner.ErrInvalidCoordinate):
		status = http.StatusBadRequest
	case errors.Is(err, roadmodel.ErrNoRoadNodes), errors.Is(err, routeplanner.ErrNodeLookup):
		status = http.StatusUnprocessableEntity
	}
	s.logger.Warn("route request failed",
		"request_id", c.GetString(requestIDHeader), "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}
