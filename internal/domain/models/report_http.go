package models

// Requests for report HTTP endpoints.

type ReportRequest struct {
	Source string `param:"source" json:"source" validate:"required"`
	Blocks string `query:"blocks" json:"blocks"`
	Cached bool   `query:"cached" json:"cached"`
}

type BlockRequest struct {
	Source string `param:"source" json:"source" validate:"required"`
	Block  string `param:"block" json:"block" validate:"required"`
}

type WatchRequest struct {
	Source   string `param:"source" json:"source" validate:"required"`
	Interval int    `query:"interval" json:"interval" default:"30" validate:"gte=5,lte=3600"`
}

// SourceInfo describes a configured record source.
type SourceInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// WatchMessage is one frame pushed on the watch websocket.
type WatchMessage struct {
	Type     string  `json:"type"`
	Source   string  `json:"source"`
	Interval int     `json:"interval,omitempty"`
	Report   *Report `json:"report,omitempty"`
	Message  string  `json:"message,omitempty"`
}
