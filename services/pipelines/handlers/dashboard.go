// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/AleutianAI/AleutianDAG/services/pipelines/analytics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// DashboardTimeFormat is the layout of the submission time column.
const DashboardTimeFormat = "2006-01-02 15:04:05"

const dashboardTemplateName = "dashboard.html.tmpl"

//go:embed templates/dashboard.html.tmpl
var templatesFS embed.FS

var dashboardTemplate = template.Must(
	template.New(dashboardTemplateName).ParseFS(templatesFS, "templates/"+dashboardTemplateName),
)

// dashboardView is the data rendered into the dashboard template.
type dashboardView struct {
	TotalRequests int
	ValidDAGs     int
	InvalidDAGs   int
	Rows          []dashboardRow
	WebSocketPath string
}

// dashboardRow is one line of the Recent Submissions table.
type dashboardRow struct {
	Time    string
	Nodes   int
	Edges   int
	Outcome string
	Class   string
	Text    string
}

// newDashboardView builds the view for a snapshot. Rows are newest first.
func newDashboardView(snap analytics.Snapshot) dashboardView {
	rows := make([]dashboardRow, 0, len(snap.History))
	for i := len(snap.History) - 1; i >= 0; i-- {
		sub := snap.History[i]
		row := dashboardRow{
			Time:    sub.Timestamp.Format(DashboardTimeFormat),
			Nodes:   sub.NodeCount,
			Edges:   sub.EdgeCount,
			Outcome: "Invalid",
			Class:   "invalid",
			Text:    sub.Text,
		}
		if sub.IsDAG {
			row.Outcome = "Valid"
			row.Class = "valid"
		}
		rows = append(rows, row)
	}
	return dashboardView{
		TotalRequests: snap.TotalRequests,
		ValidDAGs:     snap.ValidDAGs,
		InvalidDAGs:   snap.InvalidDAGs,
		Rows:          rows,
		WebSocketPath: DashboardPath + "/ws",
	}
}

// HandleDashboard renders the analytics dashboard page.
//
// # Description
//
// Serves GET /dashboard. The page is rendered from the current snapshot and
// then kept current by the websocket feed at /dashboard/ws. All values pass
// through html/template escaping.
//
// # Inputs
//
//   - store: Analytics store. Must not be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Handler ready for router registration.
func HandleDashboard(store *analytics.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Render(http.StatusOK, render.HTML{
			Template: dashboardTemplate,
			Name:     dashboardTemplateName,
			Data:     newDashboardView(store.Snapshot()),
		})
	}
}

// HandleDashboardStats returns the current analytics snapshot as JSON.
func HandleDashboardStats(store *analytics.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Snapshot())
	}
}
