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
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardPath is where the analytics dashboard is served.
const DashboardPath = "/dashboard"

// HandleRoot reports that the service is running and where the dashboard is.
func HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "Backend Running",
		"dashboard": DashboardPath,
	})
}

// HealthCheck is the liveness probe.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
