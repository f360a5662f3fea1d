package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-subscribe/internal/config"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// HealthCheck godoc
// @Summary Health check
// @Description Reports the health of the service and its backing stores
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:   "ok",
		Services: map[string]string{},
	}

	if err := config.MongoDB.Client().Ping(c.Request.Context(), readpref.Primary()); err != nil {
		response.Services["mongodb"] = "unavailable"
		response.Status = "degraded"
	} else {
		response.Services["mongodb"] = "ok"
	}

	if err := config.Redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Services["redis"] = "unavailable"
		response.Status = "degraded"
	} else {
		response.Services["redis"] = "ok"
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}
