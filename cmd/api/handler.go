package api

import (
	directoryDelivery "slatrack-backend/internal/directory/delivery"
	trackingDelivery "slatrack-backend/internal/tracking/delivery"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine *gin.Engine
}

func NewHandler(trackingHandler *trackingDelivery.TrackingHandler, directoryHandler *directoryDelivery.DirectoryHandler, cronSecret string) *Handler {
	engine := gin.Default()
	SetupRoutes(engine, trackingHandler, directoryHandler, cronSecret)
	return &Handler{engine: engine}
}

func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
