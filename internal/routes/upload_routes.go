package routes

import (
	"geolens/internal/config"
	"geolens/internal/handlers"
	"geolens/internal/utils/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/labstack/echo/v4"
)

func SetupUploadRoutes(api *echo.Group, cfg *config.Config) {
	log := logger.New("upload_routes")

	// Initialize upload handler
	uploadHandler := handlers.NewUploadHandler(
		types.ObjectCannedACLPrivate,
	)

	mediaGroup := api.Group("/media")

	mediaGroup.POST("/upload", uploadHandler.UploadMedia)

	log.Success("Media upload routes initialized")
}
