package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/docqa-be/middleware"
)

func NewRouter(documentHandler *DocumentHandler) *gin.Engine {
	corsHandler := NewCorsHandler()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(corsHandler.CorsMiddleware())

	router.GET("/", documentHandler.HandleRoot)
	router.POST("/predict_pdf", documentHandler.HandlePredictPDF)
	router.POST("/predict_txt", documentHandler.HandlePredictText)
	router.POST("/analyze_csv", documentHandler.HandleAnalyzeCSV)

	return router
}
