package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tieubaoca/docqa-be/service"
	"github.com/tieubaoca/docqa-be/types"
)

const welcomeMessage = "Welcome to the document QA service!"

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadBytes  int64
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *DocumentHandler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, types.WelcomeResponse{Message: welcomeMessage})
}

func (h *DocumentHandler) HandlePredictPDF(c *gin.Context) {
	h.predict(c, types.DocumentKindPDF)
}

func (h *DocumentHandler) HandlePredictText(c *gin.Context) {
	h.predict(c, types.DocumentKindText)
}

func (h *DocumentHandler) HandleAnalyzeCSV(c *gin.Context) {
	h.predict(c, types.DocumentKindCSV)
}

func (h *DocumentHandler) predict(c *gin.Context, kind types.DocumentKind) {
	upload, file, query, uploadErr := readUpload(c, kind, h.maxUploadBytes)
	if uploadErr != nil {
		c.JSON(uploadErr.status, types.ErrorResponse{Detail: uploadErr.detail})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	result, err := h.documentService.Predict(ctx, kind, upload, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("kind", string(kind)).
			Str("file", upload.Filename).
			Msg("Prediction failed")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Detail: "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, types.PredictResponse{Result: result})
}
