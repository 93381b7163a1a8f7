package handler

import (
	"net/http"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/apierror"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/middleware"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type ArchivosHandler struct{ svc service.ArchivoService }

func NewArchivosHandler(svc service.ArchivoService) *ArchivosHandler {
	return &ArchivosHandler{svc: svc}
}

// Subir stores one multipart file ("file") under the folder named by the
// :carpeta path parameter and returns its public URL.
// POST /v1/archivos/:carpeta
func (h *ArchivosHandler) Subir(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxArchivo+1<<20)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.T(middleware.GetIdioma(c), "archivo_invalido"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := h.svc.Subir(c.Request.Context(), actor(c), c.Param("carpeta"), header.Filename, contentType, file, header.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
