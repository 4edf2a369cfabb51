package shopapi

import (
	"net/http"
	"path"

	"github.com/infoabcd/Warehouse-Query-System/internal/media"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const imageRoute = "media/images"

type uploadResponse struct {
	Message  string `json:"message"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

// registerMediaRoutes registers image upload and download
func registerMediaRoutes(srv *webserver.Server) {
	srv.POST("/media/upload", webserver.AdminOnly, uploadImage)
	srv.GET("/"+imageRoute+"/:fileName", webserver.Public, getImage)
}

func uploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No uploaded file found", nil)
	}
	src, err := file.Open()
	if err != nil {
		return internalError(c, "open upload", err)
	}
	defer src.Close()

	store := GetAppContext(c).Media()
	name, err := store.Save(file.Filename, src)
	if errors.Is(err, media.ErrTooLarge) {
		zap.L().Info("image upload too large", zap.String("file", file.Filename), zap.Error(err))
		return fail(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			"Image exceeds the upload size limit", map[string]int64{"maxSize": store.MaxSize()})
	}
	if errors.Is(err, media.ErrRejected) {
		zap.L().Info("image upload rejected", zap.String("file", file.Filename), zap.Error(err))
		return fail(c, http.StatusBadRequest, "INVALID_FILE",
			"Only jpeg, jpg, png and gif images are accepted", nil)
	}
	if err != nil {
		return internalError(c, "save upload", err)
	}
	return ok(c, uploadResponse{
		Message:  "File uploaded",
		FileName: name,
		FilePath: path.Join(imageRoute, name),
	})
}

func getImage(c echo.Context) error {
	f, info, err := GetAppContext(c).Media().Open(c.Param("fileName"))
	if errors.Is(err, media.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Image not found", nil)
	}
	if err != nil {
		return internalError(c, "open image", err)
	}
	defer f.Close()
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}
