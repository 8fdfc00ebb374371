package controller

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/http/controller/dto"
	"github.com/tnqbao/gau-drive-service/service"
	"github.com/tnqbao/gau-drive-service/utils"
)

func (ctrl *Controller) ListRoot(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Entry")
	if !ok {
		return
	}

	listing, err := ctrl.Service.ListRoot(ctx, ownerID)
	if err != nil {
		ctrl.writeError(ctx, c, "Entry", err)
		return
	}

	utils.JSON200(c, listing)
}

func (ctrl *Controller) ListFolder(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Folder")
	if !ok {
		return
	}
	folderID, ok := ctrl.idParam(c, "Folder")
	if !ok {
		return
	}

	listing, err := ctrl.Service.ListFolder(ctx, ownerID, folderID)
	if err != nil {
		ctrl.writeError(ctx, c, "Folder", err)
		return
	}

	utils.JSON200(c, listing)
}

func (ctrl *Controller) CreateFolder(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Folder")
	if !ok {
		return
	}
	parentID, ok := ctrl.folderQuery(c, "Folder")
	if !ok {
		return
	}

	var req dto.CreateFolderRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Folder] Invalid request body: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	folder, err := ctrl.Service.CreateFolder(ctx, ownerID, parentID, req.Name)
	if err != nil {
		ctrl.writeError(ctx, c, "Folder", err)
		return
	}

	utils.JSON201(c, gin.H{
		"message": "Folder created successfully",
		"folder":  folder,
	})
}

func (ctrl *Controller) UploadFiles(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Upload")
	if !ok {
		return
	}
	parentID, ok := ctrl.folderQuery(c, "Upload")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] Failed to parse multipart form: %v", err)
		utils.JSON400(c, "Failed to read upload: "+err.Error())
		return
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		utils.JSON400(c, "At least one file is required")
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, service.UploadFile{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: contentType,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		})
	}

	report, err := ctrl.Service.UploadFiles(ctx, ownerID, parentID, files)
	if err != nil {
		ctrl.writeError(ctx, c, "Upload", err)
		return
	}

	utils.JSON200(c, dto.UploadFilesResponseDTO{
		Message: fmt.Sprintf("%d file(s) uploaded, %d skipped, %d rejected",
			len(report.Uploaded), len(report.Skipped), len(report.Rejected)),
		UploadedCount: len(report.Uploaded),
		SkippedCount:  len(report.Skipped),
		RejectedCount: len(report.Rejected),
		UploadReport:  report,
	})
}

func (ctrl *Controller) GetEntryStats(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Entry")
	if !ok {
		return
	}
	id, ok := ctrl.idParam(c, "Entry")
	if !ok {
		return
	}

	stats, err := ctrl.Service.Stats(ctx, ownerID, id)
	if err != nil {
		ctrl.writeError(ctx, c, "Entry", err)
		return
	}

	utils.JSON200(c, stats)
}

func (ctrl *Controller) DownloadFile(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Download")
	if !ok {
		return
	}
	id, ok := ctrl.idParam(c, "Download")
	if !ok {
		return
	}

	entry, reader, info, err := ctrl.Service.OpenFile(ctx, ownerID, id)
	if err != nil {
		ctrl.writeError(ctx, c, "Download", err)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		if stored, ok := entry.BlobMeta["content_type"].(string); ok && stored != "" {
			contentType = stored
		} else {
			contentType = "application/octet-stream"
		}
	}

	c.DataFromReader(http.StatusOK, info.Size, contentType, reader, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": entry.Name}),
	})
}

func (ctrl *Controller) DeleteEntry(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Entry")
	if !ok {
		return
	}
	id, ok := ctrl.idParam(c, "Entry")
	if !ok {
		return
	}

	removed, err := ctrl.Service.DeleteEntry(ctx, ownerID, id)
	if err != nil {
		ctrl.writeError(ctx, c, "Entry", err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Entry] Deleted %s with %d record(s) for user %s", id, removed, ownerID)
	utils.JSON200(c, dto.DeleteEntryResponseDTO{
		Message: "Entry deleted successfully",
		Removed: removed,
	})
}

func (ctrl *Controller) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID, ok := ctrl.ownerFromContext(c, "Dashboard")
	if !ok {
		return
	}

	dashboard, err := ctrl.Service.Dashboard(ctx, ownerID)
	if err != nil {
		ctrl.writeError(ctx, c, "Dashboard", err)
		return
	}

	utils.JSON200(c, dashboard)
}
