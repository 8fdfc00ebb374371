package dto

import "github.com/tnqbao/gau-drive-service/service"

type CreateFolderRequestDTO struct {
	Name string `json:"name" form:"name" binding:"required,max=255"`
}

type UploadFilesResponseDTO struct {
	Message       string `json:"message"`
	UploadedCount int    `json:"uploaded_count"`
	SkippedCount  int    `json:"skipped_count"`
	RejectedCount int    `json:"rejected_count"`
	*service.UploadReport
}

type DeleteEntryResponseDTO struct {
	Message string `json:"message"`
	Removed int    `json:"removed"`
}
