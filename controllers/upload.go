package controllers

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fyp-management-api/utils"
)

const maxUploadSize = 20 * 1024 * 1024 // 20MB

var allowedUploadTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".zip":  true,
	".tar":  true,
	".gz":   true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".txt":  true,
	".md":   true,
}

// uploadDir returns the configured upload root, defaulting to ./uploads.
func uploadDir() string {
	if dir := os.Getenv("UPLOAD_PATH"); dir != "" {
		return dir
	}
	return "./uploads"
}

// saveUpload validates and stores an uploaded file under a random name,
// returning the stored path relative to the upload root.
func saveUpload(c *gin.Context, file *multipart.FileHeader, subdir string) (string, error) {
	if file.Size > maxUploadSize {
		return "", fmt.Errorf("file size exceeds %dMB limit", maxUploadSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadTypes[ext] {
		return "", fmt.Errorf("file type %s not allowed", ext)
	}

	dir := filepath.Join(uploadDir(), subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	stored := uuid.New().String() + "_" + utils.SafeFilename(file.Filename)
	dstPath := filepath.Join(dir, stored)
	if err := c.SaveUploadedFile(file, dstPath); err != nil {
		return "", err
	}

	return filepath.Join(subdir, stored), nil
}
