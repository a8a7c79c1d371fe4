package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"fyp-management-api/middleware"
	"fyp-management-api/services"
	"fyp-management-api/utils"
)

// GetDocuments returns documents visible to the acting user, optionally
// filtered by project and type.
func GetDocuments(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	documents, err := documentSvc.List(actor, queryUint(c, "project_id"), c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     len(documents),
	})
}

// GetDocument returns a single document by ID.
func GetDocument(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	document, err := documentSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// UploadDocument stores a new document version for a project. The version
// number is assigned server side.
func UploadDocument(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	name := utils.SanitizeInput(c.PostForm("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document name is required"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	path, err := saveUpload(c, file, "documents")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	document, err := documentSvc.Create(actor, services.DocumentInput{
		ProjectID:   uint(projectID),
		Name:        name,
		Type:        c.PostForm("type"),
		FilePath:    path,
		Description: utils.SanitizeInput(c.PostForm("description")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"document": document,
		"message":  "Document uploaded successfully",
	})
}

// DownloadDocument streams the stored file for a document.
func DownloadDocument(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	id, ok := paramID(c)
	if !ok {
		return
	}

	document, err := documentSvc.Get(actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	fullPath := filepath.Join(uploadDir(), document.FilePath)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found on server"})
		return
	}

	c.FileAttachment(fullPath, document.Name+filepath.Ext(fullPath))
}
