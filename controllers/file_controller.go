package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drosell271/aiquiz-manager/models"
	"github.com/drosell271/aiquiz-manager/services"
	"github.com/drosell271/aiquiz-manager/utils"
	"github.com/drosell271/aiquiz-manager/ws"
)

const maxFileSize = 20 * 1024 * 1024 // 20MB

// POST /api/manager/subtopics/:id/files
func UploadFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	rag := c.MustGet("rag").(services.Engine)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subtopic models.Subtopic
	if err := db.First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No se ha adjuntado ningún fichero"})
		return
	}
	if fileHeader.Size > maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "El fichero supera los 20MB"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".pdf", ".txt", ".md":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Formato no soportado (pdf, txt, md)"})
		return
	}

	fileID := uuid.New()

	publicURL, err := utils.UploadFileToSupabase(fileHeader, fileID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error subiendo el fichero al almacenamiento"})
		return
	}

	var userUUID *uuid.UUID
	if parsed, err := uuid.Parse(c.GetString("user_id")); err == nil {
		userUUID = &parsed
	}

	file := models.File{
		ID:           fileID,
		SubtopicID:   subtopicID,
		UploadedBy:   userUUID,
		OriginalName: fileHeader.Filename,
		FilePath:     publicURL,
		FileType:     strings.TrimPrefix(ext, "."),
		FileSize:     fileHeader.Size,
		Status:       models.FileStatusUploaded,
	}
	if err := db.Create(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo guardar el fichero"})
		return
	}
	ws.SendFileStatus(fileID.String(), models.FileStatusUploaded, "")

	// La extracción se hace en la petición (el multipart no sobrevive al
	// handler); el chunking y el indexado siguen en segundo plano.
	db.Model(&file).Update("status", models.FileStatusExtracting)
	ws.SendFileStatus(fileID.String(), models.FileStatusExtracting, "")

	text, err := services.ExtractText(fileHeader, ext)
	if err != nil {
		db.Model(&file).Updates(map[string]interface{}{
			"status":       models.FileStatusError,
			"status_error": err.Error(),
		})
		ws.SendFileStatus(fileID.String(), models.FileStatusError, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo extraer el texto del fichero"})
		return
	}

	db.Model(&file).Updates(map[string]interface{}{
		"status":         models.FileStatusIndexing,
		"extracted_text": text,
	})
	ws.SendFileStatus(fileID.String(), models.FileStatusIndexing, "")

	go indexFile(db, rag, file, subtopicID.String(), text)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Fichero subido; indexando en segundo plano",
		"file":    file,
	})
}

func indexFile(db *gorm.DB, rag services.Engine, file models.File, subtopicID, text string) {
	chunks := services.ChunkText(text, 1500, 200)
	if err := rag.Index(context.Background(), file.ID.String(), subtopicID, chunks); err != nil {
		log.Println("Error indexando el fichero:", err)
		db.Model(&file).Updates(map[string]interface{}{
			"status":       models.FileStatusError,
			"status_error": err.Error(),
		})
		ws.SendFileStatus(file.ID.String(), models.FileStatusError, err.Error())
		return
	}

	now := time.Now()
	db.Model(&file).Updates(map[string]interface{}{
		"status":       models.FileStatusReady,
		"processed_at": &now,
	})
	ws.SendFileStatus(file.ID.String(), models.FileStatusReady, "")
}

// GET /api/manager/subtopics/:id/files
func GetFilesBySubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var files []models.File
	if err := db.Where("subtopic_id = ?", subtopicID).
		Order("created_at DESC").
		Find(&files).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo obtener la lista de ficheros"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": files})
}

// GET /api/manager/files/:id/download-url
//
// Devuelve una URL navegable con un token de propósito único, para que el
// navegador pueda descargar sin cabecera Authorization.
func GetDownloadURL(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var file models.File
	if err := db.First(&file, "id = ?", fileID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Fichero no encontrado"})
		return
	}

	token, err := utils.GenerateDownloadToken(fileID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo generar el enlace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     fmt.Sprintf("/api/files/%s/download?token=%s", fileID, token),
	})
}

// GET /api/files/:id/download?token=...
//
// Ruta pública: la autorización es el token de descarga, verificado contra
// firma, propósito y fichero.
func DownloadFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	fileID := c.Param("id")
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Falta el token de descarga"})
		return
	}

	if err := utils.VerifyDownloadToken(token, fileID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	var file models.File
	if err := db.First(&file, "id = ?", fileID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Fichero no encontrado"})
		return
	}

	c.Redirect(http.StatusFound, file.FilePath)
}

// DELETE /api/manager/files/:id
func DeleteFile(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	rag := c.MustGet("rag").(services.Engine)

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var file models.File
	if err := db.First(&file, "id = ?", fileID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Fichero no encontrado"})
		return
	}

	if err := db.Delete(&file).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "No se pudo eliminar el fichero"})
		return
	}

	// Limpieza del almacenamiento y del índice; un fallo aquí no deshace el
	// borrado del registro
	if err := utils.DeleteFileFromSupabase(fileID.String(), "."+file.FileType); err != nil {
		log.Println("Error borrando el objeto de almacenamiento:", err)
	}
	if err := rag.DeleteFile(context.Background(), fileID.String()); err != nil {
		log.Println("Error borrando los fragmentos del índice:", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Fichero eliminado"})
}

type SearchInput struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// POST /api/manager/subtopics/:id/search
func SearchSubtopic(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	rag := c.MustGet("rag").(services.Engine)

	subtopicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID no válido"})
		return
	}

	var subtopic models.Subtopic
	if err := db.First(&subtopic, "id = ?", subtopicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Subtema no encontrado"})
		return
	}

	var input SearchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "La consulta es obligatoria"})
		return
	}
	if input.Limit <= 0 || input.Limit > 20 {
		input.Limit = 5
	}

	chunks, err := rag.Search(context.Background(), subtopicID.String(), input.Query, input.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error en la búsqueda semántica"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": chunks})
}
