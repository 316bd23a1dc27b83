package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/chat"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Upload size cap in bytes, used when the config does not set one.
const defaultMaxUploadBytes = 10 << 20

var (
	imageExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	fileExtensions  = map[string]bool{"pdf": true, "doc": true, "docx": true, "txt": true, "zip": true, "rar": true, "xlsx": true, "xls": true}

	// Known magic bytes per extension. Unknown extensions pass.
	magicBytes = map[string][][]byte{
		"jpg":  {{0xFF, 0xD8, 0xFF}},
		"jpeg": {{0xFF, 0xD8, 0xFF}},
		"png":  {{0x89, 0x50, 0x4E, 0x47}},
		"gif":  {{0x47, 0x49, 0x46, 0x38}},
		"webp": {{0x52, 0x49, 0x46, 0x46}},
		"pdf":  {{0x25, 0x50, 0x44, 0x46}},
		"zip":  {{0x50, 0x4B, 0x03, 0x04}, {0x50, 0x4B, 0x05, 0x06}},
		"rar":  {{0x52, 0x61, 0x72, 0x21}},
		"doc":  {{0xD0, 0xCF, 0x11, 0xE0}},
		"docx": {{0x50, 0x4B, 0x03, 0x04}},
		"xlsx": {{0x50, 0x4B, 0x03, 0x04}},
		"xls":  {{0xD0, 0xCF, 0x11, 0xE0}},
	}

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

	uploadMIMETypes = map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"gif":  "image/gif",
		"webp": "image/webp",
		"webm": "audio/webm",
		"mp3":  "audio/mpeg",
		"pdf":  "application/pdf",
		"doc":  "application/msword",
		"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// UploadsHandler stores chat attachments and voice notes on disk and
// serves them back to the dashboard.
type UploadsHandler struct {
	clients  clients.Repository
	chat     chat.Repository
	audit    *audit.Logger
	baseDir  string
	maxBytes int64
	logger   *logging.Logger
}

// NewUploadsHandler creates the uploads handler. baseDir is the root
// the images/, files/ and voice/ subdirectories live under. maxBytes
// caps the accepted upload size; values <= 0 fall back to the default.
func NewUploadsHandler(clientRepo clients.Repository, chatRepo chat.Repository, auditLog *audit.Logger, baseDir string, maxBytes int64, logger *logging.Logger) *UploadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadsHandler{
		clients:  clientRepo,
		chat:     chatRepo,
		audit:    auditLog,
		baseDir:  baseDir,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (h *UploadsHandler) maxMB() float64 {
	return float64(h.maxBytes) / (1 << 20)
}

// Upload accepts one attachment for a chat. Multipart fields: file,
// instagram_id, is_image.
// POST /admin/api/chat/upload
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+4096)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondFailure(w, http.StatusBadRequest, fmt.Sprintf("File is too large (max %.0fMB)", h.maxMB()))
		return
	}

	instagramID := r.FormValue("instagram_id")
	isImage := r.FormValue("is_image") == "true"
	file, header, err := r.FormFile("file")
	if err != nil || instagramID == "" {
		respondFailure(w, http.StatusBadRequest, "file and instagram_id are required")
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "could not read upload")
		return
	}
	if int64(len(contents)) > h.maxBytes {
		respondFailure(w, http.StatusBadRequest, fmt.Sprintf("File is too large (%.1fMB). Max is %.0fMB.", float64(len(contents))/(1<<20), h.maxMB()))
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if isImage && !imageExtensions[ext] {
		respondFailure(w, http.StatusBadRequest, "Unsupported image format. Allowed: jpg, jpeg, png, gif, webp")
		return
	}
	if !isImage && !fileExtensions[ext] {
		respondFailure(w, http.StatusBadRequest, "Unsupported file format. Allowed: pdf, doc, docx, txt, zip, rar, xlsx, xls")
		return
	}
	if !isSafeFile(contents, ext) {
		respondFailure(w, http.StatusBadRequest, "File failed the safety check")
		return
	}

	client, err := h.clients.GetByInstagramID(r.Context(), instagramID)
	if errors.Is(err, clients.ErrClientNotFound) {
		respondFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		h.logger.Error("load client failed", "instagram_id", instagramID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not load client")
		return
	}

	kind := "files"
	if isImage {
		kind = "images"
	}
	unique := fmt.Sprintf("%d_%s", time.Now().Unix(), sanitizeFilename(header.Filename))
	if err := h.store(kind, unique, contents); err != nil {
		h.logger.Error("store upload failed", "filename", unique, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not store the file")
		return
	}

	body := "📎 " + header.Filename
	messageType := chat.TypeFile
	if isImage {
		body = "🖼️ " + unique
		messageType = chat.TypeImage
	}
	if _, err := h.chat.Append(r.Context(), &chat.AppendRequest{
		ClientID: client.ID,
		Sender:   chat.SenderBot,
		Message:  body,
		Type:     messageType,
	}); err != nil {
		h.logger.Error("store upload message failed", "client_id", client.ID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "File stored but not recorded")
		return
	}

	h.record(r, "send_file", instagramID, "Uploaded "+header.Filename)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "File uploaded",
		"filename":  unique,
		"file_path": "/admin/api/uploads/" + kind + "/" + unique,
		"is_image":  isImage,
	})
}

// Voice accepts a recorded voice note. Multipart fields: voice,
// instagram_id, duration (seconds).
// POST /admin/api/chat/voice
func (h *UploadsHandler) Voice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+4096)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respondFailure(w, http.StatusBadRequest, fmt.Sprintf("Recording is too large (max %.0fMB)", h.maxMB()))
		return
	}

	instagramID := r.FormValue("instagram_id")
	duration := r.FormValue("duration")
	if duration == "" {
		duration = "0"
	}
	voice, _, err := r.FormFile("voice")
	if err != nil || instagramID == "" {
		respondFailure(w, http.StatusBadRequest, "voice and instagram_id are required")
		return
	}
	defer voice.Close()

	contents, err := io.ReadAll(io.LimitReader(voice, h.maxBytes+1))
	if err != nil || int64(len(contents)) > h.maxBytes {
		respondFailure(w, http.StatusBadRequest, "could not read recording")
		return
	}

	client, err := h.clients.GetByInstagramID(r.Context(), instagramID)
	if errors.Is(err, clients.ErrClientNotFound) {
		respondFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	if err != nil {
		h.logger.Error("load client failed", "instagram_id", instagramID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not load client")
		return
	}

	unique := fmt.Sprintf("%d_voice.webm", time.Now().Unix())
	if err := h.store("voice", unique, contents); err != nil {
		h.logger.Error("store voice failed", "filename", unique, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not store the recording")
		return
	}

	if _, err := h.chat.Append(r.Context(), &chat.AppendRequest{
		ClientID: client.ID,
		Sender:   chat.SenderBot,
		Message:  fmt.Sprintf("🎤 %ss|%s", duration, unique),
		Type:     chat.TypeVoice,
	}); err != nil {
		h.logger.Error("store voice message failed", "client_id", client.ID, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Recording stored but not recorded")
		return
	}

	h.record(r, "send_voice", instagramID, fmt.Sprintf("Voice note (%ss)", duration))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Voice note sent",
		"filename":  unique,
		"file_path": "/admin/api/uploads/voice/" + unique,
		"duration":  duration,
	})
}

// Serve returns a stored upload.
// GET /admin/api/uploads/{fileType}/{filename}
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	fileType := chi.URLParam(r, "fileType")
	filename := filepath.Base(chi.URLParam(r, "filename"))

	switch fileType {
	case "images", "files", "voice":
	default:
		jsonError(w, "unknown upload type", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.baseDir, fileType, filename)
	f, err := os.Open(path)
	if err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	contentType := uploadMIMETypes[ext]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("serve upload failed", "filename", filename, "error", err)
	}
}

func (h *UploadsHandler) store(kind, filename string, contents []byte) error {
	dir := filepath.Join(h.baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filename), contents, 0o644)
}

// isSafeFile sniffs the leading bytes against the expected signature
// for the extension.
func isSafeFile(contents []byte, ext string) bool {
	expected, ok := magicBytes[ext]
	if !ok {
		return true
	}
	for _, sig := range expected {
		if bytes.HasPrefix(contents, sig) {
			return true
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(filepath.Base(name), "_")
}

func (h *UploadsHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "client", entityID, details)
}
