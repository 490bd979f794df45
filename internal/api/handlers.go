package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/youruser/posterapp/internal/gallery"
	"github.com/youruser/posterapp/internal/genapi"
	"github.com/youruser/posterapp/internal/poster"
	"github.com/youruser/posterapp/internal/share"
	"github.com/youruser/posterapp/internal/storage"
)

// Server holds the handlers' collaborators.
type Server struct {
	Generator *poster.Generator
	GenAPI    *genapi.Client
	Store     *storage.Store
	Index     *gallery.Index
	Log       *slog.Logger
}

// NewServer creates the API server. genClient may be nil when generation is
// disabled; poster requests must then carry a pre-generated character image.
func NewServer(gen *poster.Generator, genClient *genapi.Client, store *storage.Store, index *gallery.Index, log *slog.Logger) *Server {
	return &Server{Generator: gen, GenAPI: genClient, Store: store, Index: index, Log: log}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createPoster accepts a multipart form with name, designation and prompt
// fields plus either a "photo" file (sent to the generation API) or a
// pre-generated "character" image file.
func (s *Server) createPoster(c *gin.Context) {
	name := c.PostForm("name")
	designation := c.PostForm("designation")
	prompt := c.PostForm("prompt")

	character, status, err := s.characterImage(c, prompt)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	pngBytes, err := s.Generator.MergePNG(c.Request.Context(), character, name, designation)
	if err != nil {
		s.Log.Error("poster pipeline failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	id := newID()
	path, err := s.Store.Save(id, pngBytes)
	if err != nil {
		s.Log.Error("poster save failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// record the fields as rendered so listings match the poster
	recName, recDesignation := s.Generator.DisplayFields(name, designation)
	rec := gallery.Record{
		ID:          id,
		Name:        recName,
		Designation: recDesignation,
		Prompt:      prompt,
		FilePath:    path,
		PublicURL:   s.Store.PublicURL(id),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Index.Add(rec); err != nil {
		// the poster itself is already stored and servable
		s.Log.Error("gallery index update failed", "id", id, "error", err)
	}

	s.Log.Info("poster created", "id", id, "name", rec.Name)
	c.JSON(http.StatusCreated, gin.H{"id": id, "url": rec.PublicURL})
}

// characterImage resolves the poster's character layer: a directly uploaded
// character image wins, otherwise the photo is sent to the generation API.
// Returns the HTTP status to use when err is non-nil.
func (s *Server) characterImage(c *gin.Context, prompt string) (image.Image, int, error) {
	if file, err := c.FormFile("character"); err == nil {
		img, err := decodeUpload(file)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		return img, 0, nil
	}

	photo, err := c.FormFile("photo")
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("either a photo or a character image file is required")
	}
	if s.GenAPI == nil {
		return nil, http.StatusBadRequest, errors.New("image generation is not configured; upload a character image instead")
	}
	f, err := photo.Open()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	img, err := s.GenAPI.Generate(c.Request.Context(), data, prompt)
	if err != nil {
		s.Log.Error("character generation failed", "error", err)
		return nil, http.StatusBadGateway, err
	}
	return img, 0, nil
}

func decodeUpload(file *multipart.FileHeader) (image.Image, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, errors.New("uploaded file is not a decodable image")
	}
	return img, nil
}

// listPosters returns the gallery, optionally filtered by ?q= and exported as
// a text manifest with ?format=manifest.
func (s *Server) listPosters(c *gin.Context) {
	records := gallery.Filter(s.Index.List(), c.Query("q"))
	if c.Query("format") == "manifest" {
		c.String(http.StatusOK, gallery.ExportManifest(records))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "posters": records})
}

var idPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

// posterImage serves a stored poster PNG.
func (s *Server) posterImage(c *gin.Context) {
	id := c.Param("id")
	if !idPattern.MatchString(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid poster id"})
		return
	}
	data, err := s.Store.Open(id)
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "poster not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// posterQR returns a QR code PNG pointing at the poster's public URL.
func (s *Server) posterQR(c *gin.Context) {
	rec, ok := s.Index.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "poster not found"})
		return
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = v
	}
	data, err := share.PNG(rec.PublicURL, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// newID returns a random 16-hex-character poster id.
func newID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b)
}
