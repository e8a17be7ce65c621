package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"trainlog/internal/certificate"
	"trainlog/internal/config"
	"trainlog/internal/session"
	"trainlog/internal/training"
)

// Server wires the in-memory stores to the JSON API.
type Server struct {
	cfg    config.App
	store  *training.Store
	certs  *certificate.Store
	holder *session.Holder
	users  *session.Directory
}

// NewServer creates the handler set over the given stores.
func NewServer(cfg config.App, store *training.Store, certs *certificate.Store, holder *session.Holder, users *session.Directory) *Server {
	return &Server{cfg: cfg, store: store, certs: certs, holder: holder, users: users}
}

// Register attaches all API routes to the engine.
func (s *Server) Register(r *gin.Engine) {
	r.POST("/v1/auth/signup", s.signup)
	r.POST("/v1/auth/login", s.login)
	r.POST("/v1/auth/logout", s.logout)

	guarded := r.Group("/v1", session.UserAuth(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))
	guarded.GET("/trainings", s.listTrainings)
	guarded.POST("/trainings", s.createTraining)
	guarded.GET("/trainings/:id", s.getTraining)
	guarded.GET("/scheduled", s.upcomingTrainings)
	guarded.PUT("/trainings/:id", s.updateTraining)
	guarded.DELETE("/trainings/:id", s.deleteTraining)
	guarded.GET("/certificates", s.listCertificates)
	guarded.GET("/stats", s.stats)
	guarded.POST("/uploads", s.upload)
	guarded.GET("/uploads/:id", s.serveUpload)

	admin := guarded.Group("/admin", session.RequireAdmin())
	admin.GET("/report", s.adminReport)
}

func (s *Server) signup(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.holder.Signup(c.Request.Context(), req.Name, req.Email, req.Password, session.Role(req.Role))
	if err != nil {
		s.authError(c, err)
		return
	}
	s.issueToken(c, user)
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := s.holder.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.authError(c, err)
		return
	}
	s.issueToken(c, user)
}

func (s *Server) logout(c *gin.Context) {
	s.holder.Logout()
	c.Status(http.StatusNoContent)
}

func (s *Server) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrAuthInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "authentication already in progress"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "authentication cancelled"})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	}
}

func (s *Server) issueToken(c *gin.Context, user session.User) {
	token, exp, err := session.Issue(user, s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	s.users.Add(user)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp.Unix(),
		"user":       user,
	})
}

func (s *Server) listTrainings(c *gin.Context) {
	page, size := 1, s.cfg.PageSize
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := c.Query("size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 1 && parsed <= 100 {
			size = parsed
		}
	}
	typ := training.Type(c.DefaultQuery("type", string(training.TypeAll)))

	records := training.SortNewestFirst(s.store.List())
	filtered := training.Filter(records, c.Query("q"), typ)
	c.JSON(http.StatusOK, training.Paginate(filtered, page, size))
}

func (s *Server) createTraining(c *gin.Context) {
	user, _ := session.FromContext(c)
	in, ok := s.bindForm(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, s.store.Add(user.ID, in))
}

func (s *Server) getTraining(c *gin.Context) {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "training record not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updateTraining(c *gin.Context) {
	in, ok := s.bindForm(c)
	if !ok {
		return
	}
	rec, err := s.store.Update(c.Param("id"), in)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "training record not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteTraining(c *gin.Context) {
	s.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// bindForm parses and validates the record form shared by create and update.
func (s *Server) bindForm(c *gin.Context) (training.FormInput, bool) {
	var in training.FormInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return training.FormInput{}, false
	}
	errs := training.Validate(in)
	if in.Certificate != nil {
		if _, _, ok := s.certs.Get(in.Certificate.RefID); !ok {
			errs["certificate_file"] = "unknown certificate upload"
		}
	}
	if !errs.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return training.FormInput{}, false
	}
	return in, true
}

func (s *Server) upcomingTrainings(c *gin.Context) {
	records := training.Upcoming(s.store.List(), time.Now())
	c.JSON(http.StatusOK, gin.H{"items": records, "total": len(records)})
}

func (s *Server) listCertificates(c *gin.Context) {
	records := training.WithCertificates(training.SortNewestFirst(s.store.List()))
	c.JSON(http.StatusOK, gin.H{"items": records, "total": len(records)})
}

func (s *Server) stats(c *gin.Context) {
	user, _ := session.FromContext(c)
	owned := training.OwnedBy(s.store.List(), user.ID)
	c.JSON(http.StatusOK, training.ComputeStats(owned, time.Now(), s.cfg.TargetHours))
}

func (s *Server) adminReport(c *gin.Context) {
	teachers := make([]training.Teacher, 0, s.users.Len())
	for _, u := range s.users.List() {
		teachers = append(teachers, training.Teacher{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  string(u.Role),
		})
	}
	c.JSON(http.StatusOK, training.BuildAdminReport(s.store.List(), teachers, s.cfg.TargetHours))
}

func (s *Server) upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, training.MaxCertificateSize+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	size := header.Size
	if int64(len(data)) > size {
		size = int64(len(data))
	}
	if errs := training.ValidateCertificateFile(header.Filename, size, contentType); !errs.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	ref := s.certs.Put(header.Filename, contentType, data)
	c.JSON(http.StatusCreated, gin.H{
		"id":           ref.ID,
		"file_name":    ref.FileName,
		"content_type": ref.ContentType,
		"size":         ref.Size,
		"url":          "/v1/uploads/" + ref.ID,
	})
}

func (s *Server) serveUpload(c *gin.Context) {
	ref, data, ok := s.certs.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "upload not found"})
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+ref.FileName+`"`)
	c.Data(http.StatusOK, ref.ContentType, data)
}
