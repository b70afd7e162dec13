// Package server exposes the subtitle pipeline over HTTP: submit a video,
// poll the job, stream its progress, download the finished SRT.
package server

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/vaibh/v2srt/internal/media"
	"github.com/vaibh/v2srt/internal/queue"
	"github.com/vaibh/v2srt/internal/storage"
)

// Server wires the worker pool and run history into a fiber app.
type Server struct {
	pool      *queue.WorkerPool
	history   *storage.History
	uploadDir string
	outputDir string
	maxSizeMB int
}

// New creates a server. uploadDir receives submitted videos, outputDir the
// generated SRT files.
func New(pool *queue.WorkerPool, history *storage.History, uploadDir, outputDir string, maxSizeMB int) *Server {
	return &Server{
		pool:      pool,
		history:   history,
		uploadDir: uploadDir,
		outputDir: outputDir,
		maxSizeMB: maxSizeMB,
	}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: s.maxSizeMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	app.Post("/jobs", s.handleSubmit)
	app.Get("/jobs/:id", s.handleJobStatus)
	app.Get("/jobs/:id/subtitles", s.handleSubtitles)
	app.Get("/runs", s.handleRuns)
	app.Get("/ws/progress/:id", websocket.New(s.handleProgress))

	return app
}

// handleSubmit accepts a multipart video upload and queues a subtitle job.
func (s *Server) handleSubmit(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = file.Filename
	}

	maxSize := int64(s.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", s.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !media.SupportedInput(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported video format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	jobID := uuid.New().String()
	videoPath := filepath.Join(s.uploadDir, jobID+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, videoPath); err != nil {
		log.Printf("failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	outputPath := filepath.Join(s.outputDir, jobID+".srt")
	job := queue.NewJob(jobID, name, videoPath, outputPath)
	s.pool.Enqueue(job)

	return c.Status(202).JSON(fiber.Map{
		"job_id": jobID,
		"status": queue.StatusQueued,
	})
}

func (s *Server) handleJobStatus(c *fiber.Ctx) error {
	job, ok := s.pool.Get(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}

	status, jobErr := job.Status()
	resp := fiber.Map{
		"job_id":     job.ID,
		"name":       job.Name,
		"status":     status,
		"created_at": job.CreatedAt,
	}
	if jobErr != nil {
		resp["error"] = jobErr.Error()
	}
	return c.JSON(resp)
}

func (s *Server) handleSubtitles(c *fiber.Ctx) error {
	job, ok := s.pool.Get(c.Params("id"))
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}
	if status, _ := job.Status(); status != queue.StatusCompleted {
		return c.Status(409).JSON(fiber.Map{"error": "Job not completed", "status": status})
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Subtitle file not found"})
	}
	return c.SendFile(job.OutputPath)
}

func (s *Server) handleRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	runs, err := s.history.ListRuns(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// handleProgress streams a job's pipeline progress lines over a websocket,
// replaying earlier lines first. The connection closes when the job ends.
func (s *Server) handleProgress(c *websocket.Conn) {
	defer c.Close()

	job, ok := s.pool.Get(c.Params("id"))
	if !ok {
		c.WriteMessage(websocket.TextMessage, []byte("error: job not found"))
		return
	}

	history, live := job.Subscribe()
	for _, line := range history {
		if err := c.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}
	for line := range live {
		if err := c.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
			return
		}
	}

	status, jobErr := job.Status()
	final := "done: " + status
	if jobErr != nil {
		final += ": " + jobErr.Error()
	}
	c.WriteMessage(websocket.TextMessage, []byte(final))
}
