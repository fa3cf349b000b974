package server

import "github.com/gofiber/fiber/v3"

func (s *Server) handleHome(c fiber.Ctx) error {
	return c.Render("index", fiber.Map{
		"Title":         ServiceName,
		"Version":       ServiceVersion,
		"MaxTextLength": s.Cfg.MaxTextLength,
	})
}
