package server

import (
	"time"

	"communityhub/internal/models"
	"communityhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// GetModerationQueue handles GET /api/admin/posts?status=
// The status defaults to pending.
func (s *Server) GetModerationQueue(c *fiber.Ctx) error {
	status := models.PostStatus(c.Query("status", string(models.PostStatusPending)))
	posts, err := s.postService.ListByStatus(c.UserContext(), s.session, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// ApprovePost handles POST /api/admin/posts/:id/approve
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	return s.moderate(c, models.PostStatusApproved)
}

// RejectPost handles POST /api/admin/posts/:id/reject
func (s *Server) RejectPost(c *fiber.Ctx) error {
	return s.moderate(c, models.PostStatusRejected)
}

func (s *Server) moderate(c *fiber.Ctx, status models.PostStatus) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.postService.Moderate(c.UserContext(), s.session, id, status))
}

// DeletePost handles DELETE /api/admin/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.postService.DeletePost(c.UserContext(), s.session, id))
}

// SuspendUser handles POST /api/admin/users/:id/suspend
func (s *Server) SuspendUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.userService.SetSuspended(c.UserContext(), s.session, id, true))
}

// UnsuspendUser handles POST /api/admin/users/:id/unsuspend
func (s *Server) UnsuspendUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.userService.SetSuspended(c.UserContext(), s.session, id, false))
}

// DeleteUser handles DELETE /api/admin/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.userService.DeleteUser(c.UserContext(), s.session, id))
}

// CreateCategory handles POST /api/admin/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.categoryService.Create(c.UserContext(), s.session, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// UpdateCategory handles PUT /api/admin/categories/:id
func (s *Server) UpdateCategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	var req updateCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	return noContent(c, s.categoryService.Update(c.UserContext(), s.session, id, req.Name, req.Description))
}

// DeleteCategory handles DELETE /api/admin/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.categoryService.Delete(c.UserContext(), s.session, id))
}

// GetStats handles GET /api/admin/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.statsService.Compute(c.UserContext(), s.session, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
