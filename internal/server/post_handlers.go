package server

import (
	"communityhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Image    string `json:"image"`
	Video    string `json:"video"`
	Caption  string `json:"caption"`
	Category string `json:"category"`
}

type updatePostRequest struct {
	Caption  *string `json:"caption"`
	Category *string `json:"category"`
	Image    *string `json:"image"`
	Video    *string `json:"video"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), s.session, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), s.session, service.CreatePostInput{
		Image:    req.Image,
		Video:    req.Video,
		Caption:  req.Caption,
		Category: req.Category,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	return noContent(c, s.postService.UpdatePost(c.UserContext(), s.session, id, service.UpdatePostInput{
		Caption:  req.Caption,
		Category: req.Category,
		Image:    req.Image,
		Video:    req.Video,
	}))
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	liked, err := s.postService.ToggleLike(c.UserContext(), s.session, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.postService.Comment(c.UserContext(), s.session, id, req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.postService.Share(c.UserContext(), s.session, id))
}
