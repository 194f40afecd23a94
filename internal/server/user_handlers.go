package server

import (
	"communityhub/internal/models"
	"communityhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
	Link     *string `json:"link"`
}

// GetUsers handles GET /api/users and GET /api/users?role=
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var (
		users []models.User
		err   error
	)
	if role := c.Query("role"); role != "" {
		users, err = s.userService.ListByRole(ctx, models.Role(role))
	} else {
		users, err = s.userService.List(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), s.session, service.ProfileInput{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Link:     req.Link,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.userService.Follow(c.UserContext(), s.session, id))
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	return noContent(c, s.userService.Unfollow(c.UserContext(), s.session, id))
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return nil
	}
	posts, err := s.postService.ListByUser(c.UserContext(), s.session, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
