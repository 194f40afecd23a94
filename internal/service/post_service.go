package service

import (
	"context"
	"strings"

	"communityhub/internal/events"
	"communityhub/internal/featureflags"
	"communityhub/internal/models"
	"communityhub/internal/repository"
	"communityhub/internal/validation"
)

type PostService struct {
	posts     repository.PostRepository
	publisher events.Publisher
	flags     *featureflags.Manager
}

type CreatePostInput struct {
	Image    string
	Video    string
	Caption  string
	Category string
}

type UpdatePostInput struct {
	Caption  *string
	Category *string
	Image    *string
	Video    *string
}

func NewPostService(posts repository.PostRepository, publisher events.Publisher, flags *featureflags.Manager) *PostService {
	return &PostService{
		posts:     posts,
		publisher: publisherOrNop(publisher),
		flags:     flags,
	}
}

// Feed returns approved posts, newest first.
func (s *PostService) Feed(ctx context.Context) ([]models.Post, error) {
	return s.posts.ListApproved(ctx)
}

// GetPost returns one post. Unapproved posts are reported as not found to
// anyone but their author and admins.
func (s *PostService) GetPost(ctx context.Context, sess Session, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusApproved {
		return post, nil
	}
	viewer, err := sess.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !canSeeUnapproved(viewer, post.UserID) {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// ListByUser returns a profile's posts. The owner and admins see every status,
// everyone else sees approved posts only.
func (s *PostService) ListByUser(ctx context.Context, sess Session, userID string) ([]models.Post, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	viewer, err := sess.Current(ctx)
	if err != nil {
		return nil, err
	}
	if canSeeUnapproved(viewer, userID) {
		return posts, nil
	}

	approved := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Status == models.PostStatusApproved {
			approved = append(approved, p)
		}
	}
	return approved, nil
}

func canSeeUnapproved(viewer *models.User, authorID string) bool {
	return viewer != nil && (viewer.ID == authorID || viewer.IsAdmin())
}

// ListByStatus is the moderation queue view. Admin only.
func (s *PostService) ListByStatus(ctx context.Context, sess Session, status models.PostStatus) ([]models.Post, error) {
	if _, err := requireAdmin(ctx, sess); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status: " + string(status))
	}
	return s.posts.ListByStatus(ctx, status)
}

// CreatePost submits a post for moderation on behalf of the signed-in user.
func (s *PostService) CreatePost(ctx context.Context, sess Session, in CreatePostInput) (*models.Post, error) {
	author, err := requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if author.Suspended {
		return nil, models.NewForbiddenError("Suspended users cannot post")
	}
	if err := validation.ValidatePostContent(in.Caption, in.Image, in.Video); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		ID:         newID(),
		UserID:     author.ID,
		Username:   author.Username,
		UserAvatar: author.Avatar,
		Image:      strings.TrimSpace(in.Image),
		Video:      strings.TrimSpace(in.Video),
		Caption:    strings.TrimSpace(in.Caption),
		Category:   validation.NormalizeCategoryName(in.Category),
		Likes:      []string{},
		Comments:   []models.Comment{},
		CreatedAt:  now(),
		Status:     models.PostStatusPending,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.PostCreated, author.ID, post.ID, map[string]any{
		"category": post.Category,
	}))
	return post, nil
}

// UpdatePost edits a post's content. Only the author or an admin may edit.
// A missing post is ignored.
func (s *PostService) UpdatePost(ctx context.Context, sess Session, postID string, in UpdatePostInput) error {
	user, err := requireUser(ctx, sess)
	if err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if models.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if post.UserID != user.ID && !user.IsAdmin() {
		return models.NewForbiddenError("Only the author can edit this post")
	}

	update := models.PostUpdate{
		Caption:  in.Caption,
		Category: in.Category,
		Image:    in.Image,
		Video:    in.Video,
	}
	if update.Category != nil {
		normalized := validation.NormalizeCategoryName(*update.Category)
		update.Category = &normalized
	}
	edited := post.Clone()
	update.Apply(&edited)
	if err := validation.ValidatePostContent(edited.Caption, edited.Image, edited.Video); err != nil {
		return models.NewValidationError(err.Error())
	}
	return s.posts.Update(ctx, postID, update)
}

// ToggleLike flips the signed-in user's like and reports whether the post is now liked.
func (s *PostService) ToggleLike(ctx context.Context, sess Session, postID string) (bool, error) {
	user, err := requireUser(ctx, sess)
	if err != nil {
		return false, err
	}
	liked, err := s.posts.ToggleLike(ctx, postID, user.ID)
	if err != nil {
		return false, err
	}
	events.Emit(ctx, s.publisher, events.New(events.PostLiked, user.ID, postID, map[string]any{
		"liked": liked,
	}))
	return liked, nil
}

// Comment appends a comment by the signed-in user.
func (s *PostService) Comment(ctx context.Context, sess Session, postID, text string) (*models.Comment, error) {
	user, err := requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !s.flags.Allowed(featureflags.Comments, user.ID) {
		return nil, models.NewForbiddenError("Comments are disabled")
	}
	if err := validation.ValidateCommentText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := models.Comment{
		ID:         newID(),
		UserID:     user.ID,
		Username:   user.Username,
		UserAvatar: user.Avatar,
		Text:       strings.TrimSpace(text),
		CreatedAt:  now(),
	}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.publisher, events.New(events.PostCommented, user.ID, postID, map[string]any{
		"commentId": comment.ID,
	}))
	return &comment, nil
}

// Share increments the share counter.
func (s *PostService) Share(ctx context.Context, sess Session, postID string) error {
	user, err := requireUser(ctx, sess)
	if err != nil {
		return err
	}
	if !s.flags.Allowed(featureflags.Sharing, user.ID) {
		return models.NewForbiddenError("Sharing is disabled")
	}
	if err := s.posts.Share(ctx, postID); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.PostShared, user.ID, postID, nil))
	return nil
}

// Moderate sets a post's status. Admin only.
func (s *PostService) Moderate(ctx context.Context, sess Session, postID string, status models.PostStatus) error {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.posts.SetStatus(ctx, postID, status); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.PostModerated, admin.ID, postID, map[string]any{
		"status": string(status),
	}))
	return nil
}

// DeletePost removes a post. Admin only.
func (s *PostService) DeletePost(ctx context.Context, sess Session, postID string) error {
	admin, err := requireAdmin(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.New(events.PostDeleted, admin.ID, postID, nil))
	return nil
}
