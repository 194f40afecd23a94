// Package validation holds the form checks applied above the repositories.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
)

var categoryNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9 -]{0,31}$`)

// ValidateUsername requires a non-blank username of at most 32 characters.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if len([]rune(username)) > 32 {
		return errors.New("username must be at most 32 characters")
	}
	return nil
}

// ValidateEmail requires a bare address such as "john@example.com".
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}
	return nil
}

// ValidateLink accepts an empty link or an absolute http(s) URL.
func ValidateLink(link string) error {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("link must be an http or https URL")
	}
	return nil
}

// ValidatePostContent requires a caption and exactly one of image or video.
func ValidatePostContent(caption, image, video string) error {
	if strings.TrimSpace(caption) == "" {
		return errors.New("caption is required")
	}
	hasImage, hasVideo := strings.TrimSpace(image) != "", strings.TrimSpace(video) != ""
	switch {
	case !hasImage && !hasVideo:
		return errors.New("an image or a video is required")
	case hasImage && hasVideo:
		return errors.New("a post carries either an image or a video, not both")
	}
	return nil
}

// ValidateCommentText requires non-blank text.
func ValidateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("comment text is required")
	}
	return nil
}

// NormalizeCategoryName lowercases and trims a category name so it matches post tags.
func NormalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateCategoryName validates a normalized category name.
func ValidateCategoryName(name string) error {
	if !categoryNameRegex.MatchString(name) {
		return errors.New("category name must be 1-32 characters of lowercase letters, numbers, spaces, and hyphens")
	}
	if strings.HasSuffix(name, "-") || strings.HasSuffix(name, " ") {
		return errors.New("category name cannot end with a hyphen or space")
	}
	return nil
}
