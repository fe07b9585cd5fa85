package avatar

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// Resolver derives a default avatar URL from an email identity.
type Resolver interface {
	Resolve(email string) (string, error)
}

// GravatarResolver builds gravatar image URLs. No network call is made;
// gravatar serves an identicon fallback for unknown hashes.
type GravatarResolver struct {
	Size int
}

// NewGravatarResolver creates a resolver with the given image size in pixels.
func NewGravatarResolver(size int) *GravatarResolver {
	if size <= 0 {
		size = 250
	}
	return &GravatarResolver{Size: size}
}

func (g *GravatarResolver) Resolve(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("empty email")
	}
	hash := md5.Sum([]byte(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon&s=%d", hash, g.Size), nil
}
