package service

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Example is a pre-rendered reference image for one style, used both as a
// preview after style selection and as the fallback for failed generations.
type Example struct {
	Title    string
	FilePath string
}

// ExamplesService resolves style ids to example images in the examples
// directory. Lookups hit the filesystem, so results are cached briefly.
type ExamplesService struct {
	root   string
	labels map[string]string
	cache  *gocache.Cache
}

func NewExamplesService(root string, labels map[string]string) *ExamplesService {
	return &ExamplesService{
		root:   root,
		labels: labels,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// GetByStyle returns the example for a style, or nil when none is stored.
func (s *ExamplesService) GetByStyle(styleID string) *Example {
	if cached, ok := s.cache.Get(styleID); ok {
		example, _ := cached.(*Example)
		return example
	}

	example := s.lookup(styleID)
	s.cache.Set(styleID, example, gocache.DefaultExpiration)
	return example
}

func (s *ExamplesService) lookup(styleID string) *Example {
	for _, ext := range []string{".jpg", ".jpeg", ".png"} {
		path := filepath.Join(s.root, styleID+ext)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return &Example{
			Title:    s.title(styleID),
			FilePath: path,
		}
	}
	return nil
}

func (s *ExamplesService) title(styleID string) string {
	if label, ok := s.labels[styleID]; ok {
		return label
	}
	return strings.ReplaceAll(styleID, "_", " ")
}
