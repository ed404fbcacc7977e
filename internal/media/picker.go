// Package media picks images from a local gallery directory and encodes
// them for inline delivery.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/roomchat/internal/errors"
)

// Permission is the recorded gallery access decision
type Permission int

const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionDenied
)

// Access values as stored in the config file
const (
	accessGranted = "granted"
	accessDenied  = "denied"
)

// ParsePermission maps a stored access value to a Permission
func ParsePermission(access string) Permission {
	switch access {
	case accessGranted:
		return PermissionGranted
	case accessDenied:
		return PermissionDenied
	default:
		return PermissionUndetermined
	}
}

// String returns the stored access value
func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return accessGranted
	case PermissionDenied:
		return accessDenied
	default:
		return ""
	}
}

// Asker asks the user whether the gallery may be read
type Asker func(ctx context.Context) (bool, error)

// Candidate is an image file offered by the picker
type Candidate struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Gallery is an image picker over one directory
type Gallery struct {
	dir     string
	mu      sync.Mutex
	perm    Permission
	persist func(access string) error
}

// NewGallery creates a picker for dir. access is the stored decision and
// persist records a new one; persist may be nil.
func NewGallery(dir, access string, persist func(access string) error) *Gallery {
	return &Gallery{
		dir:     dir,
		perm:    ParsePermission(access),
		persist: persist,
	}
}

// Dir returns the gallery directory
func (g *Gallery) Dir() string {
	return g.dir
}

// Permission returns the current decision without asking
func (g *Gallery) Permission() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.perm
}

// RequestPermission returns whether the gallery may be read. An
// undetermined decision is resolved through ask and stored; a stored
// decision is returned as is.
func (g *Gallery) RequestPermission(ctx context.Context, ask Asker) (bool, error) {
	g.mu.Lock()
	perm := g.perm
	g.mu.Unlock()

	switch perm {
	case PermissionGranted:
		return true, nil
	case PermissionDenied:
		return false, nil
	}

	if ask == nil {
		return false, nil
	}
	granted, err := ask(ctx)
	if err != nil {
		return false, fmt.Errorf("permission prompt failed: %w", err)
	}

	perm = PermissionDenied
	if granted {
		perm = PermissionGranted
	}

	g.mu.Lock()
	g.perm = perm
	g.mu.Unlock()

	if g.persist != nil {
		if err := g.persist(perm.String()); err != nil {
			return granted, fmt.Errorf("failed to store gallery permission: %w", err)
		}
	}
	return granted, nil
}

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// IsImageFile reports whether path has a supported image extension
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// List returns the images in the gallery, newest first
func (g *Gallery) List(ctx context.Context) ([]Candidate, error) {
	if g.Permission() != PermissionGranted {
		return nil, apierrors.ErrPermissionDenied
	}

	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery: %w", err)
	}

	var out []Candidate
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // vanished while listing
		}
		out = append(out, Candidate{
			Path:    filepath.Join(g.dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ModTime.After(out[j].ModTime)
	})
	return out, nil
}

// Load reads and encodes candidate with opts
func (g *Gallery) Load(ctx context.Context, candidate Candidate, opts PickOptions) (*Asset, error) {
	if g.Permission() != PermissionGranted {
		return nil, apierrors.ErrPermissionDenied
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return EncodeFile(candidate.Path, opts)
}
