package media

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const DefaultMaxSize int64 = 5 * 1024 * 1024

var (
	ErrNotFound = errors.New("media: file not found")
	ErrRejected = errors.New("media: file rejected")
	// ErrTooLarge is a rejection for size alone; it also matches ErrRejected.
	ErrTooLarge = errors.Wrap(ErrRejected, "media: file too large")
)

var allowedTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Store keeps uploaded images in a flat directory.
type Store struct {
	fs      afero.Fs
	maxSize int64
	now     func() time.Time
}

// NewStore creates a store on fs. Paths are relative to the root of fs.
func NewStore(fs afero.Fs, maxSize int64) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Store{fs: fs, maxSize: maxSize, now: time.Now}
}

// NewDiskStore creates a store rooted at dir on the OS filesystem.
func NewDiskStore(dir string, maxSize int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create media dir %s", dir)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir), maxSize), nil
}

func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// Save stores one image read from r under a generated name and returns that
// name. originalName only supplies the extension. Files that are too large,
// or whose extension or sniffed content is not an allowed image type, are
// rejected with an error wrapping ErrRejected.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	want, ok := allowedTypes[ext]
	if !ok {
		return "", errors.Wrapf(ErrRejected, "extension %q not allowed", ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read upload")
	}
	if int64(len(data)) > s.maxSize {
		return "", errors.Wrapf(ErrTooLarge, "limit %d bytes", s.maxSize)
	}
	if len(data) == 0 {
		return "", errors.Wrap(ErrRejected, "empty file")
	}

	detected := mimetype.Detect(data)
	if !detected.Is(want) {
		return "", errors.Wrapf(ErrRejected, "content type %s does not match %s", detected.String(), ext)
	}

	name := fmt.Sprintf("image-%d-%s%s", s.now().UnixMilli(), random.String(9, random.Numeric), ext)
	if err := afero.WriteReader(s.fs, name, bytes.NewReader(data)); err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	return name, nil
}

// Open returns the stored file called name. Any name that is not a single
// plain path element, or that is not a regular file, is ErrNotFound.
func (s *Store) Open(name string) (afero.File, os.FileInfo, error) {
	if !validName(name) {
		return nil, nil, ErrNotFound
	}
	info, err := s.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrapf(err, "stat %s", name)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, ErrNotFound
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrapf(err, "open %s", name)
	}
	return f, info, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return path.Clean(name) == name && !strings.HasPrefix(name, ".")
}
