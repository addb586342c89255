package patch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	cp "github.com/otiai10/copy"
	"go.uber.org/zap"
)

// ErrCritical is returned by every write after one write has failed. The
// flag lasts for the life of the Store so a broken save never looks like a
// successful one.
var ErrCritical = errors.New("patch: writes disabled after a failed save")

// Scope is the permission scope a document directory belongs to.
type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeShared Scope = "shared"
)

const docExt = ".json"

// Store reads and writes documents under dir/<scope>/<origin>.json.
// Single-goroutine access only.
type Store struct {
	dir      string
	log      *zap.Logger
	critical error
	now      func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log, now: time.Now}
}

// Path returns the file a document for origin lives in.
func (s *Store) Path(scope Scope, origin string) string {
	return filepath.Join(s.dir, string(scope), origin+docExt)
}

// Critical returns the latched write failure, if any.
func (s *Store) Critical() error {
	return s.critical
}

// Load reads the document for origin. A missing file is an empty document;
// a malformed one is logged and replaced by an empty document, so the next
// write overwrites it.
func (s *Store) Load(scope Scope, origin string) *Document {
	path := s.Path(scope, origin)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("patch document unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return NewDocument(origin)
	}
	doc, err := ParseDocument(origin, raw)
	if err != nil {
		s.log.Warn("patch document malformed, it will be overwritten",
			zap.String("path", path), zap.Error(err))
		return NewDocument(origin)
	}
	return doc
}

// InvalidDocument is a document file LoadAll could not use.
type InvalidDocument struct {
	Path string
	Err  error
}

// LoadAll reads every document of a scope, sorted by origin. Unreadable or
// malformed documents are skipped with a warning and returned in invalid.
func (s *Store) LoadAll(scope Scope) (docs []*Document, invalid []InvalidDocument, err error) {
	dir := filepath.Join(s.dir, string(scope))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read patch dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != docExt {
			continue
		}
		origin := strings.TrimSuffix(e.Name(), docExt)
		path := filepath.Join(dir, e.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("skip unreadable patch document", zap.String("path", path), zap.Error(err))
			invalid = append(invalid, InvalidDocument{Path: path, Err: err})
			continue
		}
		doc, err := ParseDocument(origin, raw)
		if err != nil {
			s.log.Warn("skip malformed patch document", zap.String("path", path), zap.Error(err))
			invalid = append(invalid, InvalidDocument{Path: path, Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Origin < docs[j].Origin })
	return docs, invalid, nil
}

// Write merges each document into what is on disk and rewrites the files.
// Without merge a computed record replaces the stored one; with merge only
// the fields it carries are written.
func (s *Store) Write(scope Scope, docs map[string]*Document, merge bool) error {
	if s.critical != nil {
		return s.critical
	}
	origins := make([]string, 0, len(docs))
	for o := range docs {
		origins = append(origins, o)
	}
	sort.Strings(origins)
	for _, origin := range origins {
		update := docs[origin]
		doc := s.Load(scope, origin)
		doc.Absorb(update, merge)
		if err := s.Save(scope, doc); err != nil {
			return err
		}
	}
	return nil
}

// Save atomically rewrites one document. Any failure latches ErrCritical.
func (s *Store) Save(scope Scope, doc *Document) error {
	if s.critical != nil {
		return s.critical
	}
	path := s.Path(scope, doc.Origin)
	if err := s.save(path, doc); err != nil {
		s.critical = fmt.Errorf("%w: %v", ErrCritical, err)
		s.log.Error("patch document write failed, disabling further writes",
			zap.String("path", path), zap.Error(err))
		return s.critical
	}
	s.log.Debug("patch document saved", zap.String("path", path), zap.Int("records", doc.Len()))
	return nil
}

func (s *Store) save(path string, doc *Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("open temp for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Backup copies the scope directory to dir/backup/<timestamp>/<scope> and
// returns the destination. Nothing is copied when the scope has no files.
func (s *Store) Backup(scope Scope) (string, error) {
	src := filepath.Join(s.dir, string(scope))
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	dst := filepath.Join(s.dir, "backup", s.now().Format("20060102-150405"), string(scope))
	if err := cp.Copy(src, dst); err != nil {
		return "", fmt.Errorf("backup %s: %w", src, err)
	}
	s.log.Info("patch documents backed up", zap.String("dest", dst))
	return dst, nil
}
