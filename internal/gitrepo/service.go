// Package gitrepo mirrors a document's version history into a local git
// repository: one commit per transformation, oldest first, each tagged with
// the transformation hash.
package gitrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"gosshub/client/internal/model"
)

const (
	bodyFile = "document.md"
	metaFile = "meta.json"
	tagSpace = "transformation/"
)

var ErrNotMirrored = errors.New("version not mirrored")

// Meta is written next to the body in every commit.
type Meta struct {
	UUID   string    `json:"uuid"`
	Hash   string    `json:"hash"`
	Tags   []string  `json:"tags"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
}

type CommitInfo struct {
	Hash           string
	Message        string
	Author         string
	CreatedAt      time.Time
	Transformation string
}

type MirrorResult struct {
	Path  string
	Added int
	Total int
}

type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Mirror commits every transformation of document not yet in the repository.
// Running it again after new edits only appends the new versions.
func (s *Service) Mirror(document model.Document) (MirrorResult, error) {
	if document.UUID == "" {
		return MirrorResult{}, fmt.Errorf("mirror: document has no uuid")
	}
	lock := s.documentLock(document.UUID)
	lock.Lock()
	defer lock.Unlock()

	path := s.repoPath(document.UUID)
	repo, err := openOrInit(path)
	if err != nil {
		return MirrorResult{}, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return MirrorResult{}, fmt.Errorf("open worktree: %w", err)
	}

	result := MirrorResult{Path: path, Total: len(document.Transformations)}
	for i := len(document.Transformations) - 1; i >= 0; i-- {
		t := document.Transformations[i]
		name := TagName(t.Hash)
		if _, err := repo.Tag(name); err == nil {
			continue
		} else if !errors.Is(err, git.ErrTagNotFound) {
			return result, fmt.Errorf("look up tag %s: %w", name, err)
		}

		version := len(document.Transformations) - i
		hash, err := commitVersion(worktree, document.UUID, version, t)
		if err != nil {
			return result, err
		}
		if _, err := repo.CreateTag(name, hash, nil); err != nil {
			return result, fmt.Errorf("create tag %s: %w", name, err)
		}
		result.Added++
	}
	return result, nil
}

// Body returns the document body recorded for transformation hash.
func (s *Service) Body(uuid, hash string) (string, Meta, error) {
	lock := s.documentLock(uuid)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(uuid))
	if err != nil {
		return "", Meta{}, fmt.Errorf("open repo: %w", err)
	}
	ref, err := repo.Tag(TagName(hash))
	if errors.Is(err, git.ErrTagNotFound) {
		return "", Meta{}, fmt.Errorf("%w: %s", ErrNotMirrored, hash)
	}
	if err != nil {
		return "", Meta{}, fmt.Errorf("resolve tag: %w", err)
	}
	commitObj, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return "", Meta{}, fmt.Errorf("read commit %s: %w", hash, err)
	}
	body, err := readFile(commitObj, bodyFile)
	if err != nil {
		return "", Meta{}, err
	}
	rawMeta, err := readFile(commitObj, metaFile)
	if err != nil {
		return "", Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
		return "", Meta{}, fmt.Errorf("decode meta: %w", err)
	}
	return body, meta, nil
}

// History lists mirrored commits newest first. A limit of 0 returns all.
func (s *Service) History(uuid string, limit int) ([]CommitInfo, error) {
	lock := s.documentLock(uuid)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(uuid))
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]CommitInfo, 0, limit)
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommitInfo(commitObj))
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

func (s *Service) repoPath(uuid string) string {
	return filepath.Join(s.baseDir, sanitizeRef(uuid))
}

func (s *Service) documentLock(uuid string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[uuid]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[uuid] = lock
	return lock
}

func openOrInit(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}

func commitVersion(worktree *git.Worktree, uuid string, version int, t model.Transformation) (plumbing.Hash, error) {
	root := worktree.Filesystem.Root()
	if err := os.WriteFile(filepath.Join(root, bodyFile), []byte(t.Body), 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write %s: %w", bodyFile, err)
	}
	meta, err := json.MarshalIndent(Meta{
		UUID:   uuid,
		Hash:   t.Hash,
		Tags:   t.Tags,
		Author: model.DisplayName(t.Author),
		Date:   t.Date.Time,
	}, "", "  ")
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, metaFile), append(meta, '\n'), 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write %s: %w", metaFile, err)
	}
	for _, name := range []string{bodyFile, metaFile} {
		if _, err := worktree.Add(name); err != nil {
			return plumbing.ZeroHash, fmt.Errorf("git add %s: %w", name, err)
		}
	}

	when := t.Date.Time
	if when.IsZero() {
		when = time.Now()
	}
	author := model.DisplayName(t.Author)
	message := fmt.Sprintf("Version %d: %s\n\ntransformation: %s", version, firstLine(t.Body), t.Hash)
	hash, err := worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@users.gosshub.local", sanitizeEmail(author)),
			When:  when,
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit version %d: %w", version, err)
	}
	return hash, nil
}

func readFile(commitObj *object.Commit, name string) (string, error) {
	file, err := commitObj.File(name)
	if err != nil {
		return "", fmt.Errorf("load %s from commit: %w", name, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return contents, nil
}

func toCommitInfo(commitObj *object.Commit) CommitInfo {
	info := CommitInfo{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
	for _, line := range strings.Split(commitObj.Message, "\n") {
		if rest, ok := strings.CutPrefix(line, "transformation: "); ok {
			info.Transformation = rest
		}
	}
	return info
}

// TagName is the git tag recording transformation hash.
func TagName(hash string) string {
	return tagSpace + sanitizeRef(hash)
}

func firstLine(body string) string {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(body), "\n", 2)[0])
	if line == "" {
		return "(empty)"
	}
	return line
}

func sanitizeRef(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "unnamed"
	}
	return string(out)
}

func sanitizeEmail(input string) string {
	bytes := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			bytes = append(bytes, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			bytes = append(bytes, '.')
		}
	}
	if len(bytes) == 0 {
		return "user"
	}
	return string(bytes)
}
